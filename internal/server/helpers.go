package server

import (
	"errors"
	"strings"
	"unicode"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a UUID.
// On failure it writes a 400 INVALID_ID response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidIDError(humanizeParam(param)))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into the resource it identifies.
// Examples: "postId" -> "post", "parentCommentId" -> "parent comment".
func humanizeParam(param string) string {
	param = strings.TrimSuffix(param, "Id")
	var words []string
	start := 0
	for i, r := range param {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, param[start:i])
			start = i
		}
	}
	words = append(words, param[start:])
	return strings.ToLower(strings.Join(words, " "))
}

// respondError writes err with the status its code maps to. Errors without a
// code are treated as internal and logged with the request context.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"error", err,
			"route", c.Route().Path,
		)
	}
	return models.RespondWithError(c, appErr.Status(), appErr)
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}
