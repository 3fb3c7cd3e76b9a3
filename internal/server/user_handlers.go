package server

import (
	"strconv"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:userId. Other users only see the
// public summary.
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.UserSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || id == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewInvalidIDError("user"))
	}

	user, err := s.userService.GetUserByID(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user.Summary())
}
