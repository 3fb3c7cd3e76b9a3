package server

import (
	"fmt"
	"net/http"
	"testing"

	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlers_Profiles(t *testing.T) {
	e := newTestEnv(t)
	id, token := e.login(t, "profiled")

	var me models.User
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/api/users/me", token, nil, &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "profiled@example.com", me.Email)

	var public map[string]any
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, fmt.Sprintf("/api/users/%d", id), "", nil, &public))
	assert.Equal(t, "profiled", public["username"])
	assert.NotContains(t, public, "email")

	assertErrorCode(t, e, http.MethodGet, "/api/users/me", "", nil, fiber.StatusUnauthorized, models.CodeUnauthorized)
	assertErrorCode(t, e, http.MethodGet, "/api/users/abc", "", nil, fiber.StatusBadRequest, models.CodeInvalidID)
	assertErrorCode(t, e, http.MethodGet, "/api/users/9999", "", nil, fiber.StatusNotFound, models.CodeNotFound)
}
