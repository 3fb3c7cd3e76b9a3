package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialfeed/internal/models"
	"socialfeed/internal/notifications"
	"socialfeed/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	e := newTestEnv(t)

	var live map[string]any
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/health/live", "", nil, &live))
	assert.Equal(t, "up", live["status"])

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "disabled", ready.Checks["redis"])
}

func TestReadinessCheck_RedisDegraded(t *testing.T) {
	e := newTestEnv(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	e.srv.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = e.srv.redis.Close() })

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Checks["redis"])

	mr.Close()
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "degraded", ready.Status)
	assert.Equal(t, "unhealthy", ready.Checks["redis"])
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	e := newTestEnv(t)
	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var ready map[string]any
	assert.Equal(t, fiber.StatusServiceUnavailable, e.call(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "unhealthy", ready["status"])
}

func TestAuthHandlers_SignupAndLogin(t *testing.T) {
	e := newTestEnv(t)
	creds := map[string]any{
		"username": "river",
		"email":    "River@Example.com",
		"password": "Str0ng!Passw0rd",
	}

	var signup service.AuthResult
	require.Equal(t, fiber.StatusCreated, e.call(t, http.MethodPost, "/api/auth/signup", "", creds, &signup))
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "river@example.com", signup.User.Email)

	assertErrorCode(t, e, http.MethodPost, "/api/auth/signup", "", creds, fiber.StatusBadRequest, models.CodeValidation)

	var login service.AuthResult
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": "river@example.com", "password": "Str0ng!Passw0rd"}, &login))
	assert.NotEmpty(t, login.Token)

	assertErrorCode(t, e, http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": "river@example.com", "password": "wrong"}, fiber.StatusUnauthorized, models.CodeUnauthorized)

	var post models.PostView
	require.Equal(t, fiber.StatusCreated, e.call(t, http.MethodPost, "/api/posts", login.Token,
		map[string]any{"content": "signed in"}, &post))
	assert.Equal(t, "river", post.Author.Username)
}

func TestAuthHandlers_MalformedBody(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{bad"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		origin   string
		expected string
	}{
		{"allowed origin", "http://localhost:5173", "http://localhost:5173"},
		{"unknown origin", "http://evil.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := e.app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expected, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	e := newTestEnv(t)

	var doc struct {
		Swagger  string                    `json:"swagger"`
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodGet, "/api/swagger/doc.json", "", nil, &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths["/posts/{postId}/like"], "post")
	assert.Contains(t, doc.Paths["/comments/{commentId}"], "delete")
	assert.Contains(t, doc.Paths["/users/me"], "get")
}

func TestFeedEventsArePublished(t *testing.T) {
	e := newTestEnv(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	e.srv.notifier = notifications.NewNotifier(rdb)

	authorID, author := e.login(t, "author")
	_, fan := e.login(t, "fan")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sub := rdb.Subscribe(ctx, notifications.FeedChannel, notifications.UserChannel(authorID))
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	post := createPostVia(t, e, author, "events")
	var state models.LikeState
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodPost, "/api/posts/"+post.ID.String()+"/like", fan, nil, &state))
	require.Equal(t, fiber.StatusOK, e.call(t, http.MethodPost, "/api/posts/"+post.ID.String()+"/like", fan, nil, &state))
	createCommentVia(t, e, fan, post.ID, "hi", nil)

	expected := []struct{ channel, event string }{
		{notifications.FeedChannel, notifications.EventPostCreated},
		{notifications.FeedChannel, notifications.EventPostLiked},
		{notifications.FeedChannel, notifications.EventCommentCreated},
		{notifications.UserChannel(authorID), notifications.EventCommentCreated},
	}
	for _, want := range expected {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var evt notifications.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, want.channel, msg.Channel)
		assert.Equal(t, want.event, evt.Type)
	}
}
