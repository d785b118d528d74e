package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nemesis-api/internal/auth"
	"github.com/noah-isme/nemesis-api/internal/config"
	"github.com/noah-isme/nemesis-api/internal/handler"
	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/router"
)

const testSecret = "router-test-secret-with-enough-entropy"

func newApp(t *testing.T) (*fiber.App, *auth.TokenManager) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	cfg := config.Config{AppName: "nemesis-api", Env: "test", ClientURL: "http://localhost:3000"}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger, AllowedOrigins: cfg.AllowedOrigins()})
	router.Register(app, cfg, router.Dependencies{
		Tokens:       tokens,
		AuthHandler:  handler.NewAuthHandler(nil, false, logger),
		CartHandler:  handler.NewCartHandler(nil, logger),
		OrderHandler: handler.NewOrderHandler(nil, logger),
		AdminHandler: handler.NewAdminHandler(handler.AdminHandlerDeps{}, logger),
	})
	return app, tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, id uint, role string) string {
	t.Helper()
	token, _, err := tokens.Issue(id, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "nemesis-api", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cart", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app, tokens := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, 3, "artist"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStateChangingRequestsNeedCSRFToken(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "abc123"})
	req.Header.Set(middleware.CSRFHeaderName, "abc123")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookSkipsCSRF(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
