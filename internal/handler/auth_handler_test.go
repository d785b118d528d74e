package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/handler"
	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/service"
)

type stubAuthService struct {
	registerErr error
	loginErr    error
	lastLogin   dto.LoginRequest
	meID        uint
}

func (s *stubAuthService) Register(_ context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	if s.registerErr != nil {
		return dto.UserResponse{}, s.registerErr
	}
	return dto.UserResponse{ID: 1, Name: req.Name, Email: req.Email, Role: "user"}, nil
}

func (s *stubAuthService) Login(_ context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	s.lastLogin = req
	if s.loginErr != nil {
		return dto.AuthResponse{}, s.loginErr
	}
	return dto.AuthResponse{
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      dto.UserResponse{ID: 1, Email: req.Email, Role: "user"},
	}, nil
}

func (s *stubAuthService) Me(_ context.Context, userID uint) (dto.UserResponse, error) {
	s.meID = userID
	return dto.UserResponse{ID: userID, Role: "artist"}, nil
}

func authApp(svc service.AuthService, production bool) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, production, testLogger()).Register(app.Group("/api/auth"), withUser(9, "artist"), passThrough)
	return app
}

func TestAuthHandlerRegisterReturnsCreated(t *testing.T) {
	app := authApp(&stubAuthService{}, false)

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Nora", "email": "nora@example.com", "password": "supersecret",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "nora@example.com", payload.Data.Email)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	app := authApp(&stubAuthService{registerErr: service.ErrEmailTaken}, false)

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Nora", "email": "nora@example.com", "password": "supersecret",
	}))
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthHandlerLoginSetsHTTPOnlyCookie(t *testing.T) {
	svc := &stubAuthService{}
	app := authApp(svc, true)

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nora@example.com", "password": "supersecret",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "nora@example.com", svc.lastLogin.Email)

	var token *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.TokenCookieName {
			token = cookie
		}
	}
	require.NotNil(t, token)
	require.Equal(t, "signed-token", token.Value)
	require.True(t, token.HttpOnly)
	require.True(t, token.Secure)
	require.Equal(t, http.SameSiteNoneMode, token.SameSite)

	var payload struct {
		Data dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "signed-token", payload.Data.Token)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"wrong credentials", service.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"suspended", service.ErrAccountSuspended, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := authApp(&stubAuthService{loginErr: tc.err}, false)
			resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
				"email": "nora@example.com", "password": "wrong",
			}))
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAuthHandlerLoginRejectsMalformedBody(t *testing.T) {
	app := authApp(&stubAuthService{}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerLogoutExpiresCookie(t *testing.T) {
	app := authApp(&stubAuthService{}, false)

	resp := perform(t, app, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.TokenCookieName {
			cleared = cookie.Value == "" && cookie.Expires.Before(time.Now())
		}
	}
	require.True(t, cleared)
}

func TestAuthHandlerMeUsesAuthenticatedUser(t *testing.T) {
	svc := &stubAuthService{}
	app := authApp(svc, false)

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(9), svc.meID)
}
