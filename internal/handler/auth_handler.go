package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	service    service.AuthService
	production bool
	logger     zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, production bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		production: production,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes. loginLimiter guards the credential endpoints.
func (h *AuthHandler) Register(router fiber.Router, requireAuth, loginLimiter fiber.Handler) {
	router.Post("/register", loginLimiter, h.register)
	router.Post("/login", loginLimiter, h.login)
	router.Post("/logout", h.logout)
	router.Get("/me", requireAuth, h.me)
	router.Get("/csrf", h.csrf)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	user, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register")
	}

	return utils.SendData(c, user, fiber.StatusCreated)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	result, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to login")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: middleware.SameSitePolicy(h.production),
	})

	return utils.SendData(c, result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: middleware.SameSitePolicy(h.production),
	})
	return utils.SendMessage(c, "logged out")
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}
	return utils.SendData(c, user)
}

func (h *AuthHandler) csrf(c *fiber.Ctx) error {
	return utils.SendData(c, fiber.Map{"csrfToken": middleware.CSRFToken(c)})
}
