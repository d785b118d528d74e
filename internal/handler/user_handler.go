package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// UserHandler exposes profile endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires user routes. Routes under /me require authentication.
func (h *UserHandler) Register(router fiber.Router, requireAuth fiber.Handler) {
	router.Patch("/me", requireAuth, h.updateProfile)
	router.Post("/me/avatar", requireAuth, h.updateAvatar)
	router.Post("/me/artist-application", requireAuth, h.applyAsArtist)
	router.Get("/:id", h.profile)
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	profile, err := h.service.PublicProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}
	return utils.SendData(c, profile)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update profile")
	}
	return utils.SendData(c, user)
}

func (h *UserHandler) updateAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.logger, service.ErrUploadMissing, "failed to read upload")
	}

	user, err := h.service.UpdateAvatar(c.UserContext(), actorFromContext(c), file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update avatar")
	}
	return utils.SendData(c, user)
}

func (h *UserHandler) applyAsArtist(c *fiber.Ctx) error {
	var req dto.ArtistApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	user, err := h.service.ApplyAsArtist(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit application")
	}
	return utils.SendData(c, user)
}
