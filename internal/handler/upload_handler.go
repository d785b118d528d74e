package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

const uploadScope = "uploads"

// UploadHandler handles standalone media uploads, e.g. images embedded in descriptions.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes on an authenticated router.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.logger, service.ErrUploadMissing, "upload failed")
	}

	result, err := h.service.Store(c.UserContext(), uploadScope, file, service.MediaImage, service.MediaVideo)
	if err != nil {
		return respondError(c, h.logger, err, "upload failed")
	}

	requestLogger(h.logger, c).Info().
		Uint("user_id", userIDFromContext(c)).
		Str("public_id", result.PublicID).
		Str("kind", result.Kind).
		Msg("media uploaded")

	return utils.SendData(c, result, fiber.StatusCreated)
}
