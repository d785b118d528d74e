package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// ReviewHandler exposes review moderation by id.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register wires review routes on an authenticated router.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Delete("/:id", h.delete)
}

func (h *ReviewHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete review")
	}
	return utils.SendMessage(c, "review deleted")
}

// FavoriteHandler exposes the caller's saved artworks.
type FavoriteHandler struct {
	service service.FavoriteService
	logger  zerolog.Logger
}

// NewFavoriteHandler constructs a favorite handler.
func NewFavoriteHandler(service service.FavoriteService, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: service,
		logger:  logger.With().Str("component", "favorite_handler").Logger(),
	}
}

// Register wires favorite routes on an authenticated router.
func (h *FavoriteHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:artworkId", h.add)
	router.Delete("/:artworkId", h.remove)
}

func (h *FavoriteHandler) list(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{})
	artworks, total, err := h.service.List(c.UserContext(), actorFromContext(c), page.Page, page.Limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list favorites")
	}
	return utils.SendList(c, artworks, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *FavoriteHandler) add(c *fiber.Ctx) error {
	id, err := paramID(c, "artworkId")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.service.Add(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to add favorite")
	}
	return utils.SendMessage(c, "artwork saved", fiber.Map{"artworkId": id, "favorited": true})
}

func (h *FavoriteHandler) remove(c *fiber.Ctx) error {
	id, err := paramID(c, "artworkId")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.service.Remove(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to remove favorite")
	}
	return utils.SendMessage(c, "artwork removed", fiber.Map{"artworkId": id, "favorited": false})
}
