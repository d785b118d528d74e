package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// ArtworkHandler exposes the artwork catalogue and its reviews.
type ArtworkHandler struct {
	service service.ArtworkService
	reviews service.ReviewService
	logger  zerolog.Logger
}

// NewArtworkHandler constructs an artwork handler.
func NewArtworkHandler(service service.ArtworkService, reviews service.ReviewService, logger zerolog.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		service: service,
		reviews: reviews,
		logger:  logger.With().Str("component", "artwork_handler").Logger(),
	}
}

// Register wires artwork routes. Reads attach the caller when a token is present.
func (h *ArtworkHandler) Register(router fiber.Router, requireAuth, optionalAuth fiber.Handler) {
	router.Get("", h.list)
	router.Get("/featured", h.featured)
	router.Get("/:id", optionalAuth, h.get)
	router.Post("", requireAuth, h.create)
	router.Patch("/:id", requireAuth, h.update)
	router.Delete("/:id", requireAuth, h.delete)
	router.Post("/:id/media", requireAuth, h.attachMedia)

	router.Get("/:id/reviews", h.listReviews)
	router.Post("/:id/reviews", requireAuth, h.createReview)
}

func (h *ArtworkHandler) list(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{})
	query := dto.ArtworkListQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Kind:     strings.TrimSpace(c.Query("kind")),
		ArtistID: parseQueryUint(c, "artist"),
		Search:   strings.TrimSpace(c.Query("search")),
		MinPrice: parseQueryInt64(c, "minPrice"),
		MaxPrice: parseQueryInt64(c, "maxPrice"),
		Page:     page.Page,
		Limit:    page.Limit,
		Sort:     page.Sort,
	}

	result, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list artworks")
	}

	if result.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return utils.SendList(c, result.Items, utils.BuildPagination(result.Total, page.Page, page.Limit))
}

func (h *ArtworkHandler) featured(c *fiber.Ctx) error {
	items, err := h.service.Featured(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to load featured artworks")
	}
	return utils.SendData(c, items)
}

func (h *ArtworkHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	artwork, err := h.service.Get(c.UserContext(), id, optionalActor(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load artwork")
	}
	return utils.SendData(c, artwork)
}

func (h *ArtworkHandler) create(c *fiber.Ctx) error {
	var req dto.CreateArtworkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	artwork, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create artwork")
	}
	return utils.SendData(c, artwork, fiber.StatusCreated)
}

func (h *ArtworkHandler) update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.UpdateArtworkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	artwork, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update artwork")
	}
	return utils.SendData(c, artwork)
}

func (h *ArtworkHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete artwork")
	}
	return utils.SendMessage(c, "artwork deleted")
}

func (h *ArtworkHandler) attachMedia(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.logger, service.ErrUploadMissing, "failed to read upload")
	}

	artwork, err := h.service.AttachMedia(c.UserContext(), actorFromContext(c), id, file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload media")
	}
	return utils.SendData(c, artwork)
}

func (h *ArtworkHandler) listReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	page := pageQuery(c, utils.PaginationDefaults{Limit: 10})
	reviews, total, err := h.reviews.List(c.UserContext(), id, page.Page, page.Limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list reviews")
	}
	return utils.SendList(c, reviews, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *ArtworkHandler) createReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	review, err := h.reviews.Create(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create review")
	}
	return utils.SendData(c, review, fiber.StatusCreated)
}
