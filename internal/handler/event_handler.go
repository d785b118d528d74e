package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// EventHandler exposes event listing and organiser management.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventHandler constructs an event handler.
func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register wires event routes.
func (h *EventHandler) Register(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", requireAuth, h.create)
	router.Patch("/:id", requireAuth, h.update)
	router.Delete("/:id", requireAuth, h.delete)
	router.Post("/:id/image", requireAuth, h.attachImage)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{})
	upcoming := strings.EqualFold(strings.TrimSpace(c.Query("upcoming")), "true")

	events, total, err := h.service.List(c.UserContext(), dto.EventListQuery{
		OrganizerID: parseQueryUint(c, "organizer"),
		Search:      strings.TrimSpace(c.Query("search")),
		Upcoming:    upcoming,
		Page:        page.Page,
		Limit:       page.Limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list events")
	}
	return utils.SendList(c, events, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	event, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load event")
	}
	return utils.SendData(c, event)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	event, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create event")
	}
	return utils.SendData(c, event, fiber.StatusCreated)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	event, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update event")
	}
	return utils.SendData(c, event)
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete event")
	}
	return utils.SendMessage(c, "event deleted")
}

func (h *EventHandler) attachImage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.logger, service.ErrUploadMissing, "failed to read upload")
	}

	event, err := h.service.AttachImage(c.UserContext(), actorFromContext(c), id, file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload image")
	}
	return utils.SendData(c, event)
}
