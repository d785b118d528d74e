package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// AdminHandlerDeps groups the services behind the moderation endpoints.
type AdminHandlerDeps struct {
	Admin    service.AdminService
	Artworks service.ArtworkService
	Events   service.EventService
	Orders   service.OrderService
	Settings service.SettingsService
}

// AdminHandler exposes moderation, platform settings and the audit trail.
type AdminHandler struct {
	deps   AdminHandlerDeps
	logger zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(deps AdminHandlerDeps, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		deps:   deps,
		logger: logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes. The router must already enforce the admin roles.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Patch("/users/:id", h.updateUser)
	router.Post("/users/:id/suspend", h.suspendUser)
	router.Post("/users/:id/unsuspend", h.unsuspendUser)
	router.Delete("/users/:id", h.deleteUser)

	router.Delete("/artworks/:id", h.deleteArtwork)
	router.Delete("/events/:id", h.deleteEvent)
	router.Get("/orders", h.listOrders)

	router.Get("/settings", h.getSettings)
	router.Put("/settings", h.updateSettings)

	router.Get("/activity", h.listActivity)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{Limit: 20})
	users, total, err := h.deps.Admin.ListUsers(c.UserContext(), dto.AdminUserListQuery{
		Role:         strings.TrimSpace(c.Query("role")),
		ArtistStatus: strings.TrimSpace(c.Query("artistStatus")),
		Search:       strings.TrimSpace(c.Query("search")),
		Page:         page.Page,
		Limit:        page.Limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list users")
	}
	return utils.SendList(c, users, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *AdminHandler) updateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.AdminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	user, err := h.deps.Admin.UpdateUser(c.UserContext(), actorFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update user")
	}
	return utils.SendData(c, user)
}

func (h *AdminHandler) suspendUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.SuspendUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	user, err := h.deps.Admin.SuspendUser(c.UserContext(), actorFromContext(c), id, req, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to suspend user")
	}
	return utils.SendData(c, user)
}

func (h *AdminHandler) unsuspendUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	user, err := h.deps.Admin.UnsuspendUser(c.UserContext(), actorFromContext(c), id, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to unsuspend user")
	}
	return utils.SendData(c, user)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.deps.Admin.DeleteUser(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete user")
	}
	return utils.SendMessage(c, "user deleted")
}

func (h *AdminHandler) deleteArtwork(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.deps.Artworks.Delete(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete artwork")
	}
	return utils.SendMessage(c, "artwork deleted")
}

func (h *AdminHandler) deleteEvent(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	if err := h.deps.Events.Delete(c.UserContext(), actorFromContext(c), id, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete event")
	}
	return utils.SendMessage(c, "event deleted")
}

func (h *AdminHandler) listOrders(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{Limit: 20})
	orders, total, err := h.deps.Orders.ListAll(c.UserContext(), dto.OrderListQuery{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list orders")
	}
	return utils.SendList(c, orders, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *AdminHandler) getSettings(c *fiber.Ctx) error {
	settings, err := h.deps.Settings.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to load settings")
	}
	return utils.SendData(c, settings)
}

func (h *AdminHandler) updateSettings(c *fiber.Ctx) error {
	var values map[string]interface{}
	if err := c.BodyParser(&values); err != nil || values == nil {
		return utils.SendError(c, "invalid payload")
	}

	settings, err := h.deps.Settings.Update(c.UserContext(), actorFromContext(c), values, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update settings")
	}
	return utils.SendData(c, settings)
}

func (h *AdminHandler) listActivity(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{Limit: 20})
	records, total, err := h.deps.Admin.ListActivity(c.UserContext(), dto.AdminActivityQuery{
		AdminID:    parseQueryUint(c, "admin"),
		Action:     c.Query("action"),
		TargetType: c.Query("targetType"),
		TargetID:   c.Query("targetId"),
		Page:       page.Page,
		Limit:      page.Limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list admin activity")
	}
	return utils.SendList(c, records, utils.BuildPagination(total, page.Page, page.Limit))
}
