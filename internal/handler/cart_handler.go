package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// CartHandler exposes the authenticated user's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler constructs a cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("component", "cart_handler").Logger(),
	}
}

// Register wires cart routes on an authenticated router.
func (h *CartHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Delete("", h.clear)
	router.Post("/items", h.add)
	router.Patch("/items/:id", h.updateQuantity)
	router.Delete("/items/:id", h.remove)
}

func (h *CartHandler) get(c *fiber.Ctx) error {
	cart, err := h.service.Get(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load cart")
	}
	return utils.SendData(c, cart)
}

func (h *CartHandler) add(c *fiber.Ctx) error {
	var req dto.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	cart, err := h.service.Add(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to add cart item")
	}
	return utils.SendData(c, cart, fiber.StatusCreated)
}

func (h *CartHandler) updateQuantity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	var req dto.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	cart, err := h.service.UpdateQuantity(c.UserContext(), userIDFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update cart item")
	}
	return utils.SendData(c, cart)
}

func (h *CartHandler) remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	cart, err := h.service.Remove(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to remove cart item")
	}
	return utils.SendData(c, cart)
}

func (h *CartHandler) clear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), userIDFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to clear cart")
	}
	return utils.SendMessage(c, "cart cleared")
}
