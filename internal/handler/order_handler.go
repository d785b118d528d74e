package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

const stripeSignatureHeader = "Stripe-Signature"

// OrderHandler exposes checkout, order history and the payment webhook.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler constructs an order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("component", "order_handler").Logger(),
	}
}

// Register wires order routes on an authenticated router.
func (h *OrderHandler) Register(router fiber.Router) {
	router.Post("/checkout", h.checkout)
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterWebhook wires the unauthenticated payment webhook.
func (h *OrderHandler) RegisterWebhook(router fiber.Router) {
	router.Post("/stripe", h.webhook)
}

func (h *OrderHandler) checkout(c *fiber.Ctx) error {
	result, err := h.service.Checkout(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to start checkout")
	}
	return utils.SendData(c, result, fiber.StatusCreated)
}

func (h *OrderHandler) list(c *fiber.Ctx) error {
	page := pageQuery(c, utils.PaginationDefaults{})
	orders, total, err := h.service.List(c.UserContext(), actorFromContext(c), dto.OrderListQuery{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list orders")
	}
	return utils.SendList(c, orders, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *OrderHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	order, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load order")
	}
	return utils.SendData(c, order)
}

func (h *OrderHandler) webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	signature := c.Get(stripeSignatureHeader)
	if signature == "" {
		return utils.SendError(c, "missing signature")
	}

	if err := h.service.HandleWebhook(c.UserContext(), payload, signature); err != nil {
		return respondError(c, h.logger, err, "failed to process webhook")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
