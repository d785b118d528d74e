package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// MessageHandler exposes direct messaging and the live websocket stream.
type MessageHandler struct {
	service service.MessageService
	hub     *service.MessageHub
	logger  zerolog.Logger
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(service service.MessageService, hub *service.MessageHub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		hub:     hub,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register wires message routes on an authenticated router.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_ctx", c.UserContext())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.stream))

	router.Post("", h.send)
	router.Get("/conversations", h.conversations)
	router.Get("/with/:userId", h.thread)
	router.Patch("/:id/read", h.markRead)
}

func (h *MessageHandler) stream(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(uint)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required"))
		_ = conn.Close()
		return
	}

	ctx, ok := conn.Locals("request_ctx").(context.Context)
	if !ok || ctx == nil {
		ctx = context.Background()
	}

	h.logger.Debug().Uint("user_id", userID).Msg("message stream opened")
	h.hub.Serve(ctx, userID, conn)
	h.logger.Debug().Uint("user_id", userID).Msg("message stream closed")
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, "invalid payload")
	}

	message, err := h.service.Send(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to send message")
	}
	return utils.SendData(c, message, fiber.StatusCreated)
}

func (h *MessageHandler) conversations(c *fiber.Ctx) error {
	conversations, err := h.service.Conversations(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list conversations")
	}
	return utils.SendData(c, conversations)
}

func (h *MessageHandler) thread(c *fiber.Ctx) error {
	otherID, err := paramID(c, "userId")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	page := pageQuery(c, utils.PaginationDefaults{Limit: 50})
	messages, total, err := h.service.Thread(c.UserContext(), actorFromContext(c), otherID, page.Page, page.Limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load conversation")
	}
	return utils.SendList(c, messages, utils.BuildPagination(total, page.Page, page.Limit))
}

func (h *MessageHandler) markRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err.Error())
	}

	message, err := h.service.MarkRead(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to mark message read")
	}
	return utils.SendData(c, message)
}
