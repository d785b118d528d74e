package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// RequestContext tags every request with an id and binds a request-scoped
// logger to the user context so services can use zerolog.Ctx(ctx).
func RequestContext(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := strings.TrimSpace(c.Get(requestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Locals("request_id", requestID)
		c.Set(requestIDHeader, requestID)

		logger := base.With().Str("request_id", requestID).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext()))

		return c.Next()
	}
}

// RequestID returns the identifier bound to the active request.
func RequestID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("request_id").(string); ok {
		return id
	}
	return ""
}
