package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nemesis-api/internal/auth"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

// TokenCookieName is the httpOnly cookie carrying the access token.
const TokenCookieName = "token"

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

// Authenticated requires a valid access token from the token cookie or a bearer header.
func Authenticated(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractToken(c)
		if raw == "" {
			return utils.SendError(c, "authentication required", fiber.StatusUnauthorized)
		}

		claims, err := parser.Parse(raw)
		if err != nil {
			return utils.SendError(c, "invalid token", fiber.StatusUnauthorized)
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", claims.Role)
		return c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present and never rejects.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := extractToken(c); raw != "" {
			if claims, err := parser.Parse(raw); err == nil {
				c.Locals("user_id", claims.UserID)
				c.Locals("user_role", claims.Role)
			}
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(TokenCookieName)); cookie != "" {
		return cookie
	}

	authorization := c.Get(fiber.HeaderAuthorization)
	const bearer = "bearer "
	if len(authorization) > len(bearer) && strings.ToLower(authorization[:len(bearer)]) == bearer {
		return strings.TrimSpace(authorization[len(bearer):])
	}
	return ""
}
