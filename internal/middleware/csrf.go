package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

const (
	CSRFCookieName  = "csrf_token"
	CSRFHeaderName  = "X-CSRF-Token"
	csrfTokenBytes  = 32
	csrfCookieTTL   = 24 * time.Hour
	csrfLocalsToken = "csrf_token"
)

// CSRFConfig configures the double-submit cookie guard.
type CSRFConfig struct {
	Production     bool
	AllowedOrigins []string
}

// SetCSRFCookie issues a csrf_token cookie when the request does not carry one.
func SetCSRFCookie(cfg CSRFConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if existing := c.Cookies(CSRFCookieName); existing != "" {
			c.Locals(csrfLocalsToken, existing)
			return c.Next()
		}

		token, err := GenerateCSRFToken()
		if err != nil {
			return utils.SendError(c, "failed to issue csrf token", fiber.StatusInternalServerError)
		}

		c.Cookie(&fiber.Cookie{
			Name:     CSRFCookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(csrfCookieTTL),
			HTTPOnly: false,
			Secure:   cfg.Production,
			SameSite: SameSitePolicy(cfg.Production),
		})
		c.Locals(csrfLocalsToken, token)

		return c.Next()
	}
}

// ValidateCSRF rejects state-changing requests whose origin is foreign or
// whose x-csrf-token header does not echo the csrf_token cookie.
func ValidateCSRF(cfg CSRFConfig) fiber.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if normalized := normalizeOrigin(origin); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if strings.Contains(c.Path(), "/webhook") {
			return c.Next()
		}

		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			if _, ok := allowed[normalizeOrigin(origin)]; !ok {
				observability.CSRFRejections().WithLabelValues("origin").Inc()
				return utils.SendError(c, "origin not allowed", fiber.StatusForbidden)
			}
		}

		cookie := c.Cookies(CSRFCookieName)
		header := c.Get(CSRFHeaderName)
		if cookie == "" || header == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			observability.CSRFRejections().WithLabelValues("token").Inc()
			return utils.SendError(c, "invalid csrf token", fiber.StatusForbidden)
		}

		return c.Next()
	}
}

// CSRFToken returns the token bound to the current request, if any.
func CSRFToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(csrfLocalsToken).(string); ok {
		return token
	}
	return c.Cookies(CSRFCookieName)
}

// GenerateCSRFToken returns 256 bits of randomness, hex encoded.
func GenerateCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SameSitePolicy returns the cookie SameSite mode for the deployment.
func SameSitePolicy(production bool) string {
	if production {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
