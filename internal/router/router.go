package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nemesis-api/internal/config"
	"github.com/noah-isme/nemesis-api/internal/handler"
	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/observability"
)

const (
	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Tokens          middleware.TokenParser
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	ArtworkHandler  *handler.ArtworkHandler
	EventHandler    *handler.EventHandler
	CartHandler     *handler.CartHandler
	ReviewHandler   *handler.ReviewHandler
	FavoriteHandler *handler.FavoriteHandler
	MessageHandler  *handler.MessageHandler
	OrderHandler    *handler.OrderHandler
	UploadHandler   *handler.UploadHandler
	AdminHandler    *handler.AdminHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	requireAuth := middleware.Authenticated(deps.Tokens)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), requireAuth, middleware.RateLimit("auth", loginRateLimit, loginRateWindow))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"), requireAuth)
	}
	if deps.ArtworkHandler != nil {
		deps.ArtworkHandler.Register(api.Group("/artworks"), requireAuth, optionalAuth)
	}
	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"), requireAuth)
	}
	if deps.CartHandler != nil {
		deps.CartHandler.Register(api.Group("/cart", requireAuth))
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api.Group("/reviews", requireAuth))
	}
	if deps.FavoriteHandler != nil {
		deps.FavoriteHandler.Register(api.Group("/favorites", requireAuth))
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages", requireAuth))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", requireAuth, middleware.RateLimit("uploads", 30, time.Minute)))
	}
	if deps.OrderHandler != nil {
		deps.OrderHandler.Register(api.Group("/orders", requireAuth))
		deps.OrderHandler.RegisterWebhook(api.Group("/webhook"))
	}
	if deps.AdminHandler != nil {
		admin := api.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		deps.AdminHandler.Register(admin)
	}
}
