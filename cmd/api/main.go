package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/auth"
	"github.com/noah-isme/nemesis-api/internal/config"
	"github.com/noah-isme/nemesis-api/internal/database"
	"github.com/noah-isme/nemesis-api/internal/handler"
	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/repository"
	"github.com/noah-isme/nemesis-api/internal/router"
	"github.com/noah-isme/nemesis-api/internal/service"
	cloud "github.com/noah-isme/nemesis-api/pkg/cloudinary"
	"github.com/noah-isme/nemesis-api/pkg/mailer"
	"github.com/noah-isme/nemesis-api/pkg/payments"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "nemesis-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if !cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	config.MustValidate(cfg, logger, os.Exit)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, artwork cache disabled")
		} else {
			defer redisClient.Close()
		}
	}

	nodeID := uuid.NewString()
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName+"-"+nodeID[:8])
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	var storage service.MediaStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cloudinary disabled")
		} else {
			storage = uploader
		}
	}

	var gateway payments.Gateway
	if cfg.StripeSecretKey != "" {
		stripeGateway, err := payments.NewStripeGateway(payments.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("stripe disabled")
		} else {
			gateway = stripeGateway
		}
	}

	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.ResendAPIKey != "" {
		resendSender, err := mailer.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("resend disabled, emails will be logged")
		} else {
			sender = resendSender
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	artworkRepo := repository.NewArtworkRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	activityRepo := repository.NewAdminActivityRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	adminLogger := service.NewAdminLogger(activityRepo, logger)
	publisher := service.NewEventPublisher(natsConn, nodeID, logger)
	uploads := service.NewUploadService(storage, cfg.UploadMaxMB, logger)

	settingsService, err := service.NewSettingsService(settingsRepo, adminLogger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise platform settings")
	}

	artworkService := service.NewArtworkService(service.ArtworkServiceDeps{
		Repo:      artworkRepo,
		Users:     userRepo,
		Uploads:   uploads,
		Audit:     adminLogger,
		Events:    publisher,
		Settings:  settingsService,
		Cache:     redisClient,
		CacheTTL:  cfg.CacheTTL,
		Currency:  cfg.StripeCurrency,
		Validator: validate,
	}, logger)
	eventService := service.NewEventService(eventRepo, userRepo, uploads, adminLogger, cfg.StripeCurrency, validate, logger)
	cartService := service.NewCartService(cartRepo, artworkRepo, eventRepo, cfg.StripeCurrency, validate, logger)
	orderService := service.NewOrderService(service.OrderServiceDeps{
		Orders:    orderRepo,
		Users:     userRepo,
		Cart:      cartService,
		Gateway:   gateway,
		Mailer:    sender,
		Settings:  settingsService,
		Events:    publisher,
		Catalog:   artworkService,
		ClientURL: cfg.ClientURL,
		Currency:  cfg.StripeCurrency,
	}, logger)
	authService := service.NewAuthService(userRepo, tokens, sender, cfg.ClientURL, validate, logger)
	userService := service.NewUserService(userRepo, uploads, settingsService, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, artworkRepo, adminLogger, validate, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo, artworkRepo)

	hub := service.NewMessageHub(nodeID, logger)
	if natsConn != nil {
		if err := hub.Subscribe(rootCtx, natsConn); err != nil {
			logger.Warn().Err(err).Msg("message fan-out disabled")
		}
	}
	messageService := service.NewMessageService(messageRepo, userRepo, hub, publisher, validate, logger)

	adminService := service.NewAdminService(service.AdminServiceDeps{
		Users:     userRepo,
		Activity:  activityRepo,
		Uploads:   uploads,
		Audit:     adminLogger,
		Mailer:    sender,
		Catalog:   artworkService,
		Validator: validate,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowedOrigins: cfg.AllowedOrigins(),
		Production:     cfg.IsProduction(),
		AccessLog:      !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		Tokens:          tokens,
		AuthHandler:     handler.NewAuthHandler(authService, cfg.IsProduction(), logger),
		UserHandler:     handler.NewUserHandler(userService, logger),
		ArtworkHandler:  handler.NewArtworkHandler(artworkService, reviewService, logger),
		EventHandler:    handler.NewEventHandler(eventService, logger),
		CartHandler:     handler.NewCartHandler(cartService, logger),
		ReviewHandler:   handler.NewReviewHandler(reviewService, logger),
		FavoriteHandler: handler.NewFavoriteHandler(favoriteService, logger),
		MessageHandler:  handler.NewMessageHandler(messageService, hub, logger),
		OrderHandler:    handler.NewOrderHandler(orderService, logger),
		UploadHandler:   handler.NewUploadHandler(uploads, logger),
		AdminHandler: handler.NewAdminHandler(handler.AdminHandlerDeps{
			Admin:    adminService,
			Artworks: artworkService,
			Events:   eventService,
			Orders:   orderService,
			Settings: settingsService,
		}, logger),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("environment", cfg.Env).Msg("server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(rootCtx, app, adminLogger, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, audit service.AdminLogger, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	audit.Wait()

	logger.Info().Msg("server stopped")
}
