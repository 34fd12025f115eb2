package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if err := cfg.RequireServerSecrets(); err != nil {
		slog.Error("missing server configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(os.Stdout, cfg.AppEnv),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	logging.StartCleanup(ctx, db)

	// Redis-backed rate limiting when configured
	deps := routes.Deps{DB: db}
	var redisCheck handlers.Check
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cache.DefaultOptions(cfg.RedisURL))
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		deps.Limiter = cache.NewStorage(client, "linkbox:limiter:")
		redisCheck = cache.Healthcheck(client)
		slog.Info("redis connected")
	}

	// Services
	codes, err := invitecode.NewGenerator(cfg.InviteCodePrefix)
	if err != nil {
		slog.Error("invalid invite code prefix", "prefix", cfg.InviteCodePrefix, "error", err)
		os.Exit(1)
	}
	subscriptionStore := store.NewGormStore(db)
	policy := services.PolicyFromConfig(cfg)
	attempts := services.WithMaxAttempts(cfg.RedeemMaxAttempts)

	subscriptionService := services.NewSubscriptionService(subscriptionStore, policy, codes, attempts)
	referralService := services.NewReferralService(subscriptionStore, policy, codes, attempts)
	authService := services.NewAuthService(db, cfg, subscriptionService, referralService)
	bookmarkService := services.NewBookmarkService(db, services.NewRuleClassifier())
	deps.Access = subscriptionService

	// Handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(subscriptionStore.Ping, redisCheck),
		Referral:     handlers.NewReferralHandler(referralService),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService),
		Bookmark:     handlers.NewBookmarkHandler(bookmarkService),
		Webhook:      handlers.NewWebhookHandler(subscriptionService, cfg.BillingWebhookSecret),
		Admin:        handlers.NewAdminHandler(subscriptionService, referralService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, deps, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
