package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Referral     *handlers.ReferralHandler
	Subscription *handlers.SubscriptionHandler
	Bookmark     *handlers.BookmarkHandler
	Webhook      *handlers.WebhookHandler
	Admin        *handlers.AdminHandler
}

// Deps are the collaborators the middleware chain needs. Limiter may be nil,
// in which case rate limits are kept in process memory.
type Deps struct {
	DB      *gorm.DB
	Access  middleware.AccessChecker
	Limiter fiber.Storage
}

func Setup(app *fiber.App, cfg *config.Config, deps Deps, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(deps.Limiter, 60, "api"))

	api.Get("/health", h.Health.Check)

	// Auth: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(rateLimit(deps.Limiter, 10, "auth"))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Invites: validation is public, so it gets the auth-level limit
	invites := api.Group("/invites")
	invites.Post("/validate", rateLimit(deps.Limiter, 10, "invites"), h.Referral.Validate)
	invites.Post("/redeem", middleware.JWTProtected(cfg), h.Referral.Redeem)

	// Protected routes (JWT required) - apply middleware to individual routes
	api.Get("/subscription", middleware.JWTProtected(cfg), h.Subscription.Status)
	api.Post("/subscription", middleware.JWTProtected(cfg), h.Subscription.Provision)
	api.Get("/referrals", middleware.JWTProtected(cfg), h.Referral.List)

	// Bookmarks need an active trial or pro plan
	bookmarks := api.Group("/bookmarks", middleware.JWTProtected(cfg), middleware.SubscriptionRequired(deps.Access))
	bookmarks.Get("/", h.Bookmark.List)
	bookmarks.Post("/", h.Bookmark.Create)
	bookmarks.Delete("/:id", h.Bookmark.Delete)

	// Webhooks: shared-secret auth (no JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/billing", h.Webhook.HandleBilling)

	// Admin (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(deps.DB, cfg))
	admin.Get("/subscriptions/:id", h.Admin.GetSubscription)
	admin.Post("/subscriptions/:id/reconcile", h.Admin.Reconcile)
}

func rateLimit(storage fiber.Storage, max int, scope string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return scope + ":" + c.IP() },
		Storage:           storage,
	})
}
