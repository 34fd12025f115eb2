package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
)

func TestSetup(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{JWTSecret: "routes-secret", JWTAccessExpiry: time.Hour, BillingWebhookSecret: "whsec"}
	st := store.NewMemoryStore()
	gen := invitecode.MustGenerator("LB")
	policy := services.DefaultTrialPolicy()

	// The clock sits past every trial provisioned below.
	subs := services.NewSubscriptionService(st, policy, gen, services.WithClock(func() time.Time { return time.Now().UTC().AddDate(0, 0, 30) }))
	provision := services.NewSubscriptionService(st, policy, gen)
	referrals := services.NewReferralService(st, policy, gen)

	app := fiber.New()
	routes.Setup(app, cfg, routes.Deps{Access: subs}, routes.Handlers{
		Auth:         handlers.NewAuthHandler(services.NewAuthService(nil, cfg, subs, referrals)),
		Health:       handlers.NewHealthHandler(st.Ping, nil),
		Referral:     handlers.NewReferralHandler(referrals),
		Subscription: handlers.NewSubscriptionHandler(subs),
		Bookmark:     handlers.NewBookmarkHandler(services.NewBookmarkService(nil, services.NewRuleClassifier())),
		Webhook:      handlers.NewWebhookHandler(subs, cfg.BillingWebhookSecret),
		Admin:        handlers.NewAdminHandler(subs, referrals),
	})

	account := uuid.New()
	_, err := provision.Provision(context.Background(), account)
	require.NoError(t, err)
	token, err := services.GenerateAccessToken(cfg, &models.User{ID: account, Email: "a@b.io"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"health", http.MethodGet, "/api/health", "", "", http.StatusOK},
		{"validate is public", http.MethodPost, "/api/invites/validate", `{"code":"LB-abc"}`, "", http.StatusBadRequest},
		{"redeem needs jwt", http.MethodPost, "/api/invites/redeem", `{}`, "", http.StatusUnauthorized},
		{"subscription needs jwt", http.MethodGet, "/api/subscription", "", "", http.StatusUnauthorized},
		{"subscription", http.MethodGet, "/api/subscription", "", token, http.StatusOK},
		{"bookmarks need jwt", http.MethodGet, "/api/bookmarks", "", "", http.StatusUnauthorized},
		{"bookmarks gated on expired trial", http.MethodGet, "/api/bookmarks", "", token, http.StatusPaymentRequired},
		{"admin needs admin", http.MethodGet, "/api/admin/subscriptions/" + account.String(), "", token, http.StatusForbidden},
		{"webhook needs secret", http.MethodPost, "/api/webhooks/billing", `{}`, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, resp.StatusCode, tt.name)
	}
}
