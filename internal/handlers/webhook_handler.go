package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	subscriptionService *services.SubscriptionService
	secret              string
}

func NewWebhookHandler(subscriptionService *services.SubscriptionService, secret string) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		secret:              secret,
	}
}

// HandleBilling applies plan changes posted by the payment bridge. The
// Authorization header must equal the shared secret.
func (h *WebhookHandler) HandleBilling(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(h.secret)) != 1 {
		return unauthorized(c)
	}

	var webhook dto.BillingWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return badRequest(c, "Invalid webhook payload")
	}

	if err := h.subscriptionService.HandleBillingEvent(c.UserContext(), &webhook.Event); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBillingEvent):
			return badRequest(c, err.Error())
		case errors.Is(err, services.ErrSubscriptionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown account",
			})
		}
		reportInternal(c, "webhook processing failed", err, "event_type", webhook.Event.Type, "event_id", webhook.Event.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook processed", "event_type", webhook.Event.Type, "event_id", webhook.Event.ID, "account_id", webhook.Event.AccountID)
	return c.JSON(fiber.Map{"received": true})
}
