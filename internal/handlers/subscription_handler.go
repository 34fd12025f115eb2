package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	status, err := h.subscriptionService.Status(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No subscription for this account",
			})
		}
		reportInternal(c, "subscription status failed", err, "account_id", accountID.String())
		return internalError(c)
	}
	return c.JSON(status)
}

// Provision creates the caller's trial if signup left it without one.
func (h *SubscriptionHandler) Provision(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	if _, err := h.subscriptionService.Provision(c.UserContext(), accountID); err != nil {
		reportInternal(c, "provision failed", err, "account_id", accountID.String())
		return internalError(c)
	}

	status, err := h.subscriptionService.Status(c.UserContext(), accountID)
	if err != nil {
		reportInternal(c, "subscription status failed", err, "account_id", accountID.String())
		return internalError(c)
	}
	return c.JSON(status)
}
