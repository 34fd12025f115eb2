package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	subscriptionService *services.SubscriptionService
	referralService     *services.ReferralService
}

func NewAdminHandler(subscriptionService *services.SubscriptionService, referralService *services.ReferralService) *AdminHandler {
	return &AdminHandler{
		subscriptionService: subscriptionService,
		referralService:     referralService,
	}
}

func (h *AdminHandler) GetSubscription(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid account ID")
	}

	status, err := h.subscriptionService.Status(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		reportInternal(c, "admin subscription lookup failed", err, "account_id", accountID.String())
		return internalError(c)
	}
	return c.JSON(status)
}

func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid account ID")
	}

	before, after, err := h.referralService.Reconcile(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		reportInternal(c, "referral reconcile failed", err, "account_id", accountID.String())
		return internalError(c)
	}
	return c.JSON(dto.ReconcileResponse{AccountID: accountID, Before: before, After: after})
}
