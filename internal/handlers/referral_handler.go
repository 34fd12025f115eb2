package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Messages the web client matches on.
const (
	msgInvalidFormat   = "Invalid code format"
	msgCodeNotFound    = "Code not found"
	msgCodeUsed        = "Code already used"
	msgMissingParams   = "Missing code or newUserUid"
	msgInvalidCode     = "Invalid code"
	msgAlreadyHasTrial = "Account already has a subscription"
	msgInternal        = "Internal server error"
)

type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

func (h *ReferralHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidateInviteResponse{Error: msgInvalidFormat})
	}

	inviterID, err := h.referralService.Validate(c.UserContext(), req.Code)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, services.ErrInvalidCodeFormat):
			msg = msgInvalidFormat
		case errors.Is(err, services.ErrCodeNotFound):
			msg = msgCodeNotFound
		case errors.Is(err, services.ErrCodeAlreadyUsed):
			msg = msgCodeUsed
		default:
			reportInternal(c, "invite validation failed", err, "code", req.Code)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ValidateInviteResponse{Error: msgInternal})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidateInviteResponse{Error: msg})
	}

	return c.JSON(dto.ValidateInviteResponse{Valid: true, InviterUID: inviterID.String()})
}

// Redeem creates the caller's subscription record through an invite code.
// Register already does this for codes sent at signup, so the endpoint only
// succeeds for an account that has no record yet: a signup whose
// provisioning failed, or a client that creates the record here instead of
// calling POST /api/subscription. Accounts that already have a record get
// "Account already has a subscription".
func (h *ReferralHandler) Redeem(c *fiber.Ctx) error {
	var req dto.RedeemInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.RedeemInviteResponse{Error: msgMissingParams})
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.NewUserUID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.RedeemInviteResponse{Error: msgMissingParams})
	}
	inviteeID, err := uuid.Parse(req.NewUserUID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.RedeemInviteResponse{Error: msgMissingParams})
	}

	callerID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}
	if callerID != inviteeID {
		return c.Status(fiber.StatusForbidden).JSON(dto.RedeemInviteResponse{Error: "Forbidden"})
	}

	res, err := h.referralService.Redeem(c.UserContext(), req.Code, inviteeID)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, services.ErrMissingParameters):
			msg = msgMissingParams
		case errors.Is(err, services.ErrInvalidCodeFormat), errors.Is(err, services.ErrCodeNotFound):
			msg = msgInvalidCode
		case errors.Is(err, services.ErrCodeAlreadyUsed):
			msg = msgCodeUsed
		case errors.Is(err, services.ErrAlreadyProvisioned):
			msg = msgAlreadyHasTrial
		default:
			reportInternal(c, "invite redemption failed", err, "code", req.Code, "account_id", inviteeID.String())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.RedeemInviteResponse{Error: msgInternal})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.RedeemInviteResponse{Error: msg})
	}

	return c.JSON(dto.RedeemInviteResponse{
		Success:         true,
		TrialEndDate:    res.TrialEndDate.UTC().Format(time.RFC3339),
		InviterExtended: res.InviterExtended,
	})
}

// List returns the caller's invite codes and referral counters.
func (h *ReferralHandler) List(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	stats, err := h.referralService.Stats(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No subscription for this account",
			})
		}
		reportInternal(c, "referral stats failed", err, "account_id", accountID.String())
		return internalError(c)
	}

	return c.JSON(dto.ReferralsResponse{
		ReferralCount: stats.Counter,
		UsedCodes:     stats.Derived,
		Consistent:    stats.Consistent,
		InviteCodes:   services.InviteCodeViews(stats.Codes),
	})
}
