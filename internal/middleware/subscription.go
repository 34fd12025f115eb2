package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AccessChecker reports whether an account currently has paid-feature access.
type AccessChecker interface {
	HasActiveAccess(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// SubscriptionRequired rejects accounts whose trial has run out and that are
// not on an active pro plan. Must run after JWTProtected.
func SubscriptionRequired(checker AccessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := AccountID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		ok, err := checker.HasActiveAccess(c.UserContext(), accountID)
		switch {
		case errors.Is(err, services.ErrSubscriptionNotFound):
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "No subscription for this account",
			})
		case err != nil:
			slog.Error("subscription check failed", "account_id", accountID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		case !ok:
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Trial expired, upgrade to continue",
			})
		}
		return c.Next()
	}
}
