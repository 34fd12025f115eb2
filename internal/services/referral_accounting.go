package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
	"github.com/google/uuid"
)

// ReferralStats compares the stored counter with the count derived from the
// code pool.
type ReferralStats struct {
	AccountID  uuid.UUID
	Counter    int
	Derived    int
	Consistent bool
	Codes      []models.InviteCode
}

func (s *ReferralService) Stats(ctx context.Context, accountID uuid.UUID) (*ReferralStats, error) {
	sub, err := s.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	derived := sub.UsedCodeCount()
	return &ReferralStats{
		AccountID:  sub.AccountID,
		Counter:    sub.ReferralCount,
		Derived:    derived,
		Consistent: derived == sub.ReferralCount,
		Codes:      sub.InviteCodes,
	}, nil
}

// Reconcile resets the stored counter to the number of used codes.
func (s *ReferralService) Reconcile(ctx context.Context, accountID uuid.UUID) (before, after int, err error) {
	_, err = s.store.Update(ctx, accountID, func(sub *models.Subscription) error {
		before = sub.ReferralCount
		after = sub.UsedCodeCount()
		sub.ReferralCount = after
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, 0, ErrSubscriptionNotFound
		}
		return 0, 0, errors.Join(ErrStoreUnavailable, err)
	}
	if before != after {
		slog.Warn("referral count reconciled", "account_id", accountID.String(), "before", before, "after", after)
	}
	return before, after, nil
}
