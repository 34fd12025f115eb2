package services

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/google/uuid"
)

const day = 24 * time.Hour

// TrialPolicy holds the trial and referral constants.
type TrialPolicy struct {
	TrialLength     time.Duration
	ReferralBonus   time.Duration
	InviteBatchSize int
}

func DefaultTrialPolicy() TrialPolicy {
	return TrialPolicy{
		TrialLength:     15 * day,
		ReferralBonus:   2 * day,
		InviteBatchSize: 5,
	}
}

func PolicyFromConfig(cfg *config.Config) TrialPolicy {
	return TrialPolicy{
		TrialLength:     cfg.TrialLength(),
		ReferralBonus:   cfg.ReferralBonus(),
		InviteBatchSize: cfg.InviteCodesPerAccount,
	}
}

// ExtendTrialPeriod adds one referral bonus to the given end date. Callers
// pass the stored end date, not the current time, so bonuses stack.
func (p TrialPolicy) ExtendTrialPeriod(currentEnd time.Time) time.Time {
	return currentEnd.Add(p.ReferralBonus)
}

// NewInitialSubscription builds the record an account starts with: a fresh
// trial and a full batch of unused invite codes.
func (p TrialPolicy) NewInitialSubscription(codes *invitecode.Generator, accountID uuid.UUID, referredBy *uuid.UUID, now time.Time) (*models.Subscription, error) {
	batch, err := issueBatch(codes, accountID, p.InviteBatchSize, now)
	if err != nil {
		return nil, err
	}
	return &models.Subscription{
		AccountID:      accountID,
		Plan:           models.PlanTrial,
		TrialStartDate: now,
		TrialEndDate:   now.Add(p.TrialLength),
		ReferredBy:     referredBy,
		ReferralCount:  0,
		InviteCodes:    batch,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func issueBatch(codes *invitecode.Generator, ownerID uuid.UUID, n int, now time.Time) ([]models.InviteCode, error) {
	raw, err := codes.Batch(n)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite codes: %w", err)
	}
	batch := make([]models.InviteCode, len(raw))
	for i, code := range raw {
		batch[i] = models.InviteCode{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			Position:  i,
			Code:      code,
			CreatedAt: now,
		}
	}
	return batch, nil
}

// IsTrialExpired is strict: the exact end instant still counts as active.
func IsTrialExpired(trialEnd, now time.Time) bool {
	return now.After(trialEnd)
}

// RemainingTrialDays rounds partial days up and never goes below zero.
func RemainingTrialDays(trialEnd, now time.Time) int {
	left := trialEnd.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + day - 1) / day)
}

// HasAccess reports whether the account may use paid features at now.
func HasAccess(sub *models.Subscription, now time.Time) bool {
	if sub.Plan == models.PlanPro && (sub.ProEndDate == nil || !now.After(*sub.ProEndDate)) {
		return true
	}
	return !IsTrialExpired(sub.TrialEndDate, now)
}
