package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
	"github.com/google/uuid"
)

var (
	ErrMissingParameters  = errors.New("missing code or account id")
	ErrInvalidCodeFormat  = errors.New("invalid code format")
	ErrCodeNotFound       = errors.New("code not found")
	ErrCodeAlreadyUsed    = errors.New("code already used")
	ErrAlreadyProvisioned = errors.New("account already has a subscription")
)

// RedemptionResult is what a successful redemption reports back.
type RedemptionResult struct {
	TrialEndDate        time.Time
	InviterExtended     bool
	InviterID           uuid.UUID
	InviterTrialEndDate time.Time
}

// ReferralService validates and redeems invite codes and keeps the referral
// counters honest.
type ReferralService struct {
	store  store.SubscriptionStore
	policy TrialPolicy
	codes  *invitecode.Generator
	opts   serviceOptions
}

func NewReferralService(st store.SubscriptionStore, policy TrialPolicy, codes *invitecode.Generator, opts ...Option) *ReferralService {
	return &ReferralService{
		store:  st,
		policy: policy,
		codes:  codes,
		opts:   buildOptions(opts),
	}
}

// Validate returns the owner of an unused code. It never writes.
func (s *ReferralService) Validate(ctx context.Context, code string) (uuid.UUID, error) {
	code = invitecode.Normalize(code)
	if !s.codes.Valid(code) {
		return uuid.Nil, ErrInvalidCodeFormat
	}

	entry, err := s.store.LookupCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			return uuid.Nil, ErrCodeNotFound
		}
		return uuid.Nil, errors.Join(ErrStoreUnavailable, err)
	}
	if entry.IsUsed() {
		return uuid.Nil, ErrCodeAlreadyUsed
	}
	return entry.OwnerID, nil
}

// Redeem spends code on behalf of a new account. Marking the code, extending
// the inviter, counting the referral and creating the invitee's record happen
// together or not at all.
func (s *ReferralService) Redeem(ctx context.Context, code string, inviteeID uuid.UUID) (*RedemptionResult, error) {
	if strings.TrimSpace(code) == "" || inviteeID == uuid.Nil {
		return nil, ErrMissingParameters
	}
	code = invitecode.Normalize(code)
	if !s.codes.Valid(code) {
		return nil, ErrInvalidCodeFormat
	}

	var lastErr error
	for attempt := 1; attempt <= s.opts.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}

		now := s.opts.now()
		invitee, err := s.policy.NewInitialSubscription(s.codes, inviteeID, nil, now)
		if err != nil {
			return nil, err
		}

		owner, err := s.store.Redeem(ctx, store.Redemption{
			Code:    code,
			UsedAt:  now,
			Invitee: invitee,
			Extend:  s.policy.ExtendTrialPeriod,
		})
		switch {
		case err == nil:
			slog.Info("invite redeemed",
				"code", code,
				"account_id", inviteeID.String(),
				"inviter_id", owner.AccountID.String(),
				"inviter_trial_end", owner.TrialEndDate,
			)
			return &RedemptionResult{
				TrialEndDate:        invitee.TrialEndDate,
				InviterExtended:     true,
				InviterID:           owner.AccountID,
				InviterTrialEndDate: owner.TrialEndDate,
			}, nil
		case errors.Is(err, store.ErrCodeNotFound):
			return nil, ErrCodeNotFound
		case errors.Is(err, store.ErrCodeAlreadyUsed):
			return nil, ErrCodeAlreadyUsed
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, ErrAlreadyProvisioned
		case errors.Is(err, store.ErrDuplicateCode), errors.Is(err, store.ErrConflict):
			slog.Warn("redeem retry", "code", code, "account_id", inviteeID.String(), "attempt", attempt, "error", err)
			lastErr = err
		default:
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
	}
	return nil, errors.Join(ErrStoreUnavailable, fmt.Errorf("redeem gave up after %d attempts: %w", s.opts.maxAttempts, lastErr))
}
