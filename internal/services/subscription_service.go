package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrStoreUnavailable     = errors.New("subscription store unavailable")
	ErrInvalidBillingEvent  = errors.New("invalid billing event")
)

type SubscriptionService struct {
	store  store.SubscriptionStore
	policy TrialPolicy
	codes  *invitecode.Generator
	opts   serviceOptions
}

func NewSubscriptionService(st store.SubscriptionStore, policy TrialPolicy, codes *invitecode.Generator, opts ...Option) *SubscriptionService {
	return &SubscriptionService{
		store:  st,
		policy: policy,
		codes:  codes,
		opts:   buildOptions(opts),
	}
}

// Provision creates the initial trial record for an account. Calling it for an
// account that already has a record returns that record unchanged.
func (s *SubscriptionService) Provision(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}

		sub, err := s.policy.NewInitialSubscription(s.codes, accountID, nil, s.opts.now())
		if err != nil {
			return nil, err
		}

		err = s.store.Create(ctx, sub)
		switch {
		case err == nil:
			slog.Info("subscription provisioned", "account_id", accountID.String(), "trial_end", sub.TrialEndDate)
			return sub, nil
		case errors.Is(err, store.ErrAlreadyExists):
			return s.Get(ctx, accountID)
		case errors.Is(err, store.ErrDuplicateCode), errors.Is(err, store.ErrConflict):
			slog.Warn("provision retry", "account_id", accountID.String(), "attempt", attempt, "error", err)
			lastErr = err
		default:
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
	}
	return nil, errors.Join(ErrStoreUnavailable, fmt.Errorf("provision gave up after %d attempts: %w", s.opts.maxAttempts, lastErr))
}

func (s *SubscriptionService) Get(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return sub, nil
}

func (s *SubscriptionService) Status(ctx context.Context, accountID uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return StatusView(sub, s.opts.now()), nil
}

// HasActiveAccess reports whether the account may use gated features now.
func (s *SubscriptionService) HasActiveAccess(ctx context.Context, accountID uuid.UUID) (bool, error) {
	sub, err := s.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return HasAccess(sub, s.opts.now()), nil
}

// ActivatePro moves the account onto the paid plan. A zero end means the
// period has no known end yet.
func (s *SubscriptionService) ActivatePro(ctx context.Context, accountID uuid.UUID, start, end time.Time) (*models.Subscription, error) {
	return s.update(ctx, accountID, func(sub *models.Subscription) error {
		sub.Plan = models.PlanPro
		switch {
		case !start.IsZero():
			sub.ProStartDate = &start
		case sub.ProStartDate == nil:
			now := s.opts.now()
			sub.ProStartDate = &now
		}
		if end.IsZero() {
			sub.ProEndDate = nil
		} else {
			sub.ProEndDate = &end
		}
		return nil
	})
}

// ExpirePro drops the account back to the trial plan. The trial end date is
// kept, so banked referral days still count.
func (s *SubscriptionService) ExpirePro(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	return s.update(ctx, accountID, func(sub *models.Subscription) error {
		sub.Plan = models.PlanTrial
		sub.ProStartDate = nil
		sub.ProEndDate = nil
		return nil
	})
}

func (s *SubscriptionService) HandleBillingEvent(ctx context.Context, event *dto.BillingEvent) error {
	accountID, err := uuid.Parse(event.AccountID)
	if err != nil {
		return fmt.Errorf("%w: account_id %q", ErrInvalidBillingEvent, event.AccountID)
	}

	switch event.Type {
	case "subscription.activated", "subscription.renewed":
		_, err = s.ActivatePro(ctx, accountID, msToTime(event.PeriodStartMs), msToTime(event.PeriodEndMs))
	case "subscription.cancelled":
		// Access runs until the paid period ends.
		_, err = s.update(ctx, accountID, func(sub *models.Subscription) error {
			if sub.Plan != models.PlanPro {
				return nil
			}
			if end := msToTime(event.PeriodEndMs); !end.IsZero() {
				sub.ProEndDate = &end
			}
			return nil
		})
	case "subscription.expired":
		_, err = s.ExpirePro(ctx, accountID)
	default:
		slog.Info("billing event ignored", "type", event.Type, "event_id", event.ID)
		return nil
	}
	return err
}

func (s *SubscriptionService) update(ctx context.Context, accountID uuid.UUID, mutate func(sub *models.Subscription) error) (*models.Subscription, error) {
	sub, err := s.store.Update(ctx, accountID, mutate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return sub, nil
}

// StatusView renders a record with its derived trial state at now.
func StatusView(sub *models.Subscription, now time.Time) *dto.SubscriptionStatusResponse {
	return &dto.SubscriptionStatusResponse{
		AccountID:          sub.AccountID,
		Plan:               string(sub.Plan),
		Active:             HasAccess(sub, now),
		TrialStartDate:     sub.TrialStartDate,
		TrialEndDate:       sub.TrialEndDate,
		TrialExpired:       IsTrialExpired(sub.TrialEndDate, now),
		RemainingTrialDays: RemainingTrialDays(sub.TrialEndDate, now),
		ReferredBy:         sub.ReferredBy,
		ReferralCount:      sub.ReferralCount,
		ProStartDate:       sub.ProStartDate,
		ProEndDate:         sub.ProEndDate,
		InviteCodes:        InviteCodeViews(sub.InviteCodes),
	}
}

func InviteCodeViews(codes []models.InviteCode) []dto.InviteCodeResponse {
	views := make([]dto.InviteCodeResponse, len(codes))
	for i, c := range codes {
		views[i] = dto.InviteCodeResponse{
			Code:   c.Code,
			Used:   c.IsUsed(),
			UsedAt: c.UsedAt,
		}
	}
	return views
}

func msToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
