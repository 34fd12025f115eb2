package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubscription() *Subscription {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	return &Subscription{
		AccountID:      id,
		Plan:           PlanTrial,
		TrialStartDate: now,
		TrialEndDate:   now.AddDate(0, 0, 15),
		InviteCodes: []InviteCode{
			{ID: uuid.New(), OwnerID: id, Position: 0, Code: "LB-AB23CD", CreatedAt: now},
			{ID: uuid.New(), OwnerID: id, Position: 1, Code: "LB-XY7892", CreatedAt: now},
		},
	}
}

func TestSubscription_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validSubscription().Validate())

	other := uuid.New()
	ts := time.Now()
	tests := []struct {
		name   string
		mutate func(s *Subscription)
		reason string
	}{
		{"missing account", func(s *Subscription) { s.AccountID = uuid.Nil }, "missing account id"},
		{"unknown plan", func(s *Subscription) { s.Plan = "enterprise" }, "unknown plan"},
		{"pro dates on trial", func(s *Subscription) { s.ProStartDate = &ts }, "pro dates set on trial plan"},
		{"end before start", func(s *Subscription) { s.TrialEndDate = s.TrialStartDate.Add(-time.Second) }, "trial ends before it starts"},
		{"negative count", func(s *Subscription) { s.ReferralCount = -1 }, "negative referral count"},
		{"self referral", func(s *Subscription) { id := s.AccountID; s.ReferredBy = &id }, "account refers itself"},
		{"malformed code", func(s *Subscription) { s.InviteCodes[0].Code = "LB-OOOOOO" }, "malformed invite code"},
		{"half used code", func(s *Subscription) { s.InviteCodes[1].UsedBy = &other }, "half marked as used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSubscription()
			require.NoError(t, s.Validate())
			tt.mutate(s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.ErrorContains(t, err, tt.reason)
		})
	}
}

func TestSubscription_FixtureCodesAreWellFormed(t *testing.T) {
	t.Parallel()

	for _, c := range validSubscription().InviteCodes {
		assert.NoError(t, c.Validate(), c.Code)
	}
}

func TestSubscription_ProPlanAllowsProDates(t *testing.T) {
	t.Parallel()

	s := validSubscription()
	start := s.TrialStartDate
	end := start.AddDate(0, 1, 0)
	s.Plan = PlanPro
	s.ProStartDate = &start
	s.ProEndDate = &end
	assert.NoError(t, s.Validate())
}

func TestSubscription_UsedCodeCount(t *testing.T) {
	t.Parallel()

	s := validSubscription()
	assert.Equal(t, 0, s.UsedCodeCount())

	by := uuid.New()
	at := time.Now()
	s.InviteCodes[1].UsedBy = &by
	s.InviteCodes[1].UsedAt = &at
	assert.Equal(t, 1, s.UsedCodeCount())
}

func TestSubscription_CloneIsDeep(t *testing.T) {
	t.Parallel()

	s := validSubscription()
	ref := uuid.New()
	s.ReferredBy = &ref

	c := s.Clone()
	by := uuid.New()
	at := time.Now()
	c.InviteCodes[0].UsedBy = &by
	c.InviteCodes[0].UsedAt = &at
	*c.ReferredBy = uuid.New()

	assert.False(t, s.InviteCodes[0].IsUsed())
	assert.Equal(t, ref, *s.ReferredBy)
}
