package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
)

type referralFixture struct {
	store     store.SubscriptionStore
	subs      *services.SubscriptionService
	referrals *services.ReferralService
	inviter   *models.Subscription
}

func newReferralFixture(t *testing.T, st store.SubscriptionStore, now time.Time) *referralFixture {
	t.Helper()
	gen := invitecode.MustGenerator("LB")
	policy := services.DefaultTrialPolicy()
	f := &referralFixture{
		store:     st,
		subs:      services.NewSubscriptionService(st, policy, gen, services.WithClock(fixedClock(now))),
		referrals: services.NewReferralService(st, policy, gen, services.WithClock(fixedClock(now))),
	}
	inviter, err := f.subs.Provision(context.Background(), uuid.New())
	require.NoError(t, err)
	f.inviter = inviter
	return f
}

func (f *referralFixture) code(i int) string {
	return f.inviter.InviteCodes[i].Code
}

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)

	owner, err := f.referrals.Validate(ctx, f.code(0))
	require.NoError(t, err)
	assert.Equal(t, f.inviter.AccountID, owner)

	// Normalized before matching.
	owner, err = f.referrals.Validate(ctx, "  "+strings.ToLower(f.code(1))+" ")
	require.NoError(t, err)
	assert.Equal(t, f.inviter.AccountID, owner)

	_, err = f.referrals.Validate(ctx, "LB-abc")
	assert.ErrorIs(t, err, services.ErrInvalidCodeFormat)
	_, err = f.referrals.Validate(ctx, "LB-OOOOOO")
	assert.ErrorIs(t, err, services.ErrInvalidCodeFormat)
	_, err = f.referrals.Validate(ctx, "")
	assert.ErrorIs(t, err, services.ErrInvalidCodeFormat)

	_, err = f.referrals.Validate(ctx, unusedFormatCode(f.inviter))
	assert.ErrorIs(t, err, services.ErrCodeNotFound)
}

func TestValidate_MalformedNeverReachesStore(t *testing.T) {
	t.Parallel()
	st := &countingStore{MemoryStore: store.NewMemoryStore()}
	svc := services.NewReferralService(st, services.DefaultTrialPolicy(), invitecode.MustGenerator("LB"))

	for _, code := range []string{"LB-abc", "LB-OOOOOO", "XX-ABCDEF", "LBABCDEF"} {
		_, err := svc.Validate(context.Background(), code)
		assert.ErrorIs(t, err, services.ErrInvalidCodeFormat, code)
		_, err = svc.Redeem(context.Background(), code, uuid.New())
		assert.ErrorIs(t, err, services.ErrInvalidCodeFormat, code)
	}
	assert.Zero(t, st.lookups)
	assert.Zero(t, st.redeems)
}

func TestRedeem_ScenarioA(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)
	inviteeID := uuid.New()

	res, err := f.referrals.Redeem(ctx, f.code(0), inviteeID)
	require.NoError(t, err)
	assert.True(t, res.InviterExtended)
	assert.Equal(t, f.inviter.AccountID, res.InviterID)
	assert.Equal(t, t0.AddDate(0, 0, 15), res.TrialEndDate)
	assert.Equal(t, f.inviter.TrialEndDate.Add(48*time.Hour), res.InviterTrialEndDate)

	inviter, err := f.subs.Get(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, f.inviter.TrialEndDate.Add(48*time.Hour), inviter.TrialEndDate)
	assert.Equal(t, 1, inviter.ReferralCount)
	assert.Equal(t, 1, inviter.UsedCodeCount())
	require.NotNil(t, inviter.InviteCodes[0].UsedBy)
	assert.Equal(t, inviteeID, *inviter.InviteCodes[0].UsedBy)
	assert.Equal(t, t0, *inviter.InviteCodes[0].UsedAt)

	invitee, err := f.subs.Get(ctx, inviteeID)
	require.NoError(t, err)
	require.NotNil(t, invitee.ReferredBy)
	assert.Equal(t, f.inviter.AccountID, *invitee.ReferredBy)
	assert.Equal(t, t0.AddDate(0, 0, 15), invitee.TrialEndDate)
	assert.Len(t, invitee.InviteCodes, 5)
	assert.Zero(t, invitee.ReferralCount)

	_, err = f.referrals.Validate(ctx, f.code(0))
	assert.ErrorIs(t, err, services.ErrCodeAlreadyUsed)
}

func TestRedeem_ScenarioB(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)

	_, err := f.referrals.Redeem(ctx, f.code(0), uuid.New())
	require.NoError(t, err)

	_, err = f.referrals.Redeem(ctx, f.code(0), uuid.New())
	assert.ErrorIs(t, err, services.ErrCodeAlreadyUsed)

	inviter, err := f.subs.Get(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, f.inviter.TrialEndDate.Add(48*time.Hour), inviter.TrialEndDate, "extended exactly once")
	assert.Equal(t, 1, inviter.ReferralCount)
}

func TestRedeem_BonusesStack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)

	for i := 0; i < 5; i++ {
		_, err := f.referrals.Redeem(ctx, f.code(i), uuid.New())
		require.NoError(t, err)
	}

	inviter, err := f.subs.Get(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, f.inviter.TrialEndDate.Add(10*24*time.Hour), inviter.TrialEndDate)
	assert.Equal(t, 5, inviter.ReferralCount)
	assert.Equal(t, 5, inviter.UsedCodeCount())
}

func TestRedeem_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)

	_, err := f.referrals.Redeem(ctx, "", uuid.New())
	assert.ErrorIs(t, err, services.ErrMissingParameters)
	_, err = f.referrals.Redeem(ctx, f.code(0), uuid.Nil)
	assert.ErrorIs(t, err, services.ErrMissingParameters)

	_, err = f.referrals.Redeem(ctx, unusedFormatCode(f.inviter), uuid.New())
	assert.ErrorIs(t, err, services.ErrCodeNotFound)

	// Existing accounts, the inviter included, cannot take a code.
	_, err = f.referrals.Redeem(ctx, f.code(0), f.inviter.AccountID)
	assert.ErrorIs(t, err, services.ErrAlreadyProvisioned)

	other, err := f.subs.Provision(ctx, uuid.New())
	require.NoError(t, err)
	_, err = f.referrals.Redeem(ctx, f.code(0), other.AccountID)
	assert.ErrorIs(t, err, services.ErrAlreadyProvisioned)

	inviter, err := f.subs.Get(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, f.inviter.TrialEndDate, inviter.TrialEndDate)
	assert.Zero(t, inviter.ReferralCount)
	assert.Zero(t, inviter.UsedCodeCount())
}

func TestRedeem_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	st := &flakyStore{MemoryStore: store.NewMemoryStore(), err: store.ErrConflict}
	f := newReferralFixture(t, st, t0)
	st.calls, st.fails = 0, 2

	_, err := f.referrals.Redeem(context.Background(), f.code(0), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, st.calls)

	st.calls, st.fails = 0, 10
	_, err = f.referrals.Redeem(context.Background(), f.code(1), uuid.New())
	assert.ErrorIs(t, err, services.ErrStoreUnavailable)
	assert.Equal(t, 3, st.calls)
}

func TestRedeem_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newReferralFixture(t, store.NewMemoryStore(), t0)
	code := f.code(2)

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.referrals.Redeem(ctx, code, uuid.New())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, services.ErrCodeAlreadyUsed)
	}
	assert.Equal(t, 1, wins)

	inviter, err := f.subs.Get(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 1, inviter.ReferralCount)
	assert.Equal(t, f.inviter.TrialEndDate.Add(48*time.Hour), inviter.TrialEndDate)
}

func TestStatsAndReconcile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemoryStore()
	f := newReferralFixture(t, st, t0)

	_, err := f.referrals.Redeem(ctx, f.code(0), uuid.New())
	require.NoError(t, err)
	_, err = f.referrals.Redeem(ctx, f.code(3), uuid.New())
	require.NoError(t, err)

	stats, err := f.referrals.Stats(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Counter)
	assert.Equal(t, 2, stats.Derived)
	assert.True(t, stats.Consistent)
	assert.Len(t, stats.Codes, 5)

	// Simulate drift left behind by an older writer.
	_, err = st.Update(ctx, f.inviter.AccountID, func(sub *models.Subscription) error {
		sub.ReferralCount = 7
		return nil
	})
	require.NoError(t, err)

	stats, err = f.referrals.Stats(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.False(t, stats.Consistent)

	before, after, err := f.referrals.Reconcile(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 7, before)
	assert.Equal(t, 2, after)

	stats, err = f.referrals.Stats(ctx, f.inviter.AccountID)
	require.NoError(t, err)
	assert.True(t, stats.Consistent)

	_, _, err = f.referrals.Reconcile(ctx, uuid.New())
	assert.ErrorIs(t, err, services.ErrSubscriptionNotFound)
}

// countingStore records how often the code index is consulted.
type countingStore struct {
	*store.MemoryStore
	mu      sync.Mutex
	lookups int
	redeems int
}

func (c *countingStore) LookupCode(ctx context.Context, code string) (*models.InviteCode, error) {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
	return c.MemoryStore.LookupCode(ctx, code)
}

func (c *countingStore) Redeem(ctx context.Context, r store.Redemption) (*models.Subscription, error) {
	c.mu.Lock()
	c.redeems++
	c.mu.Unlock()
	return c.MemoryStore.Redeem(ctx, r)
}

// unusedFormatCode returns a well-formed code that sub does not own.
func unusedFormatCode(sub *models.Subscription) string {
	candidates := []string{"LB-ZZZZZZ", "LB-YYYYYY"}
	for _, c := range candidates {
		owned := false
		for _, ic := range sub.InviteCodes {
			if ic.Code == c {
				owned = true
			}
		}
		if !owned {
			return c
		}
	}
	return "LB-XXXXXX"
}
