package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	app      *app
	store    *store.MemoryStore
	migrated bool
}

func newFixture() *fixture {
	st := store.NewMemoryStore()
	gen := invitecode.MustGenerator("LB")
	policy := services.DefaultTrialPolicy()
	clock := services.WithClock(func() time.Time { return fixedNow })
	f := &fixture{store: st}
	f.app = &app{
		subscriptions: services.NewSubscriptionService(st, policy, gen, clock),
		referrals:     services.NewReferralService(st, policy, gen, clock),
		migrate: func(context.Context) error {
			f.migrated = true
			return nil
		},
		now: func() time.Time { return fixedNow },
	}
	return f
}

func executeCLI(t *testing.T, wire func() (*app, error), args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(wire)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (f *fixture) wire() (*app, error) { return f.app, nil }

func failingWire() (*app, error) { return nil, errors.New("no database") }

func TestCodesGenerateNeedsNoDatabase(t *testing.T) {
	stdout, err := executeCLI(t, failingWire, "codes", "generate", "-n", "3")
	require.NoError(t, err)

	lines := strings.Fields(stdout)
	require.Len(t, lines, 3)
	gen := invitecode.MustGenerator("LB")
	for _, c := range lines {
		assert.True(t, gen.Valid(c), c)
	}

	stdout, err = executeCLI(t, failingWire, "codes", "generate", "--json", "--prefix", "QA", "-n", "2")
	require.NoError(t, err)
	var codes []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &codes))
	require.Len(t, codes, 2)
	assert.True(t, strings.HasPrefix(codes[0], "QA-"))

	_, err = executeCLI(t, failingWire, "codes", "generate", "-n", "0")
	assert.Error(t, err)
}

func TestCodesCheck(t *testing.T) {
	stdout, err := executeCLI(t, failingWire, "codes", "check", "lb-abcdef")
	require.NoError(t, err)
	assert.Contains(t, stdout, "LB-ABCDEF: ok")

	_, err = executeCLI(t, failingWire, "codes", "check", "LB-OOOOOO")
	assert.ErrorContains(t, err, "invalid code format")
}

func TestSubscriptionShowAndProvision(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	_, err := executeCLI(t, f.wire, "subscription", "show", id.String())
	assert.ErrorIs(t, err, services.ErrSubscriptionNotFound)

	stdout, err := executeCLI(t, f.wire, "sub", "provision", id.String())
	require.NoError(t, err)
	assert.Contains(t, stdout, "plan: trial (active)")
	assert.Contains(t, stdout, "15 day(s) left")

	stdout, err = executeCLI(t, f.wire, "subscription", "show", id.String(), "--json")
	require.NoError(t, err)
	var view dto.SubscriptionStatusResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, id, view.AccountID)
	assert.Len(t, view.InviteCodes, 5)

	_, err = executeCLI(t, f.wire, "subscription", "show", "not-a-uuid")
	assert.ErrorContains(t, err, "account id")
}

func TestReferralsReconcile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inviter, err := f.app.subscriptions.Provision(ctx, uuid.New())
	require.NoError(t, err)
	_, err = f.app.referrals.Redeem(ctx, inviter.InviteCodes[0].Code, uuid.New())
	require.NoError(t, err)
	_, err = f.store.Update(ctx, inviter.AccountID, func(sub *models.Subscription) error {
		sub.ReferralCount = 4
		return nil
	})
	require.NoError(t, err)

	stdout, err := executeCLI(t, f.wire, "referrals", "reconcile", "--dry-run", inviter.AccountID.String())
	require.NoError(t, err)
	assert.Contains(t, stdout, "counter=4 used=1 consistent=false")

	stdout, err = executeCLI(t, f.wire, "referrals", "reconcile", inviter.AccountID.String())
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 -> 1")

	stats, err := f.app.referrals.Stats(ctx, inviter.AccountID)
	require.NoError(t, err)
	assert.True(t, stats.Consistent)
}

func TestMigrate(t *testing.T) {
	f := newFixture()
	stdout, err := executeCLI(t, f.wire, "migrate")
	require.NoError(t, err)
	assert.True(t, f.migrated)
	assert.Contains(t, stdout, "schema up to date")

	_, err = executeCLI(t, failingWire, "migrate")
	assert.ErrorContains(t, err, "no database")
}
