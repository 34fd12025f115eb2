// Package store persists subscription records and their invite-code pools.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("subscription not found")
	ErrAlreadyExists   = errors.New("subscription already exists")
	ErrCodeNotFound    = errors.New("invite code not found")
	ErrCodeAlreadyUsed = errors.New("invite code already used")
	ErrDuplicateCode   = errors.New("invite code collides with an issued code")
	ErrConflict        = errors.New("concurrent update conflict")
)

// Redemption describes one invite redemption. Store implementations apply it
// atomically: either every change lands or none does.
type Redemption struct {
	Code   string
	UsedAt time.Time
	// Invitee is the fresh record for the redeeming account. ReferredBy is
	// filled in by the store once the code owner is resolved.
	Invitee *models.Subscription
	// Extend maps the inviter's stored trial end date to the new one.
	Extend func(current time.Time) time.Time
}

// SubscriptionStore is the persistence contract for subscription records.
type SubscriptionStore interface {
	// Get returns the record with its invite codes, or ErrNotFound.
	Get(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error)

	// Create inserts a record and its codes. Returns ErrAlreadyExists or
	// ErrDuplicateCode without writing anything.
	Create(ctx context.Context, sub *models.Subscription) error

	// LookupCode resolves a code through the code index, or ErrCodeNotFound.
	LookupCode(ctx context.Context, code string) (*models.InviteCode, error)

	// Redeem marks the code used, extends the owner's trial, increments the
	// owner's referral count and creates the invitee record as one unit.
	// Returns the owner's record after the change.
	Redeem(ctx context.Context, r Redemption) (*models.Subscription, error)

	// Update applies mutate to the locked record and persists the scalar
	// fields. Invite codes are not written.
	Update(ctx context.Context, accountID uuid.UUID, mutate func(sub *models.Subscription) error) (*models.Subscription, error)

	Ping(ctx context.Context) error
}
