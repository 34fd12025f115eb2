package store

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps records in process. Every operation holds one mutex, and
// a redemption is applied only after all of its preconditions hold.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*models.Subscription
	codeIndex map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[uuid.UUID]*models.Subscription),
		codeIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Get(_ context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkInsertable(sub); err != nil {
		return err
	}
	m.insert(sub)
	return nil
}

func (m *MemoryStore) LookupCode(_ context.Context, code string) (*models.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, entry, err := m.findCode(code)
	if err != nil {
		return nil, err
	}
	c := entry.Clone()
	return &c, nil
}

func (m *MemoryStore) Redeem(_ context.Context, r Redemption) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, entry, err := m.findCode(r.Code)
	if err != nil {
		return nil, err
	}
	if entry.IsUsed() {
		return nil, ErrCodeAlreadyUsed
	}

	invitee := r.Invitee.Clone()
	if err := m.checkInsertable(invitee); err != nil {
		return nil, err
	}
	ownerID := owner.AccountID
	invitee.ReferredBy = &ownerID
	if err := invitee.Validate(); err != nil {
		return nil, err
	}

	usedBy := invitee.AccountID
	usedAt := r.UsedAt
	entry.UsedBy = &usedBy
	entry.UsedAt = &usedAt
	owner.TrialEndDate = r.Extend(owner.TrialEndDate)
	owner.ReferralCount++
	owner.UpdatedAt = r.UsedAt

	m.insert(invitee)
	return owner.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, accountID uuid.UUID, mutate func(sub *models.Subscription) error) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[accountID]
	if !ok {
		return nil, ErrNotFound
	}

	working := rec.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := working.Validate(); err != nil {
		return nil, err
	}

	// Only scalar fields are persisted, matching the SQL store.
	working.InviteCodes = rec.InviteCodes
	m.records[accountID] = working
	return working.Clone(), nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) findCode(code string) (*models.Subscription, *models.InviteCode, error) {
	ownerID, ok := m.codeIndex[code]
	if !ok {
		return nil, nil, ErrCodeNotFound
	}
	owner := m.records[ownerID]
	for i := range owner.InviteCodes {
		if owner.InviteCodes[i].Code == code {
			return owner, &owner.InviteCodes[i], nil
		}
	}
	return nil, nil, ErrCodeNotFound
}

func (m *MemoryStore) checkInsertable(sub *models.Subscription) error {
	if _, exists := m.records[sub.AccountID]; exists {
		return ErrAlreadyExists
	}
	seen := make(map[string]struct{}, len(sub.InviteCodes))
	for i := range sub.InviteCodes {
		code := sub.InviteCodes[i].Code
		if _, taken := m.codeIndex[code]; taken {
			return ErrDuplicateCode
		}
		if _, dup := seen[code]; dup {
			return ErrDuplicateCode
		}
		seen[code] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) insert(sub *models.Subscription) {
	rec := sub.Clone()
	for i := range rec.InviteCodes {
		rec.InviteCodes[i].OwnerID = rec.AccountID
		if rec.InviteCodes[i].ID == uuid.Nil {
			rec.InviteCodes[i].ID = uuid.New()
		}
		m.codeIndex[rec.InviteCodes[i].Code] = rec.AccountID
	}
	m.records[rec.AccountID] = rec
}
