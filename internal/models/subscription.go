package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan string

const (
	PlanTrial Plan = "trial"
	PlanPro   Plan = "pro"
)

var ErrInvalidRecord = errors.New("invalid subscription record")

// Subscription is the per-account plan record. The invite-code pool is owned
// exclusively by the record and kept in issue order.
type Subscription struct {
	AccountID      uuid.UUID    `gorm:"type:uuid;primaryKey" json:"account_id"`
	Plan           Plan         `gorm:"size:20;not null;default:'trial'" json:"plan"`
	TrialStartDate time.Time    `gorm:"not null" json:"trial_start_date"`
	TrialEndDate   time.Time    `gorm:"not null" json:"trial_end_date"`
	ReferredBy     *uuid.UUID   `gorm:"type:uuid;index" json:"referred_by"`
	ReferralCount  int          `gorm:"not null;default:0" json:"referral_count"`
	ProStartDate   *time.Time   `json:"pro_start_date"`
	ProEndDate     *time.Time   `json:"pro_end_date"`
	InviteCodes    []InviteCode `gorm:"foreignKey:OwnerID;references:AccountID" json:"invite_codes"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// UsedCodeCount is the derived referral count.
func (s *Subscription) UsedCodeCount() int {
	n := 0
	for i := range s.InviteCodes {
		if s.InviteCodes[i].IsUsed() {
			n++
		}
	}
	return n
}

// Validate rejects records that violate the model's invariants. Only the codes
// that are loaded are checked.
func (s *Subscription) Validate() error {
	if s.AccountID == uuid.Nil {
		return fmt.Errorf("%w: missing account id", ErrInvalidRecord)
	}
	switch s.Plan {
	case PlanTrial:
		if s.ProStartDate != nil || s.ProEndDate != nil {
			return fmt.Errorf("%w: pro dates set on trial plan", ErrInvalidRecord)
		}
	case PlanPro:
	default:
		return fmt.Errorf("%w: unknown plan %q", ErrInvalidRecord, s.Plan)
	}
	if s.TrialEndDate.Before(s.TrialStartDate) {
		return fmt.Errorf("%w: trial ends before it starts", ErrInvalidRecord)
	}
	if s.ReferralCount < 0 {
		return fmt.Errorf("%w: negative referral count", ErrInvalidRecord)
	}
	if s.ReferredBy != nil && *s.ReferredBy == s.AccountID {
		return fmt.Errorf("%w: account refers itself", ErrInvalidRecord)
	}
	for i := range s.InviteCodes {
		if err := s.InviteCodes[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AfterFind keeps malformed rows from leaving the store.
func (s *Subscription) AfterFind(tx *gorm.DB) error {
	return s.Validate()
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	c := *s
	if s.ReferredBy != nil {
		v := *s.ReferredBy
		c.ReferredBy = &v
	}
	if s.ProStartDate != nil {
		v := *s.ProStartDate
		c.ProStartDate = &v
	}
	if s.ProEndDate != nil {
		v := *s.ProEndDate
		c.ProEndDate = &v
	}
	if s.InviteCodes != nil {
		c.InviteCodes = make([]InviteCode, len(s.InviteCodes))
		for i := range s.InviteCodes {
			c.InviteCodes[i] = s.InviteCodes[i].Clone()
		}
	}
	return &c
}
