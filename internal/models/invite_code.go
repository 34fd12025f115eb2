package models

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/google/uuid"
)

// InviteCode is a single-use referral token. The unique index on Code doubles
// as the code -> owner lookup index.
type InviteCode struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Position  int        `gorm:"not null" json:"-"`
	Code      string     `gorm:"size:16;not null;uniqueIndex:idx_invite_codes_code" json:"code"`
	UsedBy    *uuid.UUID `gorm:"type:uuid" json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}

func (c *InviteCode) IsUsed() bool {
	return c.UsedBy != nil
}

func (c *InviteCode) Validate() error {
	if !invitecode.WellFormed(c.Code) {
		return fmt.Errorf("%w: malformed invite code %q", ErrInvalidRecord, c.Code)
	}
	if (c.UsedBy == nil) != (c.UsedAt == nil) {
		return fmt.Errorf("%w: invite code %s half marked as used", ErrInvalidRecord, c.Code)
	}
	return nil
}

func (c InviteCode) Clone() InviteCode {
	if c.UsedBy != nil {
		v := *c.UsedBy
		c.UsedBy = &v
	}
	if c.UsedAt != nil {
		v := *c.UsedAt
		c.UsedAt = &v
	}
	return c
}
