package models

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved link owned by one account.
type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index:idx_bookmarks_account_created,priority:1" json:"-"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Title     string    `gorm:"size:300" json:"title"`
	Note      string    `gorm:"size:2000" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_bookmarks_account_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
