package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidURL       = errors.New("url must be an absolute http or https link")
	ErrInvalidBookmark  = errors.New("title or note too long")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrContentRejected  = errors.New("content rejected")
)

const (
	maxURLLength   = 2048
	maxTitleLength = 300
	maxNoteLength  = 2000
)

// RejectedContentError carries the classifier's reasons for one field.
type RejectedContentError struct {
	Field   string
	Reasons []string
}

func (e *RejectedContentError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Field, strings.Join(e.Reasons, ", "))
}

func (e *RejectedContentError) Is(target error) bool {
	return target == ErrContentRejected
}

type BookmarkService struct {
	db         *gorm.DB
	classifier ContentClassifier
}

func NewBookmarkService(db *gorm.DB, classifier ContentClassifier) *BookmarkService {
	return &BookmarkService{db: db, classifier: classifier}
}

func (s *BookmarkService) Create(ctx context.Context, accountID uuid.UUID, req *dto.CreateBookmarkRequest) (*models.Bookmark, error) {
	bm, err := s.prepare(ctx, accountID, req)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(bm).Error; err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}
	return bm, nil
}

func (s *BookmarkService) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Bookmark, int64, error) {
	var bookmarks []models.Bookmark
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Bookmark{}).Where("account_id = ?", accountID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&bookmarks).Error; err != nil {
		return nil, 0, err
	}
	return bookmarks, total, nil
}

func (s *BookmarkService) Delete(ctx context.Context, accountID, bookmarkID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", bookmarkID, accountID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// prepare validates the request and builds the row without touching the db.
func (s *BookmarkService) prepare(ctx context.Context, accountID uuid.UUID, req *dto.CreateBookmarkRequest) (*models.Bookmark, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" || len(raw) > maxURLLength {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	title := strings.TrimSpace(req.Title)
	note := strings.TrimSpace(req.Note)
	if len(title) > maxTitleLength || len(note) > maxNoteLength {
		return nil, ErrInvalidBookmark
	}

	for _, f := range []struct{ name, text string }{{"title", title}, {"note", note}} {
		if v := s.classifier.Classify(ctx, f.name, f.text); !v.Allowed {
			return nil, &RejectedContentError{Field: f.name, Reasons: v.Reasons}
		}
	}

	if title == "" {
		title = u.Host
	}
	return &models.Bookmark{
		ID:        uuid.New(),
		AccountID: accountID,
		URL:       u.String(),
		Title:     title,
		Note:      note,
	}, nil
}
