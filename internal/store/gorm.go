package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres error codes and constraint names the store branches on.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"

	codeIndexConstraint    = "idx_invite_codes_code"
	subscriptionPrimaryKey = "subscriptions_pkey"
)

// GormStore is the Postgres-backed SubscriptionStore. Redemptions lock the
// code row and the owner's row for the length of one transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

func (s *GormStore) Get(ctx context.Context, accountID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Preload("InviteCodes", byPosition).
		Where("account_id = ?", accountID).
		First(&sub).Error
	if err != nil {
		return nil, translate(err, ErrNotFound)
	}
	return &sub, nil
}

func (s *GormStore) Create(ctx context.Context, sub *models.Subscription) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertSubscription(tx, sub)
	})
	return translate(err, ErrNotFound)
}

func (s *GormStore) LookupCode(ctx context.Context, code string) (*models.InviteCode, error) {
	var entry models.InviteCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&entry).Error; err != nil {
		return nil, translate(err, ErrCodeNotFound)
	}
	return &entry, nil
}

func (s *GormStore) Redeem(ctx context.Context, r Redemption) (*models.Subscription, error) {
	var owner models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.InviteCode
		if err := tx.Clauses(forUpdate()).Where("code = ?", r.Code).First(&entry).Error; err != nil {
			return translate(err, ErrCodeNotFound)
		}
		if entry.IsUsed() {
			return ErrCodeAlreadyUsed
		}
		if entry.OwnerID == r.Invitee.AccountID {
			return ErrAlreadyExists
		}

		// Zero rows affected means another redeemer got there first.
		res := tx.Model(&models.InviteCode{}).
			Where("id = ? AND used_by IS NULL", entry.ID).
			Updates(map[string]interface{}{
				"used_by": r.Invitee.AccountID,
				"used_at": r.UsedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCodeAlreadyUsed
		}

		var locked models.Subscription
		if err := tx.Clauses(forUpdate()).Where("account_id = ?", entry.OwnerID).First(&locked).Error; err != nil {
			return translate(err, ErrCodeNotFound)
		}
		if err := tx.Model(&models.Subscription{}).
			Where("account_id = ?", entry.OwnerID).
			Updates(map[string]interface{}{
				"trial_end_date": r.Extend(locked.TrialEndDate),
				"referral_count": gorm.Expr("referral_count + 1"),
			}).Error; err != nil {
			return err
		}

		invitee := r.Invitee.Clone()
		ownerID := entry.OwnerID
		invitee.ReferredBy = &ownerID
		if err := insertSubscription(tx, invitee); err != nil {
			return err
		}

		return tx.Preload("InviteCodes", byPosition).Where("account_id = ?", entry.OwnerID).First(&owner).Error
	})
	if err != nil {
		return nil, translate(err, ErrCodeNotFound)
	}
	return &owner, nil
}

func (s *GormStore) Update(ctx context.Context, accountID uuid.UUID, mutate func(sub *models.Subscription) error) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).Where("account_id = ?", accountID).First(&sub).Error; err != nil {
			return translate(err, ErrNotFound)
		}
		if err := tx.Scopes(byPosition).Where("owner_id = ?", accountID).Find(&sub.InviteCodes).Error; err != nil {
			return err
		}
		if err := mutate(&sub); err != nil {
			return err
		}
		if err := sub.Validate(); err != nil {
			return err
		}
		return tx.Model(&models.Subscription{}).
			Where("account_id = ?", accountID).
			Updates(map[string]interface{}{
				"plan":             string(sub.Plan),
				"trial_start_date": sub.TrialStartDate,
				"trial_end_date":   sub.TrialEndDate,
				"referral_count":   sub.ReferralCount,
				"pro_start_date":   sub.ProStartDate,
				"pro_end_date":     sub.ProEndDate,
			}).Error
	})
	if err != nil {
		return nil, translate(err, ErrNotFound)
	}
	return &sub, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func insertSubscription(tx *gorm.DB, sub *models.Subscription) error {
	if err := tx.Omit(clause.Associations).Create(sub).Error; err != nil {
		return err
	}
	if len(sub.InviteCodes) == 0 {
		return nil
	}
	for i := range sub.InviteCodes {
		sub.InviteCodes[i].OwnerID = sub.AccountID
	}
	return tx.Create(&sub.InviteCodes).Error
}

// translate maps driver errors onto the package's sentinels. notFound is what
// gorm.ErrRecordNotFound means for the calling operation.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case codeIndexConstraint:
				return ErrDuplicateCode
			case subscriptionPrimaryKey:
				return ErrAlreadyExists
			}
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
