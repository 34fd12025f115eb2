package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/models"
	"gorm.io/gorm"
)

const Retention = 30 * 24 * time.Hour

// StartCleanup deletes system_logs older than Retention once a day until ctx
// is cancelled.
func StartCleanup(ctx context.Context, db *gorm.DB) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := PurgeBefore(ctx, db, time.Now().Add(-Retention)); err != nil {
					slog.Error("log cleanup failed", "action", "log_cleanup", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PurgeBefore removes log rows older than cutoff and returns how many went.
func PurgeBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "action", "log_cleanup", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
