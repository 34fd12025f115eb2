package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEntry(t *testing.T) {
	t.Parallel()
	rec := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "invite redemption failed", 0)
	rec.AddAttrs(
		slog.String("account_id", "acc-1"),
		slog.String("code", "LB-ABCDEF"),
		slog.Any("error", errors.New("boom")),
		slog.Float64("latency_ms", 12.6),
		slog.Int("attempt", 3),
	)

	entry := toEntry(rec, []slog.Attr{slog.String("request_id", "req-9"), slog.String("action", "redeem")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "invite redemption failed", entry.Message)
	assert.Equal(t, "req-9", entry.RequestID)
	require.NotNil(t, entry.AccountID)
	assert.Equal(t, "acc-1", *entry.AccountID)
	assert.Equal(t, "redeem", entry.Action)
	assert.Equal(t, "LB-ABCDEF", entry.Code)
	assert.Equal(t, "boom", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, float64(3), extra["attempt"])
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()
	var info, errs bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("provisioned")
	logger.Error("store down")

	assert.Contains(t, info.String(), "provisioned")
	assert.Contains(t, info.String(), "store down")
	assert.NotContains(t, errs.String(), "provisioned")
	assert.Contains(t, errs.String(), "store down")

	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))
}

func TestStdoutHandlerLevel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.True(t, NewStdoutHandler(&bytes.Buffer{}, "development").Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewStdoutHandler(&bytes.Buffer{}, "production").Enabled(ctx, slog.LevelDebug))
}
