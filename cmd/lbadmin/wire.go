package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/store"
)

type app struct {
	subscriptions *services.SubscriptionService
	referrals     *services.ReferralService
	migrate       func(ctx context.Context) error
	close         func() error
	now           func() time.Time
}

func wireApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	codes, err := invitecode.NewGenerator(cfg.InviteCodePrefix)
	if err != nil {
		return nil, fmt.Errorf("invite code prefix: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	st := store.NewGormStore(db)
	policy := services.PolicyFromConfig(cfg)
	attempts := services.WithMaxAttempts(cfg.RedeemMaxAttempts)
	return &app{
		subscriptions: services.NewSubscriptionService(st, policy, codes, attempts),
		referrals:     services.NewReferralService(st, policy, codes, attempts),
		migrate: func(ctx context.Context) error {
			return database.Migrate(db.WithContext(ctx))
		},
		close: func() error { return database.Close(db) },
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}
