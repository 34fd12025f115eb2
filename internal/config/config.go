package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"linkbox"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Redis backs the rate limiter when set; memory storage otherwise.
	RedisURL string `env:"REDIS_URL"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// Trial and referrals
	TrialDays             int    `env:"TRIAL_DAYS" envDefault:"15"`
	ReferralBonusDays     int    `env:"REFERRAL_BONUS_DAYS" envDefault:"2"`
	InviteCodePrefix      string `env:"INVITE_CODE_PREFIX" envDefault:"LB"`
	InviteCodesPerAccount int    `env:"INVITE_CODES_PER_ACCOUNT" envDefault:"5"`
	RedeemMaxAttempts     int    `env:"REDEEM_MAX_ATTEMPTS" envDefault:"3"`

	// Billing provider webhook shared secret
	BillingWebhookSecret string `env:"BILLING_WEBHOOK_SECRET"`

	// Admin
	AdminEmails  string `env:"ADMIN_EMAILS"`
	AdminUserIDs string `env:"ADMIN_USER_IDS"`
	AdminToken   string `env:"ADMIN_TOKEN"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	SentryDSN   string `env:"SENTRY_DSN"`
}

// Load reads the environment. Secrets are not checked here; the server
// binary requires them, the admin CLI does not.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.TrialDays <= 0:
		return fmt.Errorf("%w: TRIAL_DAYS must be positive", ErrInvalidConfig)
	case c.ReferralBonusDays <= 0:
		return fmt.Errorf("%w: REFERRAL_BONUS_DAYS must be positive", ErrInvalidConfig)
	case c.InviteCodesPerAccount <= 0:
		return fmt.Errorf("%w: INVITE_CODES_PER_ACCOUNT must be positive", ErrInvalidConfig)
	case c.RedeemMaxAttempts <= 0:
		return fmt.Errorf("%w: REDEEM_MAX_ATTEMPTS must be positive", ErrInvalidConfig)
	}
	return nil
}

// RequireServerSecrets checks the values the HTTP server cannot start without.
func (c *Config) RequireServerSecrets() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET environment variable is required", ErrInvalidConfig)
	}
	if c.DBPassword == "" {
		return fmt.Errorf("%w: DB_PASSWORD environment variable is required", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) TrialLength() time.Duration {
	return time.Duration(c.TrialDays) * 24 * time.Hour
}

func (c *Config) ReferralBonus() time.Duration {
	return time.Duration(c.ReferralBonusDays) * 24 * time.Hour
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
