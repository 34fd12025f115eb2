package services

import "time"

type serviceOptions struct {
	now         func() time.Time
	maxAttempts int
}

// Option configures the subscription and referral services.
type Option func(*serviceOptions)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithMaxAttempts bounds retries on store conflicts and code collisions.
func WithMaxAttempts(n int) Option {
	return func(o *serviceOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		now:         func() time.Time { return time.Now().UTC() },
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
