// Package cache connects to Redis and exposes it as Fiber storage for the
// rate limiters.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidURL        = errors.New("failed to parse redis connection string")
	ErrNotReady          = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)

type Options struct {
	URL            string
	RetryAttempts  int
	RetryInterval  time.Duration
	ConnectTimeout time.Duration
}

func DefaultOptions(url string) Options {
	return Options{
		URL:            url,
		RetryAttempts:  3,
		RetryInterval:  2 * time.Second,
		ConnectTimeout: 15 * time.Second,
	}
}

// Connect parses the URL and pings until the server answers or the attempts
// run out.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	connOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	for range opts.RetryAttempts {
		client := redis.NewClient(connOpts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(opts.RetryInterval):
		}
	}
	return nil, ErrNotReady
}

func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
