package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/cache"
)

var _ fiber.Storage = (*cache.Storage)(nil)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()
	_, err := cache.Connect(context.Background(), cache.DefaultOptions("not-a-url://"))
	assert.ErrorIs(t, err, cache.ErrInvalidURL)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()
	opts := cache.DefaultOptions("redis://127.0.0.1:1/0")
	opts.RetryAttempts = 2
	opts.RetryInterval = 10 * time.Millisecond
	opts.ConnectTimeout = time.Second

	_, err := cache.Connect(context.Background(), opts)
	assert.ErrorIs(t, err, cache.ErrNotReady)
}

func TestStorage_EmptyKeysAreNoops(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	s := cache.NewStorage(client, "test:")
	defer s.Close()

	val, err := s.Get("")
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, s.Set("", []byte("x"), time.Minute))
	assert.NoError(t, s.Set("k", nil, time.Minute))
	assert.NoError(t, s.Delete(""))
}
