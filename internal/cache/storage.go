package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// Storage implements fiber.Storage on Redis. All keys live under prefix so
// Reset never touches data it does not own.
type Storage struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

func NewStorage(client redis.UniversalClient, prefix string) *Storage {
	return &Storage{
		db:            client,
		prefix:        prefix,
		scanBatchSize: 1000,
	}
}

func (s *Storage) key(k string) string {
	return s.prefix + k
}

// Get returns nil for empty keys and missing values.
func (s *Storage) Get(key string) ([]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := s.db.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val with expiration. Zero means no expiration.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.db.Set(ctx, s.key(key), val, exp).Err()
}

func (s *Storage) Delete(key string) error {
	if len(key) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.db.Del(ctx, s.key(key)).Err()
}

// Reset deletes every key under the prefix.
func (s *Storage) Reset() error {
	ctx := context.Background()
	var cursor uint64
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := s.db.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}
