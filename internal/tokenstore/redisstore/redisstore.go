// Package redisstore provides a redis backed token store.
//
// Tokens are kept as plain string values under a configurable key prefix so
// several clients (for example one per CLI context or per worker) can share a
// single redis database without clobbering each other.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTimeout bounds every redis round trip. The TokenStore interface has
// no context, so the store supplies its own.
const DefaultTimeout = 3 * time.Second

// RedisStore is a redis backed client.TokenStore.
type RedisStore struct {
	rdb     redis.Cmdable
	prefix  string
	timeout time.Duration
}

// New creates and returns a new RedisStore. Keys are stored as prefix+key.
func New(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, timeout: DefaultTimeout}
}

// Get retrieves the value stored under key. It returns the value, whether it
// was found, and an error when redis could not be reached.
func (s *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key without expiry. An existing value is overwritten.
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. If the key does not exist, this
// is a no-op.
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}
