package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idempotencyKeyPrefix is the prefix for all action idempotency keys
	idempotencyKeyPrefix = "automation:action:"
	// DefaultIdempotencyTTL bounds how long an executed action key is
	// remembered. Redeliveries of the same event arrive well within it.
	DefaultIdempotencyTTL = 24 * time.Hour
)

// RedisIdempotencyStore provides Redis-based action deduplication shared
// across worker instances.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore creates a new RedisIdempotencyStore instance.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Acquire atomically claims an idempotency key using SetNX. Returns true
// when this caller is the first to claim it, false when the action already
// ran. This prevents TOCTOU races in multi-instance deployments.
func (s *RedisIdempotencyStore) Acquire(ctx context.Context, key string) (bool, error) {
	acquired, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire idempotency key: %w", err)
	}
	return acquired, nil
}
