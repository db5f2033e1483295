package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"flowdesk/internal/shared/logger"
)

const (
	// ticketLockKeyPrefix is the prefix for all ticket lock keys
	ticketLockKeyPrefix = "automation:ticket_lock:"
	// defaultLockTTL bounds how long a crashed holder can strand a lock.
	defaultLockTTL = 30 * time.Second
	// acquireRetryInterval is the polling interval while the lock is held
	// by another instance.
	acquireRetryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only when the stored token matches, so an
// instance whose lock already expired cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTicketLock serializes rule evaluation per ticket across worker
// instances.
type RedisTicketLock struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisTicketLock creates a new RedisTicketLock instance.
func NewRedisTicketLock(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisTicketLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisTicketLock{client: client, ttl: ttl, logger: log}
}

// Lock acquires the ticket's distributed lock, polling until the context
// is cancelled. The returned release function is safe to call once.
func (l *RedisTicketLock) Lock(ctx context.Context, ticketID uint) (func(), error) {
	key := fmt.Sprintf("%s%d", ticketLockKeyPrefix, ticketID)
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire ticket lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetryInterval):
		}
	}

	release := func() {
		// Release runs on its own context so a cancelled caller still
		// frees the lock instead of leaving it to expire.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warnw("failed to release ticket lock", "ticket_id", ticketID, "error", err)
		}
	}

	return release, nil
}
