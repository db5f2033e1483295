package cache

import (
	"context"
	"sync"
	"time"

	"flowdesk/internal/shared/biztime"
)

// MemoryIdempotencyStore is the in-process fallback used when Redis is not
// configured. Keys expire lazily so the map stays bounded by the recent
// action volume.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryIdempotencyStore creates a new MemoryIdempotencyStore instance.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &MemoryIdempotencyStore{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Acquire claims an idempotency key. Returns true when this caller is the
// first to claim it within the TTL window.
func (s *MemoryIdempotencyStore) Acquire(_ context.Context, key string) (bool, error) {
	now := biztime.NowUTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}

	if len(s.seen) >= evictionThreshold {
		s.evictExpired(now)
	}
	s.seen[key] = now.Add(s.ttl)
	return true, nil
}

// evictionThreshold caps how large the map grows before a sweep.
const evictionThreshold = 4096

// evictExpired drops stale keys. Called under the lock.
func (s *MemoryIdempotencyStore) evictExpired(now time.Time) {
	for key, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, key)
		}
	}
}
