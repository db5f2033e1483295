// Package lock provides per-ticket mutual exclusion for rule evaluation.
// Events for the same ticket must never evaluate concurrently; events for
// different tickets may.
package lock

import (
	"context"
	"sync"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// MemoryTicketLock serializes rule evaluation per ticket within a single
// process. Entries are reference counted so the map does not grow with the
// lifetime ticket count.
type MemoryTicketLock struct {
	mu      sync.Mutex
	entries map[uint]*lockEntry
}

// NewMemoryTicketLock creates a new MemoryTicketLock instance.
func NewMemoryTicketLock() *MemoryTicketLock {
	return &MemoryTicketLock{entries: make(map[uint]*lockEntry)}
}

// Lock blocks until the ticket's lock is held and returns the release
// function. The context is checked before blocking; a mutex acquisition
// itself is not interruptible.
func (l *MemoryTicketLock) Lock(ctx context.Context, ticketID uint) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	entry, ok := l.entries[ticketID]
	if !ok {
		entry = &lockEntry{}
		l.entries[ticketID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	release := func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, ticketID)
		}
		l.mu.Unlock()
	}

	return release, nil
}
