package session

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker serializes turns per session: concurrent requests on the same
// session queue in arrival order, while distinct sessions proceed in
// parallel. Waiting respects context cancellation.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// NewLocker creates a new per-session locker.
func NewLocker() *Locker {
	return &Locker{
		locks: make(map[string]*lockEntry),
	}
}

// Acquire blocks until the session lock is held or the context is done.
// The returned release function must be called exactly once. Entries are
// refcounted and dropped when the last holder or waiter leaves, so the
// registry stays bounded by in-flight sessions rather than session history.
func (l *Locker) Acquire(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		l.drop(sessionID, entry)
		return nil, err
	}
	return func() {
		entry.sem.Release(1)
		l.drop(sessionID, entry)
	}, nil
}

func (l *Locker) drop(sessionID string, entry *lockEntry) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 && l.locks[sessionID] == entry {
		delete(l.locks, sessionID)
	}
	l.mu.Unlock()
}

// Size reports how many sessions currently hold or await a lock.
func (l *Locker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
