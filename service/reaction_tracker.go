package service

import (
	"context"
	"sync"
	"time"

	"github.com/arm32x/bobux-economy/models"
)

const (
	defaultTrackerCapacity = 1024
	defaultTrackerTTL      = 30 * time.Second
)

type removalKey struct {
	messageID int64
	vote      models.Vote
	userID    int64
}

// ReactionRemovalTracker remembers reactions the bot removed itself, so the removal event
// the platform echoes back can be told apart from one the member caused.
type ReactionRemovalTracker struct {
	mu       sync.Mutex
	entries  map[removalKey]time.Time
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewReactionRemovalTracker creates a tracker holding at most capacity entries for ttl each.
// Zero values select the defaults.
func NewReactionRemovalTracker(capacity int, ttl time.Duration) *ReactionRemovalTracker {
	if capacity <= 0 {
		capacity = defaultTrackerCapacity
	}
	if ttl <= 0 {
		ttl = defaultTrackerTTL
	}
	return &ReactionRemovalTracker{
		entries:  make(map[removalKey]time.Time),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Expect registers a removal the bot is about to make
func (t *ReactionRemovalTracker) Expect(messageID int64, vote models.Vote, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.evictLocked(now)

	if len(t.entries) >= t.capacity {
		// Drop the entry closest to expiry
		var oldestKey removalKey
		var oldest time.Time
		for k, expiry := range t.entries {
			if oldest.IsZero() || expiry.Before(oldest) {
				oldestKey, oldest = k, expiry
			}
		}
		delete(t.entries, oldestKey)
	}

	t.entries[removalKey{messageID, vote, userID}] = now.Add(t.ttl)
}

// Consume reports whether the removal was expected and forgets it
func (t *ReactionRemovalTracker) Consume(messageID int64, vote models.Vote, userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := removalKey{messageID, vote, userID}
	expiry, ok := t.entries[key]
	if !ok {
		return false
	}
	delete(t.entries, key)
	return t.now().Before(expiry)
}

// Len returns the number of live entries
func (t *ReactionRemovalTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked(t.now())
	return len(t.entries)
}

func (t *ReactionRemovalTracker) evictLocked(now time.Time) {
	for k, expiry := range t.entries {
		if !now.Before(expiry) {
			delete(t.entries, k)
		}
	}
}

// SyncGate is closed once the first reconciliation pass has finished
type SyncGate struct {
	once sync.Once
	done chan struct{}
}

// NewSyncGate creates an open gate
func NewSyncGate() *SyncGate {
	return &SyncGate{done: make(chan struct{})}
}

// Release lets every waiter through. Safe to call more than once.
func (g *SyncGate) Release() {
	g.once.Do(func() { close(g.done) })
}

// Wait blocks until the gate is released or ctx is done
func (g *SyncGate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
