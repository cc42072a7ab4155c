package lockout

import (
	"context"
	"sync"
	"time"
)

// Record is the coordinator-local view of a credential record.
type Record struct {
	ID             string
	Identity       string
	FailedAttempts int
	LockedUntil    *time.Time
}

// Store is the slice of the credential repository the coordinator mutates.
type Store interface {
	UpdateFailedAttempts(ctx context.Context, id string, count int, lockedUntil *time.Time) error
	ResetFailedAttempts(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// Config holds lockout policy parameters.
type Config struct {
	Threshold int
	Duration  time.Duration
	Now       func() time.Time
}

// Status is the outcome of a lock check.
type Status struct {
	Locked    bool
	Remaining time.Duration
}

// RemainingMinutes reports the lock time left, rounded up; a locked status
// never reports zero.
func (s Status) RemainingMinutes() int {
	if !s.Locked {
		return 0
	}
	minutes := int((s.Remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Check is the pure lock decision over a record snapshot: locked iff
// locked_until is set and still in the future.
func Check(rec Record, now time.Time) Status {
	if rec.LockedUntil == nil || !rec.LockedUntil.After(now) {
		return Status{}
	}
	return Status{
		Locked:    true,
		Remaining: rec.LockedUntil.Sub(now),
	}
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

// Coordinator applies failure and reset mutations to credential records.
// Safe for concurrent use.
type Coordinator struct {
	cfg   Config
	store Store
	now   func() time.Time

	mu      sync.Mutex
	locks   map[string]*identityLock
	pending map[string]int
}

// New creates a [Coordinator] writing through the given store.
func New(cfg Config, store Store) *Coordinator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{
		cfg:     cfg,
		store:   store,
		now:     cfg.Now,
		locks:   make(map[string]*identityLock),
		pending: make(map[string]int),
	}
}

// Check evaluates the lock state of rec at the coordinator's clock.
func (c *Coordinator) Check(rec Record) Status {
	return Check(rec, c.now())
}

// RecordFailure increments the failure count for rec and, when the updated
// count reaches the threshold, sets locked_until. The increment is applied
// on top of the highest count observed for this identity in the current
// series, not on the possibly stale snapshot, so concurrent attempts
// against one identity cannot undercount. Returns the lock state after the
// mutation.
func (c *Coordinator) RecordFailure(ctx context.Context, rec Record) (Status, error) {
	unlock := c.acquire(rec.ID)
	defer unlock()

	c.mu.Lock()
	count := rec.FailedAttempts
	if inflight, ok := c.pending[rec.ID]; ok && inflight > count {
		count = inflight
	}
	count++
	c.pending[rec.ID] = count
	c.mu.Unlock()

	var lockedUntil *time.Time
	if count >= c.cfg.Threshold {
		until := c.now().Add(c.cfg.Duration)
		lockedUntil = &until
	}

	if err := c.store.UpdateFailedAttempts(ctx, rec.ID, count, lockedUntil); err != nil {
		return Status{}, err
	}

	if lockedUntil == nil {
		return Status{}, nil
	}
	return Status{Locked: true, Remaining: lockedUntil.Sub(c.now())}, nil
}

// Reset clears the failure series after a successful authentication:
// count back to zero, lock cleared, last_login stamped.
func (c *Coordinator) Reset(ctx context.Context, rec Record) error {
	unlock := c.acquire(rec.ID)
	defer unlock()

	c.mu.Lock()
	delete(c.pending, rec.ID)
	c.mu.Unlock()

	if err := c.store.ResetFailedAttempts(ctx, rec.ID); err != nil {
		return err
	}
	return c.store.UpdateLastLogin(ctx, rec.ID)
}

// Unlock clears the failure series without stamping last_login.
// Administrative path.
func (c *Coordinator) Unlock(ctx context.Context, id string) error {
	unlock := c.acquire(id)
	defer unlock()

	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()

	return c.store.ResetFailedAttempts(ctx, id)
}

// Flush drops the in-flight count cache. The durable counts in the store
// are authoritative; flushing only narrows the stale-read protection to
// series that are actively in flight, and bounds memory under sustained
// attack traffic. Intended for the owner's periodic sweep.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.pending {
		if _, held := c.locks[id]; !held {
			delete(c.pending, id)
		}
	}
}

// acquire takes the per-identity mutex, creating it on first use and
// dropping it when the last holder releases.
func (c *Coordinator) acquire(id string) func() {
	c.mu.Lock()
	il, ok := c.locks[id]
	if !ok {
		il = &identityLock{}
		c.locks[id] = il
	}
	il.refs++
	c.mu.Unlock()

	il.mu.Lock()

	return func() {
		il.mu.Unlock()

		c.mu.Lock()
		il.refs--
		if il.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}
