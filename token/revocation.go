package token

import (
	"sync"
	"time"
)

// RevocationSet is a process-wide blacklist of token strings. Entries are
// created on logout or rotation and cleared on process restart; membership
// after a token's natural expiry is harmless, so eviction is purely a
// memory bound.
type RevocationSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewRevocationSet creates an empty set using the given clock.
func NewRevocationSet(now func() time.Time) *RevocationSet {
	if now == nil {
		now = time.Now
	}
	return &RevocationSet{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Add inserts tokenStr, retaining it until evictAt. Idempotent; a repeat
// insertion keeps the later eviction time.
func (s *RevocationSet) Add(tokenStr string, evictAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[tokenStr]; ok && existing.After(evictAt) {
		return
	}
	s.entries[tokenStr] = evictAt
}

// Contains reports whether tokenStr has been revoked.
func (s *RevocationSet) Contains(tokenStr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[tokenStr]
	return ok
}

// Sweep removes entries whose eviction time has passed and returns how
// many were removed.
func (s *RevocationSet) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tok, evictAt := range s.entries {
		if evictAt.Before(now) {
			delete(s.entries, tok)
			removed++
		}
	}
	return removed
}

// Len returns the number of revoked entries currently retained.
func (s *RevocationSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
