package authcore

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory CredentialStore for engine tests. Records are
// copied on the way in and out so tests cannot observe aliasing.
type memStore struct {
	mu      sync.Mutex
	byID    map[string]CredentialRecord
	byIdent map[string]string
	findErr error
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]CredentialRecord),
		byIdent: make(map[string]string),
	}
}

func (s *memStore) put(rec CredentialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.ID] = rec
	s.byIdent[rec.Identity] = rec.ID
}

func (s *memStore) get(id string) CredentialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

func (s *memStore) FindByIdentity(_ context.Context, identity string) (CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return CredentialRecord{}, s.findErr
	}
	id, ok := s.byIdent[identity]
	if !ok {
		return CredentialRecord{}, ErrIdentityNotFound
	}
	return s.byID[id], nil
}

func (s *memStore) UpdateFailedAttempts(_ context.Context, id string, count int, lockedUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.FailedAttempts = count
	rec.LockedUntil = lockedUntil
	s.byID[id] = rec
	return nil
}

func (s *memStore) ResetFailedAttempts(_ context.Context, id string) error {
	return s.UpdateFailedAttempts(context.Background(), id, 0, nil)
}

func (s *memStore) UpdateLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	now := time.Now()
	rec.LastLogin = &now
	s.byID[id] = rec
	return nil
}

func (s *memStore) UpdatePasswordHash(_ context.Context, id string, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.PasswordHash = newHash
	s.byID[id] = rec
	return nil
}

// testConfig returns a config tuned for test speed: minimum Argon2id cost,
// millisecond delay curve, and a sweep interval long enough that the
// background ticker never fires mid-test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.AccessSecret = []byte("access-secret-0123456789abcdef!!")
	cfg.Token.RefreshSecret = []byte("refresh-secret-0123456789abcdef!")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16
	cfg.Password.MaxConcurrent = 2
	cfg.Password.UpgradeOnLogin = false
	cfg.RateLimit.DelayStep = time.Millisecond
	cfg.RateLimit.MaxDelay = 5 * time.Millisecond
	cfg.RateLimit.SweepInterval = time.Hour
	cfg.Metrics.Enabled = true
	return cfg
}

// newTestEngine builds an engine over a fresh memStore with a clock the
// test advances through the returned pointer.
func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *memStore, *time.Time) {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newMemStore()

	engine, err := New().
		WithConfig(cfg).
		WithCredentialStore(store).
		WithClock(func() time.Time { return now }).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store, &now
}

// seedUser hashes the password with the engine's own parameters and stores
// the record.
func seedUser(t *testing.T, engine *Engine, store *memStore, id, identity, passphrase string) {
	t.Helper()

	hash, err := engine.HashPassword(context.Background(), passphrase)
	if err != nil {
		t.Fatalf("seed hash: %v", err)
	}
	store.put(CredentialRecord{
		ID:           id,
		Identity:     identity,
		PasswordHash: hash,
		Role:         "editor",
	})
}

func ipCtx(ip string) context.Context {
	return WithClientIP(context.Background(), ip)
}

func counterValue(t *testing.T, engine *Engine, id MetricID) uint64 {
	t.Helper()
	return engine.MetricsSnapshot().Counters[id]
}
