package test

import (
	"context"
	"sync"
	"testing"
	"time"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
)

// mapStore is a minimal in-memory CredentialStore for the end-to-end
// tests. It is deliberately the kind of store a host would write, not a
// test double with hooks.
type mapStore struct {
	mu      sync.Mutex
	byID    map[string]authcore.CredentialRecord
	byIdent map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{
		byID:    make(map[string]authcore.CredentialRecord),
		byIdent: make(map[string]string),
	}
}

func (s *mapStore) put(rec authcore.CredentialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.ID] = rec
	s.byIdent[rec.Identity] = rec.ID
}

func (s *mapStore) FindByIdentity(_ context.Context, identity string) (authcore.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byIdent[identity]
	if !ok {
		return authcore.CredentialRecord{}, authcore.ErrIdentityNotFound
	}
	return s.byID[id], nil
}

func (s *mapStore) UpdateFailedAttempts(_ context.Context, id string, count int, lockedUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.byID[id]
	rec.FailedAttempts = count
	rec.LockedUntil = lockedUntil
	s.byID[id] = rec
	return nil
}

func (s *mapStore) ResetFailedAttempts(_ context.Context, id string) error {
	return s.UpdateFailedAttempts(context.Background(), id, 0, nil)
}

func (s *mapStore) UpdateLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.byID[id]
	now := time.Now()
	rec.LastLogin = &now
	s.byID[id] = rec
	return nil
}

func (s *mapStore) UpdatePasswordHash(_ context.Context, id string, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.byID[id]
	rec.PasswordHash = newHash
	s.byID[id] = rec
	return nil
}

// newEngine builds an engine with fast hashing parameters and one seeded
// account.
func newEngine(t *testing.T, mutate func(*authcore.Config)) (*authcore.Engine, *mapStore) {
	t.Helper()

	cfg := authcore.DefaultConfig()
	cfg.Token.AccessSecret = []byte("e2e-access-secret-0123456789abcd")
	cfg.Token.RefreshSecret = []byte("e2e-refresh-secret-0123456789abc")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	cfg.RateLimit.DelayStep = time.Millisecond
	cfg.RateLimit.MaxDelay = 5 * time.Millisecond
	cfg.RateLimit.SweepInterval = time.Hour
	if mutate != nil {
		mutate(&cfg)
	}

	store := newMapStore()
	engine, err := authcore.New().
		WithConfig(cfg).
		WithCredentialStore(store).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	hash, err := engine.HashPassword(context.Background(), "Vg7!kranLyft#2024")
	if err != nil {
		t.Fatalf("seed hash: %v", err)
	}
	store.put(authcore.CredentialRecord{
		ID:           "u1",
		Identity:     "admin@korsvagen.it",
		PasswordHash: hash,
		Role:         "admin",
	})

	return engine, store
}

func clientCtx(ip string) context.Context {
	return authcore.WithClientIP(context.Background(), ip)
}
