package token

import (
	"testing"
	"time"
)

func TestRevocationSetKeepsLaterEviction(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewRevocationSet(func() time.Time { return now })

	s.Add("tok", now.Add(time.Hour))
	s.Add("tok", now.Add(time.Minute))

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	now = now.Add(30 * time.Minute)
	if removed := s.Sweep(); removed != 0 {
		t.Fatalf("entry evicted at the earlier time: %d", removed)
	}
	if !s.Contains("tok") {
		t.Fatal("expected membership until the later eviction time")
	}
}

func TestRevocationSetSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewRevocationSet(func() time.Time { return now })

	s.Add("a", now.Add(time.Minute))
	s.Add("b", now.Add(time.Hour))

	now = now.Add(30 * time.Minute)
	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if s.Contains("a") {
		t.Fatal("expected a evicted")
	}
	if !s.Contains("b") {
		t.Fatal("expected b retained")
	}
}
