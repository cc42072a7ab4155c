package password

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Low-cost parameters keep the hashing tests fast. The floor validation
// test covers rejection of parameters below the minimums.
func testHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(Config{
		Memory:        8 * 1024,
		Time:          1,
		Parallelism:   1,
		SaltLength:    16,
		KeyLength:     16,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := testHasher(t)
	ctx := context.Background()

	encoded, err := h.Hash(ctx, "correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("expected PHC argon2id encoding, got %q", encoded)
	}

	ok, err := h.Verify(ctx, "correct-horse-battery", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected match")
	}

	ok, err = h.Verify(ctx, "wrong-password", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h := testHasher(t)
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two hashes of one password must differ")
	}
}

func TestHashAcceptsAnyInput(t *testing.T) {
	// Policy lives in the strength scorer; the hasher must not reject
	// weak or empty input.
	h := testHasher(t)
	ctx := context.Background()

	for _, password := range []string{"", "a", "12345678"} {
		if _, err := h.Hash(ctx, password); err != nil {
			t.Fatalf("Hash(%q): %v", password, err)
		}
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := testHasher(t)
	ctx := context.Background()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=zzz,t=1,p=1$c2FsdA$aGFzaA",
	}

	for _, encoded := range cases {
		if _, err := h.Verify(ctx, "whatever", encoded); !errors.Is(err, ErrInvalidHashFormat) {
			t.Errorf("Verify(%q): expected ErrInvalidHashFormat, got %v", encoded, err)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak := testHasher(t)
	ctx := context.Background()

	encoded, err := weak.Hash(ctx, "some-password")
	if err != nil {
		t.Fatal(err)
	}

	needs, err := weak.NeedsUpgrade(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if needs {
		t.Fatal("hash at current parameters must not need upgrade")
	}

	stronger, err := NewHasher(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatal(err)
	}

	needs, err = stronger.NeedsUpgrade(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Fatal("hash below current parameters must need upgrade")
	}
}

func TestHashHonorsCanceledContext(t *testing.T) {
	h := testHasher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Hash(ctx, "password"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestNewHasherEnforcesFloors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"memory too low", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero time", Config{Memory: 8 * 1024, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero parallelism", Config{Memory: 8 * 1024, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16}},
		{"short salt", Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"short key", Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHasher(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
