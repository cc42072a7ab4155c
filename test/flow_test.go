package test

import (
	"errors"
	"testing"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
)

// TestFullSessionLifecycle drives the whole consumer-visible flow through
// the public API only: login, access verification, refresh rotation,
// password change, logout.
func TestFullSessionLifecycle(t *testing.T) {
	engine, _ := newEngine(t, nil)
	ctx := clientCtx("10.0.0.1")

	pair, err := engine.Login(ctx, "admin@korsvagen.it", "Vg7!kranLyft#2024")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := engine.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "admin" {
		t.Fatalf("claims = %q/%q, want u1/admin", claims.UserID, claims.Role)
	}

	rotated, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, authcore.ErrTokenRevoked) {
		t.Fatalf("refresh replay err = %v, want ErrTokenRevoked", err)
	}

	if err := engine.ChangePassword(ctx, "admin@korsvagen.it", "Vg7!kranLyft#2024", "Ny8?betongPump#31"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if err := engine.Logout(ctx, rotated.AccessToken, rotated.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := engine.VerifyAccess(rotated.AccessToken); !errors.Is(err, authcore.ErrTokenRevoked) {
		t.Fatalf("access after logout err = %v, want ErrTokenRevoked", err)
	}

	// The account now authenticates with the new password only.
	if _, err := engine.Login(ctx, "admin@korsvagen.it", "Vg7!kranLyft#2024"); !errors.Is(err, authcore.ErrInvalidCredentials) {
		t.Fatalf("old password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := engine.Login(ctx, "admin@korsvagen.it", "Ny8?betongPump#31"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

// TestBruteForceIsContained exercises the abuse controls end to end: a
// password-guessing loop against one account must hit the lockout, and
// an identity spray from one IP must hit the hard block.
func TestBruteForceIsContained(t *testing.T) {
	engine, store := newEngine(t, func(cfg *authcore.Config) {
		cfg.RateLimit.AuthMaxRequests = 50
		cfg.RateLimit.GeneralMaxRequests = 100
		cfg.RateLimit.IPBlockThreshold = 8
	})

	ctx := clientCtx("198.51.100.7")
	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = engine.Login(ctx, "admin@korsvagen.it", "guess-number-x")
	}
	if !errors.Is(lastErr, authcore.ErrAccountLocked) {
		t.Fatalf("fifth guess err = %v, want ErrAccountLocked", lastErr)
	}

	rec, err := store.FindByIdentity(clientCtx("198.51.100.7"), "admin@korsvagen.it")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if rec.LockedUntil == nil {
		t.Fatal("expected persisted lock window")
	}

	// Spraying more identities from the same source crosses the per-IP
	// threshold and the source goes dark entirely.
	for _, identity := range []string{"a@x.it", "b@x.it", "c@x.it"} {
		_, _ = engine.Login(ctx, identity, "guess-number-x")
	}
	if !engine.IsIPBlocked("198.51.100.7") {
		t.Fatal("expected IP hard-block after spray")
	}
	if _, err := engine.Login(ctx, "other@korsvagen.it", "whatever"); !errors.Is(err, authcore.ErrIPBlocked) {
		t.Fatalf("err = %v, want ErrIPBlocked", err)
	}
}
