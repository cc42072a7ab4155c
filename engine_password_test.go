package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestChangePasswordSuccess(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)
	seedUser(t, engine, store, "u1", "admin@korsvagen.it", "Vg7!kranLyft#2024")

	err := engine.ChangePassword(ipCtx("10.0.0.1"), "admin@korsvagen.it", "Vg7!kranLyft#2024", "Ny8?betongPump#31")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	rec := store.get("u1")
	ok, err := engine.VerifyPassword(context.Background(), "Ny8?betongPump#31", rec.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password does not verify: ok=%v err=%v", ok, err)
	}
	ok, err = engine.VerifyPassword(context.Background(), "Vg7!kranLyft#2024", rec.PasswordHash)
	if err != nil || ok {
		t.Fatalf("old password still verifies: ok=%v err=%v", ok, err)
	}
	if got := counterValue(t, engine, MetricPasswordChangeSuccess); got != 1 {
		t.Fatalf("change success counter = %d, want 1", got)
	}
}

func TestChangePasswordWrongOld(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)
	seedUser(t, engine, store, "u1", "admin@korsvagen.it", "Vg7!kranLyft#2024")

	err := engine.ChangePassword(ipCtx("10.0.0.1"), "admin@korsvagen.it", "wrong-old", "Ny8?betongPump#31")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if got := counterValue(t, engine, MetricPasswordChangeInvalidOld); got != 1 {
		t.Fatalf("invalid old counter = %d, want 1", got)
	}

	// A wrong old password here never feeds the login limiter or the
	// lockout counter.
	if rec := store.get("u1"); rec.FailedAttempts != 0 {
		t.Fatalf("failed attempts = %d, want 0", rec.FailedAttempts)
	}
	if n := engine.FailureCount("10.0.0.1", "admin@korsvagen.it"); n != 0 {
		t.Fatalf("limiter failure count = %d, want 0", n)
	}
}

func TestChangePasswordRejectsWeakNew(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)
	seedUser(t, engine, store, "u1", "admin@korsvagen.it", "Vg7!kranLyft#2024")

	err := engine.ChangePassword(ipCtx("10.0.0.1"), "admin@korsvagen.it", "Vg7!kranLyft#2024", "short")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("err = %v, want ErrPasswordPolicy", err)
	}
	if got := counterValue(t, engine, MetricPasswordChangeRejected); got != 1 {
		t.Fatalf("change rejected counter = %d, want 1", got)
	}
}

func TestChangePasswordRejectsReuse(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil)
	seedUser(t, engine, store, "u1", "admin@korsvagen.it", "Vg7!kranLyft#2024")

	err := engine.ChangePassword(ipCtx("10.0.0.1"), "admin@korsvagen.it", "Vg7!kranLyft#2024", "Vg7!kranLyft#2024")
	if !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("err = %v, want ErrPasswordReuse", err)
	}
}

func TestChangePasswordUnknownIdentity(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)

	err := engine.ChangePassword(ipCtx("10.0.0.1"), "nobody@korsvagen.it", "old", "Ny8?betongPump#31")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGeneratePasswordClearsPolicy(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)

	generated, err := engine.GeneratePassword(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report := engine.ScorePassword(generated); !report.Valid {
		t.Fatalf("generated password fails policy: %v", report.Violations)
	}
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil)
	ctx := context.Background()

	hash, err := engine.HashPassword(ctx, "Vg7!kranLyft#2024")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := engine.VerifyPassword(ctx, "Vg7!kranLyft#2024", hash)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	ok, err = engine.VerifyPassword(ctx, "Vg7!kranLyft#2025", hash)
	if err != nil || ok {
		t.Fatalf("verify wrong password: ok=%v err=%v", ok, err)
	}
	if _, err := engine.VerifyPassword(ctx, "x", "garbage"); !errors.Is(err, ErrInvalidHashFormat) {
		t.Fatalf("garbage hash err = %v, want ErrInvalidHashFormat", err)
	}
}
