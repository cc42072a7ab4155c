package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/FrancescoMain/korsvagen-web-sub000/internal/lockout"
	"github.com/FrancescoMain/korsvagen-web-sub000/password"
)

// NormalizeIdentity case-folds and trims an identity the way the engine
// stores and compares it. Hosts should apply it before persisting records
// so lookups match what Login computes.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func lockoutRecord(rec CredentialRecord) lockout.Record {
	return lockout.Record{
		ID:             rec.ID,
		Identity:       rec.Identity,
		FailedAttempts: rec.FailedAttempts,
		LockedUntil:    rec.LockedUntil,
	}
}

// Login runs the full authentication pipeline for one attempt: admission
// (IP block, auth window), then credential lookup, lock check, password
// verification, and lockout bookkeeping, issuing a token pair on success.
// The client IP travels via [WithClientIP].
//
// Failure classification: admission failures surface as ErrIPBlocked or
// ErrRateLimited; an unknown identity and a wrong password both surface
// as ErrInvalidCredentials; a locked account surfaces as ErrAccountLocked
// whether or not the password was correct. Once the per-pair failure
// count crosses the delay threshold the error response is genuinely
// withheld for the progressive delay, honoring ctx cancellation.
func (e *Engine) Login(ctx context.Context, identity, passphrase string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	identity = NormalizeIdentity(identity)

	if dec := e.CheckAndAdmit(ip, identity); !dec.Admitted {
		return nil, e.rejectAdmission(ctx, dec, identity, ip)
	}

	rec, err := e.store.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Unknown identity takes the same failure path as a wrong
			// password: same bookkeeping, same delay, same error.
			return nil, e.failLogin(ctx, ip, identity, nil)
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}

	if status := e.lockouts.Check(lockoutRecord(rec)); status.Locked {
		e.emitAudit(ctx, auditLoginFailure, false, rec.ID, identity, ip, ErrAccountLocked, nil)
		return nil, lockedError(status)
	}

	ok, err := e.hasher.Verify(ctx, passphrase, rec.PasswordHash)
	if err != nil {
		return nil, e.hashingFailure(ctx, rec.ID, identity, ip, err)
	}
	if !ok {
		return nil, e.failLogin(ctx, ip, identity, &rec)
	}

	return e.completeLogin(ctx, ip, identity, rec, passphrase)
}

// rejectAdmission translates a limiter decision into the public error
// taxonomy and records it.
func (e *Engine) rejectAdmission(ctx context.Context, dec AdmitDecision, identity, ip string) error {
	retry := dec.RetryAfter.Round(time.Second)

	if dec.Reason == AdmitReasonIPBlocked {
		e.metricInc(MetricLoginIPBlocked)
		e.emitAudit(ctx, auditLoginIPBlocked, false, "", identity, ip, ErrIPBlocked, nil)
		return fmt.Errorf("%w: retry in %s", ErrIPBlocked, retry)
	}

	e.metricInc(MetricLoginRateLimited)
	e.emitAudit(ctx, auditLoginRateLimited, false, "", identity, ip, ErrRateLimited, nil)
	return fmt.Errorf("%w: retry in %s", ErrRateLimited, retry)
}

// failLogin is the shared failure path for unknown identities and wrong
// passwords. rec is nil for an unknown identity; lockout bookkeeping then
// has no record to mutate but the limiter still counts the attempt.
func (e *Engine) failLogin(ctx context.Context, ip, identity string, rec *CredentialRecord) error {
	e.metricInc(MetricLoginFailure)
	e.limiter.RecordFailure(ip, identity)

	outcome := error(ErrInvalidCredentials)
	userID := ""

	if rec != nil {
		userID = rec.ID
		status, err := e.lockouts.RecordFailure(ctx, lockoutRecord(*rec))
		if err != nil {
			// Bookkeeping failed; the attempt is still rejected. Log and
			// keep the response indistinguishable from a normal mismatch.
			log.Printf("authcore: lockout update failed for %s: %v", rec.ID, err)
		} else if status.Locked {
			e.metricInc(MetricAccountLocked)
			e.emitAudit(ctx, auditAccountLocked, false, rec.ID, identity, ip, ErrAccountLocked, func() map[string]string {
				return map[string]string{
					"remaining_minutes": fmt.Sprintf("%d", status.RemainingMinutes()),
				}
			})
			outcome = lockedError(status)
		}
	}

	if delay := e.limiter.DelayFor(ip, identity); delay > 0 {
		e.metricInc(MetricLoginDelayImposed)
		if err := e.limiter.Wait(ctx, delay); err != nil {
			// Client went away mid-delay; release the goroutine.
			return err
		}
	}

	e.emitAudit(ctx, auditLoginFailure, false, userID, identity, ip, ErrInvalidCredentials, nil)

	return outcome
}

func (e *Engine) completeLogin(ctx context.Context, ip, identity string, rec CredentialRecord, passphrase string) (*TokenPair, error) {
	e.limiter.Clear(ip, identity)
	e.limiter.RefundAuth(ip)

	if err := e.lockouts.Reset(ctx, lockoutRecord(rec)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}

	e.maybeUpgradeHash(ctx, rec, passphrase)

	pair, err := e.tokens.IssuePair(rec.ID, rec.Identity, rec.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditLoginSuccess, true, rec.ID, identity, ip, nil, nil)

	return pair, nil
}

// maybeUpgradeHash transparently re-hashes the verified password when the
// stored hash carries weaker parameters than the current configuration.
// Best-effort: a failure leaves the old hash in place.
func (e *Engine) maybeUpgradeHash(ctx context.Context, rec CredentialRecord, passphrase string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}

	needs, err := e.hasher.NeedsUpgrade(rec.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.hasher.Hash(ctx, passphrase)
	if err != nil {
		log.Printf("authcore: hash upgrade failed for %s: %v", rec.ID, err)
		return
	}
	if err := e.store.UpdatePasswordHash(ctx, rec.ID, newHash); err != nil {
		log.Printf("authcore: hash upgrade persist failed for %s: %v", rec.ID, err)
	}
}

// hashingFailure classifies a password-primitive error, logs the detail,
// and returns the generic taxonomy error. The detailed cause never reaches
// a client.
func (e *Engine) hashingFailure(ctx context.Context, userID, identity, ip string, err error) error {
	e.emitAudit(ctx, auditHashingFailure, false, userID, identity, ip, err, nil)
	log.Printf("authcore: password verification failure for %s: %v", userID, err)

	if errors.Is(err, password.ErrInvalidHashFormat) {
		return fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
	}
	return fmt.Errorf("%w: %v", ErrHashingFailure, err)
}

func lockedError(status lockout.Status) error {
	return fmt.Errorf("%w: retry in %d minutes", ErrAccountLocked, status.RemainingMinutes())
}
