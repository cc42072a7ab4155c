package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FrancescoMain/korsvagen-web-sub000/password"
)

// ChangePassword replaces a principal's credential after re-verifying the
// old one. The new password must clear the strength policy and must differ
// from the old one. A wrong old password surfaces as ErrInvalidCredentials
// and counts toward the caller-visible metric, but does not feed the
// limiter or the lockout counter: the caller already holds a valid session
// to reach this operation.
func (e *Engine) ChangePassword(ctx context.Context, identity, oldPassword, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	identity = NormalizeIdentity(identity)

	rec, err := e.store.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(ctx, oldPassword, rec.PasswordHash)
	if err != nil {
		return e.hashingFailure(ctx, rec.ID, identity, ip, err)
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditPasswordRejected, false, rec.ID, identity, ip, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if report := password.Score(newPassword); !report.Valid {
		e.metricInc(MetricPasswordChangeRejected)
		e.emitAudit(ctx, auditPasswordRejected, false, rec.ID, identity, ip, ErrPasswordPolicy, func() map[string]string {
			return map[string]string{"violations": strings.Join(report.Violations, "; ")}
		})
		return fmt.Errorf("%w: %s", ErrPasswordPolicy, strings.Join(report.Violations, "; "))
	}

	if newPassword == oldPassword {
		e.metricInc(MetricPasswordChangeRejected)
		e.emitAudit(ctx, auditPasswordRejected, false, rec.ID, identity, ip, ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.hasher.Hash(ctx, newPassword)
	if err != nil {
		return e.hashingFailure(ctx, rec.ID, identity, ip, err)
	}

	if err := e.store.UpdatePasswordHash(ctx, rec.ID, newHash); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditPasswordChanged, true, rec.ID, identity, ip, nil, nil)

	return nil
}

// HashPassword runs the configured Argon2id parameters over a password,
// producing a PHC-encoded hash suitable for CredentialRecord.PasswordHash.
// Strength policy is not applied here; use [Engine.ScorePassword] first
// when the password comes from a user.
func (e *Engine) HashPassword(ctx context.Context, passphrase string) (string, error) {
	hash, err := e.hasher.Hash(ctx, passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return hash, nil
}

// VerifyPassword checks a password against a stored PHC hash without any
// limiter or lockout bookkeeping. Hosts that call this directly should
// report the outcome through [Engine.RecordAuthOutcome].
func (e *Engine) VerifyPassword(ctx context.Context, passphrase, encodedHash string) (bool, error) {
	ok, err := e.hasher.Verify(ctx, passphrase, encodedHash)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHashFormat) {
			return false, fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
		}
		return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return ok, nil
}

// ScorePassword evaluates a candidate against the strength policy.
func (e *Engine) ScorePassword(candidate string) StrengthReport {
	return password.Score(candidate)
}

// GeneratePassword produces a random password of the requested length that
// clears the strength policy.
func (e *Engine) GeneratePassword(length int) (string, error) {
	return password.Generate(length)
}
