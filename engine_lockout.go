package authcore

import (
	"context"
	"fmt"
)

// CheckAccountLock evaluates a record's lock state without touching the
// store. Pure with respect to the record: the decision follows from the
// record's fields and the engine clock.
func (e *Engine) CheckAccountLock(rec CredentialRecord) LockStatus {
	status := e.lockouts.Check(lockoutRecord(rec))
	return LockStatus{
		Locked:           status.Locked,
		RemainingMinutes: status.RemainingMinutes(),
	}
}

// RecordAuthOutcome reports the result of an authentication the host
// performed outside [Engine.Login]: it drives the same lockout bookkeeping
// the login pipeline uses. On failure the returned status reflects whether
// this attempt crossed the lockout threshold; on success the counter is
// reset and last_login is stamped.
func (e *Engine) RecordAuthOutcome(ctx context.Context, rec CredentialRecord, success bool) (LockStatus, error) {
	if success {
		if err := e.lockouts.Reset(ctx, lockoutRecord(rec)); err != nil {
			return LockStatus{}, fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
		}
		return LockStatus{}, nil
	}

	status, err := e.lockouts.RecordFailure(ctx, lockoutRecord(rec))
	if err != nil {
		return LockStatus{}, fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}
	if status.Locked {
		e.metricInc(MetricAccountLocked)
	}
	return LockStatus{
		Locked:           status.Locked,
		RemainingMinutes: status.RemainingMinutes(),
	}, nil
}

// UnlockAccount clears a lock and failure counter administratively. Unlike
// the reset on successful login it does not stamp last_login: an admin
// unlocking an account is not that account logging in.
func (e *Engine) UnlockAccount(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.lockouts.Unlock(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialStoreUnavailable, err)
	}

	e.metricInc(MetricAccountUnlocked)
	e.emitAudit(ctx, auditAccountUnlocked, true, userID, "", clientIPFromContext(ctx), nil, nil)

	return nil
}
