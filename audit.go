package authcore

import (
	"context"

	internalaudit "github.com/FrancescoMain/korsvagen-web-sub000/internal/audit"
)

// Audit event types emitted by the engine. Values are stable and safe to
// key dashboards on.
const (
	auditLoginSuccess     = "login_success"
	auditLoginFailure     = "login_failure"
	auditLoginRateLimited = "login_rate_limited"
	auditLoginIPBlocked   = "login_ip_blocked"
	auditAccountLocked    = "account_locked"
	auditAccountUnlocked  = "account_unlocked"
	auditLogout           = "logout"
	auditTokenRevoked     = "token_revoked"
	auditRefreshSuccess   = "refresh_success"
	auditRefreshFailure   = "refresh_failure"
	auditPasswordChanged  = "password_changed"
	auditPasswordRejected = "password_change_rejected"
	auditHashingFailure   = "hashing_failure"
)

// emitAudit builds and dispatches an audit event. The metadata func is
// only invoked when auditing is enabled, keeping the disabled path
// allocation-free.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, identity, ip string, cause error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		Identity:  identity,
		IP:        ip,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// AuditDropped reports how many audit events were discarded under
// dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}
