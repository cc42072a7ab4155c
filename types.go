package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/FrancescoMain/korsvagen-web-sub000/internal/audit"
	internalmetrics "github.com/FrancescoMain/korsvagen-web-sub000/internal/metrics"
	"github.com/FrancescoMain/korsvagen-web-sub000/internal/ratelimit"
	"github.com/FrancescoMain/korsvagen-web-sub000/password"
	"github.com/FrancescoMain/korsvagen-web-sub000/token"
)

// CredentialRecord is the account snapshot returned by [CredentialStore].
// The identity is an email address, case-folded and unique. locked_until
// set implies the failure count reached the lockout threshold when it was
// set; both reset together on successful authentication.
type CredentialRecord struct {
	ID             string
	Identity       string
	PasswordHash   string
	Role           string
	FailedAttempts int
	LockedUntil    *time.Time
	LastLogin      *time.Time
}

// CredentialStore is the one collaborator the host application must
// implement to integrate authcore with its user database. Lookup misses
// must return [ErrIdentityNotFound]; the engine collapses them into
// ErrInvalidCredentials before anything reaches a client.
type CredentialStore interface {
	FindByIdentity(ctx context.Context, identity string) (CredentialRecord, error)
	UpdateFailedAttempts(ctx context.Context, id string, count int, lockedUntil *time.Time) error
	ResetFailedAttempts(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error
}

// Claims is the verified claim set of an access or refresh token.
type Claims = token.Claims

// TokenPair bundles the tokens issued for a successful authentication.
type TokenPair = token.Pair

// AdmitDecision is returned by [Engine.CheckAndAdmit].
type AdmitDecision struct {
	Admitted   bool
	Reason     AdmitReason
	RetryAfter time.Duration
}

// AdmitReason tags why admission was refused.
type AdmitReason = ratelimit.Reason

const (
	// AdmitReasonIPBlocked means the source IP is hard-blocked.
	AdmitReasonIPBlocked = ratelimit.ReasonIPBlocked
	// AdmitReasonRateLimited means the endpoint budget is exhausted.
	AdmitReasonRateLimited = ratelimit.ReasonRateLimited
)

// LockStatus is returned by [Engine.CheckAccountLock].
type LockStatus struct {
	Locked           bool
	RemainingMinutes int
}

// StrengthReport is the result of scoring a candidate password.
type StrengthReport = password.StrengthReport

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginRateLimited counts logins refused by the limiter.
	MetricLoginRateLimited = internalmetrics.MetricLoginRateLimited
	// MetricLoginIPBlocked counts requests short-circuited by an IP block.
	MetricLoginIPBlocked = internalmetrics.MetricLoginIPBlocked
	// MetricLoginDelayImposed counts responses withheld by progressive delay.
	MetricLoginDelayImposed = internalmetrics.MetricLoginDelayImposed
	// MetricAccountLocked counts lockouts triggered by the failure threshold.
	MetricAccountLocked = internalmetrics.MetricAccountLocked
	// MetricAccountUnlocked counts administrative unlocks.
	MetricAccountUnlocked = internalmetrics.MetricAccountUnlocked
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected token refreshes.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricTokenRevoked counts revocation-set insertions.
	MetricTokenRevoked = internalmetrics.MetricTokenRevoked
	// MetricTokenRejected counts failed access-token verifications.
	MetricTokenRejected = internalmetrics.MetricTokenRejected
	// MetricCSRFMismatch counts double-submit validation failures.
	MetricCSRFMismatch = internalmetrics.MetricCSRFMismatch
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess = internalmetrics.MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld counts changes rejected on the old password.
	MetricPasswordChangeInvalidOld = internalmetrics.MetricPasswordChangeInvalidOld
	// MetricPasswordChangeRejected counts changes rejected by policy or reuse.
	MetricPasswordChangeRejected = internalmetrics.MetricPasswordChangeRejected
	// MetricValidateLatency is the access-token verification latency histogram.
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
