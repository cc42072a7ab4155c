package authcore

import (
	"time"

	"github.com/FrancescoMain/korsvagen-web-sub000/internal/ratelimit"
)

func admitDecision(dec ratelimit.Decision) AdmitDecision {
	return AdmitDecision{
		Admitted:   dec.Admitted,
		Reason:     dec.Reason,
		RetryAfter: dec.RetryAfter,
	}
}

// CheckAndAdmit runs the auth-class admission check for one login-shaped
// attempt from ip against identifier: the IP hard block first, then the
// strict auth window. Admission consumes a window slot; a later successful
// login refunds it. Login calls this itself; hosts only need it when they
// gate a custom endpoint on the auth class.
func (e *Engine) CheckAndAdmit(ip, identifier string) AdmitDecision {
	return admitDecision(e.limiter.CheckAuth(ip, identifier))
}

// CheckRequest runs the general-class admission check for ip. Intended for
// non-authentication traffic in front of the same engine instance.
func (e *Engine) CheckRequest(ip string) AdmitDecision {
	return admitDecision(e.limiter.CheckGeneral(ip))
}

// RecordFailure counts one authentication failure for the (ip, identifier)
// pair and for the IP alone. Login performs this bookkeeping itself; the
// method exists for hosts that verify credentials out of band and report
// the outcome via [Engine.RecordAuthOutcome] semantics.
func (e *Engine) RecordFailure(ip, identifier string) {
	e.limiter.RecordFailure(ip, identifier)
}

// ClearFailures drops the sliding-window failure history for the
// (ip, identifier) pair. The per-IP history is retained: one success
// against one account must not launder an IP spraying many accounts.
func (e *Engine) ClearFailures(ip, identifier string) {
	e.limiter.Clear(ip, identifier)
}

// IsIPBlocked reports whether ip currently sits under a hard block.
func (e *Engine) IsIPBlocked(ip string) bool {
	return e.limiter.IsBlocked(ip)
}

// FailureCount returns the live failure count for the (ip, identifier)
// pair within the sliding window.
func (e *Engine) FailureCount(ip, identifier string) int {
	return e.limiter.FailureCount(ip, identifier)
}

// FailureDelay returns the progressive delay the next failed attempt for
// the pair would incur. Zero when the pair is under the delay threshold.
func (e *Engine) FailureDelay(ip, identifier string) time.Duration {
	return e.limiter.DelayFor(ip, identifier)
}
