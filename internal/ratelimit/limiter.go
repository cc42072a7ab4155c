package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Reason tags why a request was not admitted.
type Reason string

const (
	// ReasonIPBlocked means the source IP is hard-blocked.
	ReasonIPBlocked Reason = "ip_blocked"
	// ReasonRateLimited means a fixed-window budget is exhausted.
	ReasonRateLimited Reason = "rate_limited"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Admitted   bool
	Reason     Reason
	RetryAfter time.Duration
}

var admitted = Decision{Admitted: true}

// Config holds limiter tuning parameters.
type Config struct {
	Window               time.Duration
	GeneralMax           int
	AuthMax              int
	RefundSuccessfulAuth bool
	IPBlockThreshold     int
	IPBlockDuration      time.Duration
	DelayThreshold       int
	DelayStep            time.Duration
	MaxDelay             time.Duration
	Now                  func() time.Time
}

type windowCounter struct {
	start time.Time
	count int
}

// Limiter enforces per-IP and per-(IP, identifier) limits. All methods are
// safe for concurrent use; no method blocks while holding the lock.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	general  map[string]*windowCounter
	auth     map[string]*windowCounter
	failures map[string][]time.Time
	blocks   map[string]time.Time
}

// New creates a [Limiter]. The caller is responsible for driving
// [Limiter.Sweep] periodically.
func New(cfg Config) *Limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Limiter{
		cfg:      cfg,
		now:      cfg.Now,
		general:  make(map[string]*windowCounter),
		auth:     make(map[string]*windowCounter),
		failures: make(map[string][]time.Time),
		blocks:   make(map[string]time.Time),
	}
}

func pairKey(ip, identifier string) string {
	return ip + "|" + identifier
}

// CheckGeneral admits or rejects a non-authentication request from ip
// against the general fixed-window budget. A hard-blocked IP is rejected
// regardless of remaining budget.
func (l *Limiter) CheckGeneral(ip string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if d, blocked := l.blockDecision(ip, now); blocked {
		return d
	}
	return l.admitWindow(l.general, ip, l.cfg.GeneralMax, now)
}

// CheckAuth admits or rejects an authentication attempt from ip against
// the stricter auth budget, consuming one slot when admitted. identifier
// is accepted for symmetry with the failure-tracking API; an empty value
// degrades to IP-only behavior.
func (l *Limiter) CheckAuth(ip, identifier string) Decision {
	_ = identifier
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if d, blocked := l.blockDecision(ip, now); blocked {
		return d
	}
	return l.admitWindow(l.auth, ip, l.cfg.AuthMax, now)
}

// RefundAuth returns one previously consumed auth-window slot for ip.
// Called after a successful authentication when the configuration excludes
// successes from the auth budget, so a legitimate retry after a typo does
// not erode the user's remaining attempts at attacker rates.
func (l *Limiter) RefundAuth(ip string) {
	if !l.cfg.RefundSuccessfulAuth {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.auth[ip]; ok && w.count > 0 {
		w.count--
	}
}

// blockDecision reports whether ip is hard-blocked. Expired blocks are
// logically absent; eviction is left to Sweep.
func (l *Limiter) blockDecision(ip string, now time.Time) (Decision, bool) {
	expiry, ok := l.blocks[ip]
	if !ok || !expiry.After(now) {
		return admitted, false
	}
	return Decision{
		Admitted:   false,
		Reason:     ReasonIPBlocked,
		RetryAfter: expiry.Sub(now),
	}, true
}

// admitWindow applies fixed-window semantics: the first hit opens the
// window, subsequent hits within it consume budget, and a hit after the
// window lapses resets it. Caller holds the lock.
func (l *Limiter) admitWindow(windows map[string]*windowCounter, ip string, max int, now time.Time) Decision {
	if max <= 0 {
		return admitted
	}

	w, ok := windows[ip]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		windows[ip] = &windowCounter{start: now, count: 1}
		return admitted
	}

	if w.count >= max {
		return Decision{
			Admitted:   false,
			Reason:     ReasonRateLimited,
			RetryAfter: w.start.Add(l.cfg.Window).Sub(now),
		}
	}

	w.count++
	return admitted
}

// RecordFailure notes a failed authentication attempt. Failures are
// tracked per IP always, and per (IP, identifier) when an identifier was
// supplied. Crossing the per-IP threshold installs a hard block.
func (l *Limiter) RecordFailure(ip, identifier string) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ipCount := l.appendFailure(ip, now)
	if identifier != "" {
		l.appendFailure(pairKey(ip, identifier), now)
	}

	if l.cfg.IPBlockThreshold > 0 && ipCount >= l.cfg.IPBlockThreshold {
		l.blocks[ip] = now.Add(l.cfg.IPBlockDuration)
	}
}

// appendFailure prunes the key's window, appends now, and returns the new
// count. Caller holds the lock.
func (l *Limiter) appendFailure(key string, now time.Time) int {
	kept := pruneBefore(l.failures[key], now.Add(-l.cfg.Window))
	kept = append(kept, now)
	l.failures[key] = kept
	return len(kept)
}

// Clear drops the failure history for the (IP, identifier) pair. Called on
// successful authentication; the per-IP history is deliberately retained
// so one valid login cannot launder an attack spread across identities.
func (l *Limiter) Clear(ip, identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if identifier != "" {
		delete(l.failures, pairKey(ip, identifier))
	}
}

// IsBlocked reports whether ip is currently hard-blocked.
func (l *Limiter) IsBlocked(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	_, blocked := l.blockDecision(ip, now)
	return blocked
}

// FailureCount returns the failures inside the trailing window for the
// (IP, identifier) pair, or for the IP alone when identifier is empty.
func (l *Limiter) FailureCount(ip, identifier string) int {
	key := ip
	if identifier != "" {
		key = pairKey(ip, identifier)
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := pruneBefore(l.failures[key], now.Add(-l.cfg.Window))
	if len(kept) == 0 {
		delete(l.failures, key)
	} else {
		l.failures[key] = kept
	}
	return len(kept)
}

// DelayFor computes the progressive response delay owed for the pair:
// min(failures × step, max) once the threshold is reached, zero below it.
// Without an identifier there is no pair to escalate on and the delay is
// zero — IP-level enforcement still applies through blocks and windows.
func (l *Limiter) DelayFor(ip, identifier string) time.Duration {
	if identifier == "" || l.cfg.DelayThreshold <= 0 {
		return 0
	}

	n := l.FailureCount(ip, identifier)
	if n < l.cfg.DelayThreshold {
		return 0
	}

	d := time.Duration(n) * l.cfg.DelayStep
	if d > l.cfg.MaxDelay {
		d = l.cfg.MaxDelay
	}
	return d
}

// Wait blocks for d, returning early with the context's error if the
// caller goes away. This is the one intentionally slow path in the
// package; it holds no lock.
func (l *Limiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep prunes timestamps older than the window, drops empty entries,
// evicts expired blocks, and removes lapsed fixed windows. It takes the
// same lock as the request path and is intended for a periodic timer.
func (l *Limiter) Sweep() {
	now := l.now()
	cutoff := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, stamps := range l.failures {
		kept := pruneBefore(stamps, cutoff)
		if len(kept) == 0 {
			delete(l.failures, key)
		} else {
			l.failures[key] = kept
		}
	}

	for ip, expiry := range l.blocks {
		if !expiry.After(now) {
			delete(l.blocks, ip)
		}
	}

	for ip, w := range l.general {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.general, ip)
		}
	}
	for ip, w := range l.auth {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.auth, ip)
		}
	}
}

// pruneBefore returns the suffix of stamps at or after cutoff. Stamps are
// appended in order, so a single scan finds the boundary.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && stamps[idx].Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return stamps
	}
	return append([]time.Time(nil), stamps[idx:]...)
}
