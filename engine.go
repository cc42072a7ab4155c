package authcore

import (
	"sync"
	"time"

	"github.com/FrancescoMain/korsvagen-web-sub000/csrf"
	internalaudit "github.com/FrancescoMain/korsvagen-web-sub000/internal/audit"
	"github.com/FrancescoMain/korsvagen-web-sub000/internal/lockout"
	"github.com/FrancescoMain/korsvagen-web-sub000/internal/ratelimit"
	"github.com/FrancescoMain/korsvagen-web-sub000/password"
	"github.com/FrancescoMain/korsvagen-web-sub000/token"
)

// Engine is the authentication core. Construct through [Builder.Build];
// all methods are then safe for concurrent use. The Engine owns every
// piece of mutable security state — revocation set, limiter maps, lockout
// bookkeeping — and the background sweep that bounds their memory.
type Engine struct {
	config   Config
	tokens   *token.Manager
	hasher   *password.Hasher
	limiter  *ratelimit.Limiter
	lockouts *lockout.Coordinator
	guard    *csrf.Guard
	store    CredentialStore
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	clock    func() time.Time

	sweepDone chan struct{}
	sweepWG   sync.WaitGroup
	closeOnce sync.Once
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

// Close stops the background sweep and drains the audit dispatcher.
// Idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		close(e.sweepDone)
		e.sweepWG.Wait()
		if e.audit != nil {
			e.audit.Close()
		}
	})
}

// MetricsSnapshot returns a point-in-time deep copy of all metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// startSweep launches the periodic maintenance pass: limiter pruning,
// revocation-set eviction, and lockout cache flush all run on one timer
// and take the same locks as the request path.
func (e *Engine) startSweep(interval time.Duration) {
	e.sweepWG.Add(1)
	go func() {
		defer e.sweepWG.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.Sweep()
			case <-e.sweepDone:
				return
			}
		}
	}()
}

// Sweep runs one maintenance pass immediately. The background timer calls
// it on the configured interval; tests call it directly.
func (e *Engine) Sweep() {
	if e == nil {
		return
	}
	e.limiter.Sweep()
	e.tokens.SweepRevoked()
	e.lockouts.Flush()
}

// RevokedCount reports the current size of the revocation set.
func (e *Engine) RevokedCount() int {
	if e == nil {
		return 0
	}
	return e.tokens.RevokedCount()
}
