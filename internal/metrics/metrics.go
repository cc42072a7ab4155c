package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a single counter or histogram slot.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins refused by the fixed-window limiter.
	MetricLoginRateLimited
	// MetricLoginIPBlocked counts requests short-circuited by an IP block.
	MetricLoginIPBlocked
	// MetricLoginDelayImposed counts responses withheld by progressive delay.
	MetricLoginDelayImposed
	// MetricAccountLocked counts lockouts triggered by the failure threshold.
	MetricAccountLocked
	// MetricAccountUnlocked counts administrative unlocks.
	MetricAccountUnlocked
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected token refreshes.
	MetricRefreshFailure
	// MetricTokenRevoked counts revocation-set insertions.
	MetricTokenRevoked
	// MetricTokenRejected counts access-token verifications that failed.
	MetricTokenRejected
	// MetricCSRFMismatch counts double-submit validation failures.
	MetricCSRFMismatch
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld counts password changes rejected on the old password.
	MetricPasswordChangeInvalidOld
	// MetricPasswordChangeRejected counts password changes rejected by policy or reuse.
	MetricPasswordChangeRejected
	// MetricValidateLatency is the access-token verification latency histogram.
	MetricValidateLatency

	// MetricIDCount is the number of defined metric slots.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// histBounds are the upper bounds of the first seven histogram buckets.
// The eighth bucket is +Inf.
var histBounds = [histBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Config controls which recording paths are active.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and optional latency histograms.
// All methods are safe for concurrent use and are no-ops when disabled.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time deep copy of all metric values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a [Metrics] instance. When cfg.Enabled is false, every
// operation is a no-op and Snapshot returns empty maps.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= MetricIDCount {
		return
	}
	bucket := histBucketCount - 1
	for i, bound := range histBounds {
		if d <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucket], 1)
}

// Snapshot returns a deep copy of all counters and histogram buckets.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		snap.Histograms[MetricValidateLatency] = buckets
	}

	return snap
}
