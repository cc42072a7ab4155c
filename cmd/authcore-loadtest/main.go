// Command authcore-loadtest measures token verification and refresh
// rotation throughput against an in-memory engine.
//
// Phase 1 verifies access tokens across concurrent workers; phase 2
// rotates refresh tokens, each worker chain holding its own current token.
// Results report ops/sec and p50/p95/p99 latency per phase.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
)

type tokenChain struct {
	refresh string
	mu      sync.Mutex
}

// noopStore satisfies the credential store for flows that never touch it.
// Both load phases exercise the token path only.
type noopStore struct{}

func (noopStore) FindByIdentity(context.Context, string) (authcore.CredentialRecord, error) {
	return authcore.CredentialRecord{}, authcore.ErrIdentityNotFound
}
func (noopStore) UpdateFailedAttempts(context.Context, string, int, *time.Time) error { return nil }
func (noopStore) ResetFailedAttempts(context.Context, string) error                   { return nil }
func (noopStore) UpdateLastLogin(context.Context, string) error                       { return nil }
func (noopStore) UpdatePasswordHash(context.Context, string, string) error            { return nil }

func main() {
	var (
		principals  = flag.Int("principals", 10000, "number of principals to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (verify + refresh)")
	)
	flag.Parse()

	if *principals <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "principals, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	cfg := authcore.DefaultConfig()
	cfg.Token.AccessSecret = []byte("loadtest-access-secret-32-bytes!")
	cfg.Token.RefreshSecret = []byte("loadtest-refresh-secret-32bytes!")
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := authcore.New().
		WithConfig(cfg).
		WithCredentialStore(noopStore{}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d principals...\n", *principals)
	startSeed := time.Now()

	accessTokens := make([]string, *principals)
	chains := make([]tokenChain, *principals)
	for i := 0; i < *principals; i++ {
		pair, err := engine.IssuePair(
			fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user-%d@example.com", i),
			"editor",
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		accessTokens[i] = pair.AccessToken
		chains[i].refresh = pair.RefreshToken
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	verifyStats := runVerifyPhase(engine, accessTokens, *ops, *concurrency)
	refreshStats := runRefreshPhase(engine, chains, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("verify", verifyStats)
	printStats("refresh", refreshStats)
}

func runVerifyPhase(engine *authcore.Engine, tokens []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(tokens))
				t0 := time.Now()
				_, err := engine.VerifyAccess(tokens[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(engine *authcore.Engine, chains []tokenChain, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	ctx := authcore.WithClientIP(context.Background(), "127.0.0.1")

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				chain := &chains[r.Intn(len(chains))]

				chain.mu.Lock()
				t0 := time.Now()
				pair, err := engine.Refresh(ctx, chain.refresh)
				d := time.Since(t0)
				if err == nil {
					chain.refresh = pair.RefreshToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				chain.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
