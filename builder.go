package authcore

import (
	"errors"
	"time"

	"github.com/FrancescoMain/korsvagen-web-sub000/csrf"
	internalaudit "github.com/FrancescoMain/korsvagen-web-sub000/internal/audit"
	"github.com/FrancescoMain/korsvagen-web-sub000/internal/lockout"
	"github.com/FrancescoMain/korsvagen-web-sub000/internal/ratelimit"
	"github.com/FrancescoMain/korsvagen-web-sub000/password"
	"github.com/FrancescoMain/korsvagen-web-sub000/token"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; a Builder must not be reused after a successful Build.
type Builder struct {
	config Config

	store CredentialStore
	sink  AuditSink
	clock func() time.Time

	built bool
}

// New creates a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCredentialStore supplies the host's credential repository.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink supplies the sink receiving audit events. Ignored unless
// auditing is enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithClock injects the time source used by token verification, the
// limiter, and lockout decisions. Tests use it to drive expiry without
// sleeping; production code leaves it unset.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration, wires the components, starts the
// background sweep, and returns the ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	now := b.clock
	if now == nil {
		now = time.Now
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cloneBytes(cfg.Token.AccessSecret),
		RefreshSecret: cloneBytes(cfg.Token.RefreshSecret),
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		Issuer:        cfg.Token.Issuer,
		Audience:      cfg.Token.Audience,
		Leeway:        cfg.Token.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:        cfg.Password.Memory,
		Time:          cfg.Password.Time,
		Parallelism:   cfg.Password.Parallelism,
		SaltLength:    cfg.Password.SaltLength,
		KeyLength:     cfg.Password.KeyLength,
		MaxConcurrent: cfg.Password.MaxConcurrent,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cfg,
		tokens: tokens,
		hasher: hasher,
		limiter: ratelimit.New(ratelimit.Config{
			Window:               cfg.RateLimit.Window,
			GeneralMax:           cfg.RateLimit.GeneralMaxRequests,
			AuthMax:              cfg.RateLimit.AuthMaxRequests,
			RefundSuccessfulAuth: cfg.RateLimit.RefundSuccessfulAuth,
			IPBlockThreshold:     cfg.RateLimit.IPBlockThreshold,
			IPBlockDuration:      cfg.RateLimit.IPBlockDuration,
			DelayThreshold:       cfg.RateLimit.DelayThreshold,
			DelayStep:            cfg.RateLimit.DelayStep,
			MaxDelay:             cfg.RateLimit.MaxDelay,
			Now:                  now,
		}),
		lockouts: lockout.New(lockout.Config{
			Threshold: cfg.Lockout.Threshold,
			Duration:  cfg.Lockout.Duration,
			Now:       now,
		}, b.store),
		guard:   csrf.NewGuard(cfg.CSRF.TokenBytes),
		store:   b.store,
		metrics: NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.sink),
		clock:     now,
		sweepDone: make(chan struct{}),
	}

	engine.startSweep(cfg.RateLimit.SweepInterval)

	b.built = true

	return engine, nil
}
