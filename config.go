package authcore

import (
	"crypto/subtle"
	"errors"
	"time"
)

// Config aggregates every tunable of the authentication core.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Token     TokenConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Lockout   LockoutConfig
	CSRF      CSRFConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines signing secrets and lifetimes. Access and refresh
// secrets must differ: a refresh-signing compromise must not allow forging
// access tokens.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines the Argon2id cost parameters and the bound on
// concurrent hashing operations.
type PasswordConfig struct {
	Memory        uint32 // in KB
	Time          uint32
	Parallelism   uint8
	SaltLength    uint32
	KeyLength     uint32
	MaxConcurrent int64 // 0 disables the hashing gate

	// UpgradeOnLogin re-hashes a verified password whose stored hash
	// carries weaker cost parameters than the current configuration.
	UpgradeOnLogin bool
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines the fixed windows, the failure thresholds, and
// the progressive-delay curve.
type RateLimitConfig struct {
	Window               time.Duration
	GeneralMaxRequests   int
	AuthMaxRequests      int
	RefundSuccessfulAuth bool
	IPBlockThreshold     int
	IPBlockDuration      time.Duration
	DelayThreshold       int
	DelayStep            time.Duration
	MaxDelay             time.Duration
	SweepInterval        time.Duration
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines the persistent account lockout policy.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

/*
====================================
CSRF / AUDIT / METRICS CONFIG
====================================
*/

// CSRFConfig defines double-submit token parameters.
type CSRFConfig struct {
	TokenBytes int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults. Signing secrets are left
// empty and must be set before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  1 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "korsvagen-backend",
			Audience:   "korsvagen-admin",
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:         64 * 1024,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MaxConcurrent:  8,
			UpgradeOnLogin: true,
		},
		RateLimit: RateLimitConfig{
			Window:               15 * time.Minute,
			GeneralMaxRequests:   100,
			AuthMaxRequests:      5,
			RefundSuccessfulAuth: true,
			IPBlockThreshold:     10,
			IPBlockDuration:      1 * time.Hour,
			DelayThreshold:       3,
			DelayStep:            2 * time.Second,
			MaxDelay:             30 * time.Second,
			SweepInterval:        5 * time.Minute,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  30 * time.Minute,
		},
		CSRF: CSRFConfig{
			TokenBytes: 32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = cloneBytes(cfg.Token.AccessSecret)
	out.Token.RefreshSecret = cloneBytes(cfg.Token.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. Build calls
// it; hosts constructing configs programmatically can call it early to
// fail fast.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.AccessSecret) == 0 {
		return errors.New("Token AccessSecret is required")
	}
	if len(c.Token.RefreshSecret) == 0 {
		return errors.New("Token RefreshSecret is required")
	}
	if subtle.ConstantTimeCompare(c.Token.AccessSecret, c.Token.RefreshSecret) == 1 {
		return errors.New("Token AccessSecret and RefreshSecret must differ")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be >= AccessTTL")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be within [0, 2m]")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MaxConcurrent < 0 {
		return errors.New("Password MaxConcurrent must be >= 0")
	}

	// Rate limit
	if c.RateLimit.Window <= 0 {
		return errors.New("RateLimit Window must be > 0")
	}
	if c.RateLimit.GeneralMaxRequests < 0 || c.RateLimit.AuthMaxRequests < 0 {
		return errors.New("RateLimit request budgets must be >= 0")
	}
	if c.RateLimit.AuthMaxRequests > 0 && c.RateLimit.GeneralMaxRequests > 0 &&
		c.RateLimit.AuthMaxRequests > c.RateLimit.GeneralMaxRequests {
		return errors.New("RateLimit AuthMaxRequests must be <= GeneralMaxRequests")
	}
	if c.RateLimit.IPBlockThreshold < 0 {
		return errors.New("RateLimit IPBlockThreshold must be >= 0")
	}
	if c.RateLimit.IPBlockThreshold > 0 && c.RateLimit.IPBlockDuration <= 0 {
		return errors.New("RateLimit IPBlockDuration must be > 0 when blocking is enabled")
	}
	if c.RateLimit.DelayThreshold < 0 {
		return errors.New("RateLimit DelayThreshold must be >= 0")
	}
	if c.RateLimit.DelayThreshold > 0 {
		if c.RateLimit.DelayStep <= 0 {
			return errors.New("RateLimit DelayStep must be > 0 when progressive delay is enabled")
		}
		if c.RateLimit.MaxDelay < c.RateLimit.DelayStep {
			return errors.New("RateLimit MaxDelay must be >= DelayStep")
		}
	}
	if c.RateLimit.SweepInterval <= 0 {
		return errors.New("RateLimit SweepInterval must be > 0")
	}

	// Lockout
	if c.Lockout.Threshold < 1 {
		return errors.New("Lockout Threshold must be >= 1")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("Lockout Duration must be > 0")
	}

	// CSRF
	if c.CSRF.TokenBytes < 16 {
		return errors.New("CSRF TokenBytes must be >= 16")
	}

	return nil
}
