package authcore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from .env files into the process environment
// before [ConfigFromEnv] reads them. Missing files are not an error; in
// deployed environments the variables arrive through the real environment.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	_ = godotenv.Load(paths...)
}

// ConfigFromEnv builds a [Config] from the process environment, starting
// from the defaults. The two signing secrets are required; everything else
// falls back to its default when unset.
//
// Recognized variables:
//
//	AUTH_ACCESS_SECRET, AUTH_REFRESH_SECRET        (required)
//	AUTH_ACCESS_TTL, AUTH_REFRESH_TTL              (Go durations)
//	AUTH_TOKEN_ISSUER, AUTH_TOKEN_AUDIENCE
//	AUTH_LOCKOUT_THRESHOLD, AUTH_LOCKOUT_DURATION
//	AUTH_RATE_WINDOW, AUTH_RATE_GENERAL_MAX, AUTH_RATE_AUTH_MAX
//	AUTH_RATE_IP_BLOCK_THRESHOLD, AUTH_RATE_IP_BLOCK_DURATION
//	AUTH_RATE_SWEEP_INTERVAL
//	AUTH_ARGON_MEMORY_KB, AUTH_ARGON_TIME, AUTH_ARGON_PARALLELISM
//	AUTH_HASH_MAX_CONCURRENT
//	AUTH_AUDIT_ENABLED, AUTH_METRICS_ENABLED
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()

	accessSecret, err := mustEnv("AUTH_ACCESS_SECRET")
	if err != nil {
		return Config{}, err
	}
	refreshSecret, err := mustEnv("AUTH_REFRESH_SECRET")
	if err != nil {
		return Config{}, err
	}
	cfg.Token.AccessSecret = []byte(accessSecret)
	cfg.Token.RefreshSecret = []byte(refreshSecret)

	cfg.Token.AccessTTL = envDurationOrDefault("AUTH_ACCESS_TTL", cfg.Token.AccessTTL)
	cfg.Token.RefreshTTL = envDurationOrDefault("AUTH_REFRESH_TTL", cfg.Token.RefreshTTL)
	cfg.Token.Issuer = envOrDefault("AUTH_TOKEN_ISSUER", cfg.Token.Issuer)
	cfg.Token.Audience = envOrDefault("AUTH_TOKEN_AUDIENCE", cfg.Token.Audience)

	cfg.Lockout.Threshold = envIntOrDefault("AUTH_LOCKOUT_THRESHOLD", cfg.Lockout.Threshold)
	cfg.Lockout.Duration = envDurationOrDefault("AUTH_LOCKOUT_DURATION", cfg.Lockout.Duration)

	cfg.RateLimit.Window = envDurationOrDefault("AUTH_RATE_WINDOW", cfg.RateLimit.Window)
	cfg.RateLimit.GeneralMaxRequests = envIntOrDefault("AUTH_RATE_GENERAL_MAX", cfg.RateLimit.GeneralMaxRequests)
	cfg.RateLimit.AuthMaxRequests = envIntOrDefault("AUTH_RATE_AUTH_MAX", cfg.RateLimit.AuthMaxRequests)
	cfg.RateLimit.IPBlockThreshold = envIntOrDefault("AUTH_RATE_IP_BLOCK_THRESHOLD", cfg.RateLimit.IPBlockThreshold)
	cfg.RateLimit.IPBlockDuration = envDurationOrDefault("AUTH_RATE_IP_BLOCK_DURATION", cfg.RateLimit.IPBlockDuration)
	cfg.RateLimit.SweepInterval = envDurationOrDefault("AUTH_RATE_SWEEP_INTERVAL", cfg.RateLimit.SweepInterval)

	cfg.Password.Memory = uint32(envIntOrDefault("AUTH_ARGON_MEMORY_KB", int(cfg.Password.Memory)))
	cfg.Password.Time = uint32(envIntOrDefault("AUTH_ARGON_TIME", int(cfg.Password.Time)))
	cfg.Password.Parallelism = uint8(envIntOrDefault("AUTH_ARGON_PARALLELISM", int(cfg.Password.Parallelism)))
	cfg.Password.MaxConcurrent = int64(envIntOrDefault("AUTH_HASH_MAX_CONCURRENT", int(cfg.Password.MaxConcurrent)))

	cfg.Audit.Enabled = envBoolOrDefault("AUTH_AUDIT_ENABLED", cfg.Audit.Enabled)
	cfg.Metrics.Enabled = envBoolOrDefault("AUTH_METRICS_ENABLED", cfg.Metrics.Enabled)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mustEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return value, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBoolOrDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
