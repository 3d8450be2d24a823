package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// It is intentionally explicit and environment-driven so that production
// deployments can tune security parameters without code changes.
type Config struct {
	// TTL defines the lifetime of issued sessions.
	TTL time.Duration

	// TokenBytes defines the number of random bytes used to generate
	// opaque session identifiers.
	TokenBytes int
}

// DefaultConfig returns a secure default configuration.
func DefaultConfig() Config {
	return Config{
		TTL:        30 * 24 * time.Hour,
		TokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - CALLDEX_SESSION_TTL
//   - CALLDEX_SESSION_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CALLDEX_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("CALLDEX_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	return cfg, nil
}
