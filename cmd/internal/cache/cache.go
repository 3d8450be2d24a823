// Package cache provides a small keyed cache abstraction with in-memory and
// Redis backends.
//
// The directory resolver uses it as a short-TTL read-through cache in front
// of contact lookups. Memory is the dev/test default; Redis is for
// multi-instance deployments.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Client defines the cache operations.
type Client interface {
	// Get returns a value. Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string // "memory" (default) | "redis"
	Addr   string // redis host:port
	DB     int
	Prefix string // prepended to every key
}

// New creates a cache client for the configured driver.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, errors.New("cache: unknown driver " + cfg.Driver)
	}
}
