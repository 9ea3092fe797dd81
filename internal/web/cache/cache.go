// Package cache stores converted resource objects between requests. Entries
// are keyed by resource type and id and expire after a TTL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is not in the cache or has expired
var ErrMiss = errors.New("cache miss")

// Backend is a byte-oriented key/value store with expiry
type Backend interface {
	// Get retrieves a value; a missing key yields ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value for ttl; a non-positive ttl never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys; missing keys are ignored
	Delete(ctx context.Context, keys ...string) error

	// Close releases backend resources
	Close() error
}

// Config holds common configuration for cache backends
type Config struct {
	// TTL is the lifetime of cached entries
	TTL time.Duration
	// Prefix is prepended to all backend keys
	Prefix string
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		TTL:    time.Minute,
		Prefix: "causeway:",
	}
}

// IsMiss reports whether err is a cache miss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// Noop is a backend that stores nothing
type Noop struct{}

// Get always misses
func (Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value
func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

// Delete does nothing
func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }

// Close does nothing
func (Noop) Close() error { return nil }
