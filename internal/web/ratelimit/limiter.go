// Package ratelimit bounds how many requests one client may make per window.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Limiter decides whether the client identified by key may proceed
type Limiter interface {
	// Allow consumes one request for key and reports the resulting state
	Allow(ctx context.Context, key string) (*Info, error)

	// Close releases limiter resources
	Close() error
}

// Info describes the limit state after a request
type Info struct {
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Remaining is the number of requests left before the limit applies
	Remaining int
	// ResetAt is when the client regains capacity
	ResetAt time.Time
	// Allowed indicates whether the request should be served
	Allowed bool
}

// Config sizes a limiter
type Config struct {
	// Limit is the number of requests allowed per Window
	Limit int
	// Window is the period the limit applies to
	Window time.Duration
	// Prefix is prepended to backend keys
	Prefix string
}

// DefaultConfig allows 100 requests per minute
func DefaultConfig() Config {
	return Config{
		Limit:  100,
		Window: time.Minute,
		Prefix: "ratelimit:",
	}
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return errors.New("limit must be greater than 0")
	}
	if c.Window <= 0 {
		return errors.New("window must be greater than 0")
	}
	return nil
}
