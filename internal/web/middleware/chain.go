// Package middleware holds the HTTP middleware stack shared by every route:
// request ids, logging, panic recovery, rate limits, compression and deadlines.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/web/ratelimit"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain represents a composable chain of middleware
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Use adds middleware to the end of the chain
func (c *Chain) Use(middlewares ...Middleware) *Chain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Then wraps handler so the first middleware added runs first
func (c *Chain) Then(handler http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}

// Append returns a new chain with middlewares added, leaving c untouched
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	combined := make([]Middleware, 0, len(c.middlewares)+len(middlewares))
	combined = append(combined, c.middlewares...)
	combined = append(combined, middlewares...)
	return &Chain{middlewares: combined}
}

// Len returns the number of middleware in the chain
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// StackConfig selects the optional parts of the default stack
type StackConfig struct {
	// Timeout bounds each request; zero disables the deadline
	Timeout time.Duration
	// Compress enables gzip responses
	Compress bool
	// Limiter, when set, limits requests per client address
	Limiter ratelimit.Limiter
}

// Default returns the stack every API request passes through, outermost first
func Default(logger *zap.Logger, cfg StackConfig) *Chain {
	chain := NewChain(
		RequestID(logger),
		Logging(logger),
		Recovery(logger),
	)
	if cfg.Limiter != nil {
		chain.Use(RateLimit(cfg.Limiter, logger))
	}
	if cfg.Compress {
		chain.Use(Compression())
	}
	if cfg.Timeout > 0 {
		chain.Use(Timeout(cfg.Timeout))
	}
	return chain
}
