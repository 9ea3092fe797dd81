package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory limiter. Each key holds up to Limit tokens
// that refill continuously over Window.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket limiter. Idle buckets are dropped
// every cleanup interval; zero disables the sweeper.
func NewTokenBucket(cfg Config, cleanup time.Duration) (*TokenBucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tb := &TokenBucket{
		buckets: make(map[string]*bucket),
		limit:   cfg.Limit,
		window:  cfg.Window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if cleanup > 0 {
		go tb.cleanupLoop(cleanup)
	}
	return tb, nil
}

// Allow implements Limiter
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Info, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(tb.limit), lastRefill: now}
		tb.buckets[key] = b
	}
	tb.refill(b, now)

	info := &Info{Limit: tb.limit}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
		info.Remaining = int(b.tokens)
		info.ResetAt = now.Add(tb.timeFor(float64(tb.limit) - b.tokens))
		return info, nil
	}

	info.ResetAt = now.Add(tb.timeFor(1 - b.tokens))
	return info, nil
}

func (tb *TokenBucket) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += float64(tb.limit) * elapsed.Seconds() / tb.window.Seconds()
	if b.tokens > float64(tb.limit) {
		b.tokens = float64(tb.limit)
	}
	b.lastRefill = now
}

// timeFor returns how long refilling n tokens takes
func (tb *TokenBucket) timeFor(n float64) time.Duration {
	return time.Duration(n / float64(tb.limit) * float64(tb.window))
}

func (tb *TokenBucket) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tb.removeIdle()
		case <-tb.done:
			return
		}
	}
}

// removeIdle drops buckets that have refilled completely
func (tb *TokenBucket) removeIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.lastRefill) >= tb.window {
			delete(tb.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine
func (tb *TokenBucket) Close() error {
	tb.closeOnce.Do(func() { close(tb.done) })
	return nil
}
