package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process backend with lazy and periodic expiry
type MemoryCache struct {
	mu     sync.Mutex
	items  map[string]memoryItem
	prefix string
	now    func() time.Time
	cancel context.CancelFunc
}

type memoryItem struct {
	value      []byte
	expiration time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NewMemoryCache creates a memory backend that sweeps expired entries every interval
func NewMemoryCache(prefix string, interval time.Duration) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryCache{
		items:  make(map[string]memoryItem),
		prefix: prefix,
		now:    time.Now,
		cancel: cancel,
	}
	if interval > 0 {
		go m.sweep(ctx, interval)
	}
	return m
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[m.prefix+key]
	if !ok {
		return nil, ErrMiss
	}
	if item.expired(m.now()) {
		delete(m.items, m.prefix+key)
		return nil, ErrMiss
	}
	return item.value, nil
}

// Set stores a value in the cache with a TTL
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiration = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[m.prefix+key] = item
	m.mu.Unlock()
	return nil
}

// Delete removes values from the cache
func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	for _, key := range keys {
		delete(m.items, m.prefix+key)
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the background sweeper
func (m *MemoryCache) Close() error {
	m.cancel()
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *MemoryCache) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, item := range m.items {
		if item.expired(now) {
			delete(m.items, key)
		}
	}
}
