package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/resource"
)

// Resources caches converted resource objects by type and id. Backend
// failures are logged and treated as misses so the cache never fails a
// request.
type Resources struct {
	backend Backend
	ttl     time.Duration
	logger  *zap.Logger
}

// NewResources creates a resource cache over backend
func NewResources(backend Backend, ttl time.Duration, logger *zap.Logger) *Resources {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resources{
		backend: backend,
		ttl:     ttl,
		logger:  logger,
	}
}

// Key returns the backend key for a resource identifier
func Key(typ, id string) string {
	return "resource:" + typ + ":" + id
}

// Get returns the cached resource for typ and id
func (c *Resources) Get(ctx context.Context, typ, id string) (*resource.Resource, bool) {
	data, err := c.backend.Get(ctx, Key(typ, id))
	if err != nil {
		if !IsMiss(err) {
			c.logger.Warn("cache read failed", zap.String("type", typ), zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var res resource.Resource
	if err := dec.Decode(&res); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("type", typ), zap.String("id", id), zap.Error(err))
		return nil, false
	}
	return &res, true
}

// Put stores res
func (c *Resources) Put(ctx context.Context, res *resource.Resource) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("type", res.Type), zap.String("id", res.ID), zap.Error(err))
		return
	}
	if err := c.backend.Set(ctx, Key(res.Type, res.ID), data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("type", res.Type), zap.String("id", res.ID), zap.Error(err))
	}
}

// Evict removes the given resources
func (c *Resources) Evict(ctx context.Context, ids ...resource.Identifier) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id.Type, id.ID)
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Close closes the backend
func (c *Resources) Close() error {
	return c.backend.Close()
}
