package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/resource"
)

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: mr.Addr()}, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("test:k"), "keys are prefixed")

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.True(t, IsMiss(err))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
	assert.NoError(t, c.Delete(ctx))
}

func TestRedisCacheConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr}, "test:")
	assert.Error(t, err)
}

func TestRedisCacheServerError(t *testing.T) {
	c, mr := setupRedis(t)
	mr.SetError("LOADING")

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}

func TestResources(t *testing.T) {
	ctx := context.Background()
	backends := map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend { return NewMemoryCache("test:", 0) },
		"redis": func(t *testing.T) Backend {
			mr := miniredis.RunT(t)
			return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
		},
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			c := NewResources(backend, time.Minute, zap.NewNop())
			defer c.Close()

			res := &resource.Resource{
				ID:         "c1",
				Type:       "causes",
				Attributes: map[string]any{"title": "Parks", "updatedAt": nil},
				Relationships: map[string]*resource.Relationship{
					"group": {},
				},
			}

			_, ok := c.Get(ctx, "causes", "c1")
			assert.False(t, ok)

			c.Put(ctx, res)
			cached, ok := c.Get(ctx, "causes", "c1")
			require.True(t, ok)
			assert.Equal(t, res, cached)

			c.Evict(ctx, resource.Identifier{Type: "causes", ID: "c1"})
			_, ok = c.Get(ctx, "causes", "c1")
			assert.False(t, ok)
		})
	}
}

func TestResourcesKeepIntegerPrecision(t *testing.T) {
	ctx := context.Background()
	c := NewResources(NewMemoryCache("test:", 0), time.Minute, zap.NewNop())
	defer c.Close()

	c.Put(ctx, &resource.Resource{
		ID:         "l1",
		Type:       "activity-logs",
		Attributes: map[string]any{"count": int64(9007199254740993)},
	})

	cached, ok := c.Get(ctx, "activity-logs", "l1")
	require.True(t, ok)
	n, ok := cached.Attributes["count"].(json.Number)
	require.True(t, ok, "got %T", cached.Attributes["count"])
	assert.Equal(t, "9007199254740993", n.String())
}

func TestResourcesCorruptEntry(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryCache("", 0)
	defer backend.Close()

	require.NoError(t, backend.Set(ctx, Key("causes", "c1"), []byte("{not json"), 0))

	c := NewResources(backend, time.Minute, nil)
	_, ok := c.Get(ctx, "causes", "c1")
	assert.False(t, ok)
}
