package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/causeway/internal/pagination"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Server.Compress)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "_foreign_keys=on")
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "info", cfg.Log.Level)

	order, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, pagination.Descending, order)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `
server:
  address: ":9090"
  base_path: /v1
  compress: false
database:
  driver: postgres
  dsn: postgres://localhost/causeway?sslmode=disable
pagination:
  default_limit: 25
  order: asc
cache:
  driver: redis
  ttl: 5m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "causeway.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "/v1", cfg.Server.BasePath)
	assert.False(t, cfg.Server.Compress)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Pagination.DefaultLimit)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)

	order, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, pagination.Ascending, order)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CAUSEWAY_SERVER_ADDRESS", ":7000")
	t.Setenv("CAUSEWAY_PAGINATION_DEFAULT_LIMIT", "3")
	t.Setenv("CAUSEWAY_CACHE_DRIVER", "none")
	t.Setenv("CAUSEWAY_SERVER_REQUEST_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Pagination.DefaultLimit)
	assert.Equal(t, CacheNone, cfg.Cache.Driver)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{BasePath: "/api"},
			Database:   DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"},
			Pagination: PaginationConfig{DefaultLimit: 10, MaxLimit: 100, Order: "desc"},
			Cache:      CacheConfig{Driver: CacheMemory},
			Log:        LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty base path", mutate: func(c *Config) { c.Server.BasePath = "" }},
		{name: "base path without slash", mutate: func(c *Config) { c.Server.BasePath = "api" }, wantErr: "must start with '/'"},
		{name: "base path with trailing slash", mutate: func(c *Config) { c.Server.BasePath = "/api/" }, wantErr: "must not end with '/'"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database.driver"},
		{name: "empty dsn", mutate: func(c *Config) { c.Database.DSN = "" }, wantErr: "database.dsn"},
		{name: "zero limit", mutate: func(c *Config) { c.Pagination.DefaultLimit = 0 }, wantErr: "default_limit"},
		{name: "limit above max", mutate: func(c *Config) { c.Pagination.DefaultLimit = 101 }, wantErr: "default_limit"},
		{name: "unknown order", mutate: func(c *Config) { c.Pagination.Order = "sideways" }, wantErr: "pagination.order"},
		{name: "unknown cache driver", mutate: func(c *Config) { c.Cache.Driver = "memcached" }, wantErr: "cache.driver"},
		{name: "disabled rate limit is not checked", mutate: func(c *Config) { c.RateLimit.Driver = "etcd" }},
		{name: "unknown rate limit driver", mutate: func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, Driver: "etcd", Limit: 1, Window: time.Second}
		}, wantErr: "ratelimit.driver"},
		{name: "zero rate limit", mutate: func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, Driver: CacheMemory, Window: time.Second}
		}, wantErr: "ratelimit.limit"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "warn"}}

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	cfg.Log.Level = "nope"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
