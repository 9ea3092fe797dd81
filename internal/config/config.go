// Package config loads causeway settings from causeway.yaml and CAUSEWAY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. CAUSEWAY_SERVER_ADDRESS
const EnvPrefix = "CAUSEWAY"

// Config represents the causeway configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	BasePath        string        `mapstructure:"base_path"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Compress        bool          `mapstructure:"compress"`

	// ProfilingAddress, when set, serves pprof on a separate listener
	ProfilingAddress string `mapstructure:"profiling_address"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// PaginationConfig controls page size and sequence direction
type PaginationConfig struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	Order        string `mapstructure:"order"`
}

// CacheConfig selects the resource cache backend
type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
}

// RedisConfig holds Redis connection settings for the redis cache driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig limits requests per client address
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Driver  string        `mapstructure:"driver"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.compress", true)
	v.SetDefault("server.profiling_address", "")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:causeway.db?cache=shared&_foreign_keys=on")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)

	v.SetDefault("pagination.default_limit", pagination.DefaultLimit)
	v.SetDefault("pagination.max_limit", 100)
	v.SetDefault("pagination.order", "desc")

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("cache.prefix", "causeway:")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.driver", CacheMemory)
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads configuration. An empty path looks for causeway.yaml in the
// working directory and falls back to defaults when there is none; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("causeway")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if base := c.Server.BasePath; base != "" {
		if !strings.HasPrefix(base, "/") {
			return fmt.Errorf("server.base_path must start with '/', got: %s", base)
		}
		if strings.HasSuffix(base, "/") {
			return fmt.Errorf("server.base_path must not end with '/', got: %s", base)
		}
	}

	if _, err := store.DialectFor(c.Database.Driver); err != nil {
		return fmt.Errorf("database.driver must be one of pgx, postgres, sqlite3, got: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}

	if c.Pagination.MaxLimit < 1 {
		return fmt.Errorf("pagination.max_limit must be positive, got: %d", c.Pagination.MaxLimit)
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("pagination.default_limit must be between 1 and %d, got: %d", c.Pagination.MaxLimit, c.Pagination.DefaultLimit)
	}
	if _, err := c.Order(); err != nil {
		return err
	}

	switch c.Cache.Driver {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.driver must be one of memory, redis, none, got: %s", c.Cache.Driver)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Driver != CacheMemory && c.RateLimit.Driver != CacheRedis {
			return fmt.Errorf("ratelimit.driver must be one of memory, redis, got: %s", c.RateLimit.Driver)
		}
		if c.RateLimit.Limit < 1 || c.RateLimit.Window <= 0 {
			return fmt.Errorf("ratelimit.limit and ratelimit.window must be positive, got: %d per %s", c.RateLimit.Limit, c.RateLimit.Window)
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Order returns the configured pagination order
func (c *Config) Order() (pagination.Order, error) {
	order, err := pagination.ParseOrder(c.Pagination.Order)
	if err != nil {
		return order, fmt.Errorf("pagination.order: %w", err)
	}
	return order, nil
}

// NewLogger builds the zap logger described by the log section
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
