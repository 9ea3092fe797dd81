package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	// database/sql drivers selectable with database.driver
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/config"
	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/resource"
	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/cache"
	"github.com/conduit-lang/causeway/internal/web/handlers"
	"github.com/conduit-lang/causeway/internal/web/middleware"
	"github.com/conduit-lang/causeway/internal/web/ratelimit"
	"github.com/conduit-lang/causeway/internal/web/router"
)

// app holds the process-wide dependencies built from configuration
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sql.DB
	dialect store.Dialect
	repos   *store.Repositories
	backend cache.Backend
	limiter ratelimit.Limiter

	closeOnce sync.Once
	closeErr  error
}

// loadConfig reads configuration and builds the logger
func loadConfig(opts *options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openApp connects the database and the cache backend
func openApp(ctx context.Context, opts *options) (*app, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	db, dialect, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		backend.Close()
		db.Close()
		return nil, err
	}

	logger.Info("connected",
		zap.String("driver", cfg.Database.Driver),
		zap.Stringer("dialect", dialect),
		zap.String("cache", cfg.Cache.Driver))

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
		repos:   store.NewRepositories(db, dialect, logger.Named("store")),
		backend: backend,
		limiter: limiter,
	}, nil
}

// newBackend creates the cache backend named by cache.driver
func newBackend(ctx context.Context, cfg *config.Config) (cache.Backend, error) {
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.Prefix, cfg.Cache.TTL), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Cache.Prefix)
	case config.CacheNone:
		return cache.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// newLimiter creates the rate limiter, or nil when rate limiting is disabled
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	limits := ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
		Prefix: cfg.Cache.Prefix + "ratelimit:",
	}
	if cfg.RateLimit.Driver == config.CacheRedis {
		return ratelimit.NewRedisLimiter(ctx, ratelimit.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, limits)
	}
	return ratelimit.NewTokenBucket(limits, limits.Window)
}

// newAPI builds the route table over repos
func newAPI(cfg *config.Config, repos *store.Repositories, backend cache.Backend, limiter ratelimit.Limiter, logger *zap.Logger) (*router.Router, error) {
	order, err := cfg.Order()
	if err != nil {
		return nil, err
	}

	deps := handlers.Deps{
		Converter: resource.NewConverter(domain.NewRegistry()),
		Cache:     cache.NewResources(backend, cfg.Cache.TTL, logger.Named("cache")),
		Limit:     cfg.Pagination.DefaultLimit,
		Order:     order,
	}

	return router.NewAPI(repos, deps, router.APIConfig{
		BasePath: cfg.Server.BasePath,
		Stack: middleware.StackConfig{
			Timeout:  cfg.Server.RequestTimeout,
			Compress: cfg.Server.Compress,
			Limiter:  limiter,
		},
		Logger: logger.Named("http"),
	})
}

// Close releases the cache backend and the database. Later calls return
// the first result.
func (a *app) Close() error {
	a.closeOnce.Do(func() {
		errs := []error{a.backend.Close(), a.db.Close()}
		if a.limiter != nil {
			errs = append(errs, a.limiter.Close())
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
