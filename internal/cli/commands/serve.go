package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/profiling"
	"github.com/conduit-lang/causeway/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *options) *cobra.Command {
	var bootstrap bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON:API server",
		Long: `Run the JSON:API server until SIGINT or SIGTERM.

In-flight requests are drained before the cache and the database are closed.`,
		Example: `  # Serve with ./causeway.yaml or defaults
  causeway serve

  # Create missing tables first
  causeway serve --bootstrap

  # Override the listen address
  CAUSEWAY_SERVER_ADDRESS=:9000 causeway serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, bootstrap)
		},
	}

	cmd.Flags().BoolVar(&bootstrap, "bootstrap", false, "create missing tables before serving")

	return cmd
}

func runServe(ctx context.Context, opts *options, bootstrap bool) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if bootstrap {
		if err := store.Bootstrap(ctx, a.db, a.dialect, a.logger.Named("store")); err != nil {
			a.Close()
			return err
		}
	}

	api, err := newAPI(a.cfg, a.repos, a.backend, a.limiter, a.logger)
	if err != nil {
		a.Close()
		return err
	}

	srvCfg := server.DefaultConfig(api)
	srvCfg.Address = a.cfg.Server.Address
	srvCfg.ReadTimeout = a.cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = a.cfg.Server.WriteTimeout
	srvCfg.IdleTimeout = a.cfg.Server.IdleTimeout
	srvCfg.Logger = a.logger
	srvCfg.Database = &server.DatabaseConfig{
		DB:              a.db,
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: a.cfg.Database.ConnMaxIdleTime,
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		a.Close()
		return err
	}

	shutdownCfg := server.DefaultShutdownConfig()
	shutdownCfg.Timeout = a.cfg.Server.ShutdownTimeout
	shutdownCfg.Logger = a.logger

	gs := server.NewGracefulShutdown(srv, shutdownCfg)

	if addr := a.cfg.Server.ProfilingAddress; addr != "" {
		prof, err := startProfiling(addr, a.logger.Named("pprof"))
		if err != nil {
			a.Close()
			return err
		}
		gs.RegisterHook(prof.Shutdown)
	}
	gs.RegisterHook(func(context.Context) error {
		return a.Close()
	})

	a.logger.Info("starting causeway",
		zap.String("version", Version),
		zap.String("address", a.cfg.Server.Address),
		zap.String("base_path", a.cfg.Server.BasePath))

	if err := gs.Run(ctx); err != nil {
		a.Close()
		return err
	}
	return nil
}

// startProfiling serves pprof on its own listener
func startProfiling(addr string, logger *zap.Logger) (*server.Server, error) {
	srv, err := server.New(&server.Config{
		Address:           addr,
		Handler:           profiling.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	if err := srv.Listen(); err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("profiling server failed", zap.Error(err))
		}
	}()
	logger.Warn("profiling endpoints enabled", zap.String("address", srv.Addr()), zap.String("path", profiling.Path))
	return srv, nil
}
