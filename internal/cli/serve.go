package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tephi/internal/api"
	"github.com/matzehuels/tephi/internal/config"
	"github.com/matzehuels/tephi/internal/metrics"
	"github.com/matzehuels/tephi/pkg/buildinfo"
	"github.com/matzehuels/tephi/pkg/cache"
	"github.com/matzehuels/tephi/pkg/pipeline"
	"github.com/matzehuels/tephi/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the chart HTTP API.

Settings come from TEPHI_* environment variables. Set TEPHI_REDIS_ADDR to
share the chart cache between replicas and TEPHI_MONGO_URI to persist stored
charts; otherwise the cache lives in local files and charts in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TEPHI_HTTP_ADDR)")
	return cmd
}

// runServe wires the cache, store and metrics into the API server and runs
// it until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	logger := loggerFromContext(ctx)
	if logger.GetLevel() != LogDebug {
		logger.SetLevel(cfg.LogLevel)
	}

	metrics.New(prometheus.DefaultRegisterer).Install()

	chartCache, err := newServeCache(ctx, cfg)
	if err != nil {
		return err
	}
	// Keys are scoped by build version.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Get().Version+":")
	runner := pipeline.NewRunner(chartCache, keyer, logger)
	runner.TTL = cfg.CacheTTL

	charts, err := newServeStore(ctx, cfg)
	if err != nil {
		_ = runner.Close()
		return err
	}

	srv := api.NewServer(cfg.HTTPAddr, api.Options{
		Runner:  runner,
		Store:   charts,
		Logger:  logger,
		Workers: cfg.Workers,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("http server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := charts.Close(shutdownCtx); err != nil {
		logger.Error("store close error", "error", err)
	}
	if err := runner.Close(); err != nil {
		logger.Error("cache close error", "error", err)
	}

	logger.Info("shutdown complete")
	return serveErr
}

// newServeCache returns a Redis cache when configured, else a file cache.
func newServeCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir := cfg.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newServeStore returns a MongoDB store when configured, else an in-memory one.
func newServeStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	ms, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	return ms, nil
}
