package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/barnslig/mediacccde-graphql/config"
	"github.com/barnslig/mediacccde-graphql/gateway/graphql"
	"github.com/barnslig/mediacccde-graphql/metric"
	"github.com/barnslig/mediacccde-graphql/pkg/cache"
	"github.com/barnslig/mediacccde-graphql/upstream"
)

const shutdownTimeout = 10 * time.Second

// runServe starts the gateway and, when enabled, the metrics endpoint, and
// blocks until SIGINT or SIGTERM.
func runServe(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := setupLogger(out, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	logger.Info("Starting media.ccc.de GraphQL gateway",
		"build_time", BuildTime,
		"config_path", opts.configPath)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	gateway, closeCache, err := buildGateway(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gateway.Start(ctx)
	})

	if cfg.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		g.Go(func() error {
			logger.Info("Metrics endpoint enabled", "address", metricsServer.Address())
			return metricsServer.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return metricsServer.Stop(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("gateway stopped: %w", err)
	}
	logger.Info("Shutdown complete")
	return nil
}

// buildGateway wires the response cache, the upstream sources and the
// gateway. The returned func closes the cache.
func buildGateway(
	ctx context.Context,
	cfg *config.Config,
	registry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*graphql.Gateway, func(), error) {
	store, err := cache.New(ctx, cfg.Cache, logger, cache.WithMetrics(registry, "upstream"))
	if err != nil {
		return nil, nil, fmt.Errorf("create cache: %w", err)
	}
	closeCache := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close cache", "error", err)
		}
	}

	sources, err := upstream.NewSources(cfg.Upstream, upstream.Options{
		Cache:    store,
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		closeCache()
		return nil, nil, fmt.Errorf("create upstream sources: %w", err)
	}

	gateway, err := graphql.NewGateway(cfg.Server, graphql.Dependencies{
		Sources: graphql.Sources{
			Media:   sources.Media,
			Mirrors: sources.Mirrors,
			News:    sources.News,
		},
		Registry: registry,
		Logger:   logger,
		Checkers: sources.Checkers(),
	})
	if err != nil {
		closeCache()
		return nil, nil, fmt.Errorf("create gateway: %w", err)
	}

	return gateway, closeCache, nil
}
