package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	overview "github.com/goliatone/go-overview/components/overview"
	"github.com/goliatone/go-overview/internal/config"
	"github.com/goliatone/go-overview/internal/logger"
	"github.com/goliatone/go-overview/pkg/aggregate"
)

// runtime holds the collaborators shared by every subcommand.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	client   overview.AggregateClient
	manifest *overview.PageManifest
	closers  []func() error
}

func newRuntime(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
		Sentry: logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("overview: init logger: %w", err)
	}
	rt := &runtime{cfg: cfg, log: log}

	manifest := overview.DefaultManifest()
	if cfg.Page.Manifest != "" {
		manifest, err = overview.ReadManifest(cfg.Page.Manifest)
		if err != nil {
			return nil, err
		}
	}
	rt.manifest = manifest

	client, err := rt.buildClient()
	if err != nil {
		return nil, err
	}
	rt.client = client
	return rt, nil
}

func (rt *runtime) buildClient() (overview.AggregateClient, error) {
	cfg := rt.cfg
	if cfg.Upstream.Mock {
		rt.log.Info("using in-memory aggregate fixtures")
		return aggregate.NewMockClient(aggregate.DemoRows()), nil
	}
	httpClient, err := aggregate.NewHTTPClient(aggregate.ClientConfig{
		BaseURL: cfg.Upstream.BaseURL,
		Path:    cfg.Upstream.Path,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: cfg.Upstream.Timeout,
		Retry: aggregate.RetryConfig{
			MaxAttempts: cfg.Upstream.Retry.MaxAttempts,
			WaitTime:    cfg.Upstream.Retry.WaitTime,
			MaxWaitTime: cfg.Upstream.Retry.MaxWaitTime,
		},
		CB: aggregate.CBConfig{
			MaxRequests:  cfg.Upstream.CB.MaxRequests,
			Interval:     cfg.Upstream.CB.Interval,
			Timeout:      cfg.Upstream.CB.Timeout,
			FailureRatio: cfg.Upstream.CB.FailureRatio,
			MinRequests:  cfg.Upstream.CB.MinRequests,
		},
	}, rt.log.Logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return httpClient, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rt.closers = append(rt.closers, rdb.Close)
	rt.log.Info("aggregate cache enabled",
		zap.String("redis", cfg.Redis.Addr()),
		zap.Duration("ttl", cfg.Cache.TTL),
	)
	return aggregate.NewCachedClient(httpClient, rdb, cfg.Cache.TTL, cfg.Cache.KeyPrefix, rt.log.Logger), nil
}

// pageOptions returns the controller options for one page session.
func (rt *runtime) pageOptions(renderer overview.Renderer) overview.Options {
	chartOpts := []overview.ChartRegistryOption{
		overview.WithRenderCache(overview.NewChartCache(rt.cfg.Page.ChartCacheTTL)),
	}
	if rt.cfg.Page.ChartTheme != "" {
		chartOpts = append(chartOpts, overview.WithChartTheme(rt.cfg.Page.ChartTheme))
	}
	if rt.cfg.Page.AssetsHost != "" {
		chartOpts = append(chartOpts, overview.WithAssetsHost(rt.cfg.Page.AssetsHost))
	}
	return overview.Options{
		Client:        rt.client,
		Manifest:      rt.manifest,
		Renderer:      renderer,
		Telemetry:     overview.LogTelemetry{Logger: rt.log.Logger},
		Logger:        rt.log.Logger,
		ChartOptions:  chartOpts,
		OnlyCertified: rt.cfg.Upstream.OnlyCertified,
	}
}

func (rt *runtime) Close() {
	for _, closeFn := range rt.closers {
		_ = closeFn()
	}
	_ = rt.log.Sync()
}

func sweepEvery(interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Minute
	}
	return interval
}
