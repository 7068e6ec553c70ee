package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/agrocalc/internal/domain/dose"
	"github.com/yanqian/agrocalc/internal/domain/harvest"
	"github.com/yanqian/agrocalc/internal/domain/history"
	"github.com/yanqian/agrocalc/internal/infra/config"
	"github.com/yanqian/agrocalc/internal/infra/historyrepo"
	"github.com/yanqian/agrocalc/internal/infra/inventory"
	"github.com/yanqian/agrocalc/internal/infra/report/storage"
	"github.com/yanqian/agrocalc/internal/infra/stockcache"
	"github.com/yanqian/agrocalc/internal/infra/weather/openmeteo"
)

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{
		DefaultLimit: cfg.History.DefaultLimit,
		MaxLimit:     cfg.History.MaxLimit,
		ReportPrefix: cfg.Reports.Prefix,
	}
}

func provideDoseConfig(cfg *config.Config) dose.Config {
	return dose.Config{
		Adjustments: dose.Adjustments{
			Low:    cfg.Calculator.RiskAdjustment.Low,
			Medium: cfg.Calculator.RiskAdjustment.Medium,
			High:   cfg.Calculator.RiskAdjustment.High,
		},
	}
}

func provideHarvestRecorder(svc history.Service) harvest.Recorder {
	return svc
}

func provideDoseRecorder(svc history.Service) dose.Recorder {
	return svc
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (history.Repository, func(), error) {
	noop := func() {}
	switch cfg.History.Driver {
	case config.HistoryDriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		repo, err := historyrepo.OpenSQLiteRepository(ctx, cfg.History.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("history sqlite: %w", err)
		}
		logger.Info("history sqlite repository enabled", "path", cfg.History.SQLitePath)
		return repo, func() { _ = repo.Close() }, nil
	case config.HistoryDriverPostgres:
		pool, err := newPostgresPool(cfg.History.Postgres)
		if err != nil {
			logger.Error("history postgres unavailable, using memory repository", "error", err)
			return historyrepo.NewMemoryRepository(0), noop, nil
		}
		logger.Info("history postgres repository enabled")
		return historyrepo.NewPostgresRepository(pool), pool.Close, nil
	default:
		logger.Info("history kept in memory")
		return historyrepo.NewMemoryRepository(0), noop, nil
	}
}

func newPostgresPool(cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

func provideReportStorage(cfg *config.Config, logger *slog.Logger) (history.ObjectStorage, error) {
	r := cfg.Reports
	if strings.TrimSpace(r.Endpoint) == "" {
		logger.Info("report endpoint not set, keeping reports in memory")
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewS3Storage(r.Endpoint, r.AccessKey, r.SecretKey, r.Bucket, r.Region, logger)
}

// provideStockProvider returns nil when no inventory backend is configured;
// application plans then skip the stock check.
func provideStockProvider(cfg *config.Config, logger *slog.Logger) (dose.StockProvider, func()) {
	inv := cfg.Inventory
	if strings.TrimSpace(inv.BaseURL) == "" {
		logger.Info("inventory backend not configured, stock checks disabled")
		return nil, func() {}
	}
	client := inventory.NewClient(inv.BaseURL, inv.APIToken, inv.Timeout)
	store, cleanup := provideStockStore(inv.Cache, logger)
	return stockcache.NewCachedProvider(client, store, inv.Cache.TTL, logger), cleanup
}

func provideStockStore(cfg config.CacheConfig, logger *slog.Logger) (stockcache.Store, func()) {
	if !cfg.Enabled {
		return stockcache.NewMemoryStore(), func() {}
	}
	opt, err := buildValkeyOptions(cfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return stockcache.NewMemoryStore(), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return stockcache.NewMemoryStore(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return stockcache.NewMemoryStore(), func() {}
	}
	logger.Info("stock valkey cache enabled", "addr", cfg.Addr)
	return stockcache.NewValkeyStore(client, cfg.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideWeatherClient(cfg *config.Config) dose.WeatherClient {
	return openmeteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout)
}
