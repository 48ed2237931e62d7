package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/trogers1052/portfolio-valuation/internal/config"
	"github.com/trogers1052/portfolio-valuation/internal/database"
	"github.com/trogers1052/portfolio-valuation/internal/fixedincome"
	"github.com/trogers1052/portfolio-valuation/internal/kafka"
	"github.com/trogers1052/portfolio-valuation/internal/logger"
	"github.com/trogers1052/portfolio-valuation/internal/models"
	"github.com/trogers1052/portfolio-valuation/internal/runner"
	"github.com/trogers1052/portfolio-valuation/internal/sources"
	"github.com/trogers1052/portfolio-valuation/internal/store"
	"github.com/trogers1052/portfolio-valuation/internal/valuation"
)

// app holds everything a command needs, built once from the environment.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	runner *runner.Runner

	db       *database.DB
	mirror   *store.RedisMirror
	producer *kafka.Producer
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

func newApp() (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	market := sources.NewYahooMarketData(log)
	router := valuation.NewRouter(
		sources.NewEquitySource(market, cfg.Sources.EquitySuffix),
		sources.NewCryptoSource(cfg.Sources.CryptoBaseURL, cfg.Sources.CryptoQuoteCurrency, cfg.Sources.RequestTimeout),
		sources.NewOptionsSource(cfg.Sources.OptionsBaseURL, cfg.Sources.RequestTimeout),
	)
	rates := fixedincome.NewRateCache(
		sources.NewBenchmarkClient(cfg.Sources.BenchmarkURL, cfg.Sources.RequestTimeout),
		cfg.Sources.ReferenceRateFallback,
		log,
	)
	rates.SetFetchTimeout(cfg.Sources.RequestTimeout)
	engine := valuation.NewEngine(router, rates, valuation.EngineConfig{
		BaseCurrency:    cfg.Valuation.BaseCurrency,
		ForeignCurrency: cfg.Valuation.ForeignCurrency,
		Workers:         cfg.Sources.Workers,
		RequestTimeout:  cfg.Sources.RequestTimeout,
		RequestDelay:    cfg.Sources.RequestDelay,
	}, log)
	fx := valuation.NewFXResolver(
		cfg.Valuation.FXRate,
		cfg.Valuation.FXFallbackRate,
		sources.NewFXSource(market, cfg.Sources.FXTicker),
		cfg.Sources.RequestTimeout,
		log,
	)

	opts := runner.Options{
		Engine:       engine,
		FX:           fx,
		BaseCurrency: cfg.Valuation.BaseCurrency,
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		a.db = db
		opts.Positions = db
		opts.Sink = db
	default:
		opts.Positions = store.NewCSVWallet(cfg.Store.WalletCSVPath, log)
		opts.Sink = store.NewCSVSnapshot(cfg.Store.PricesCSVPath, cfg.Valuation.BaseCurrency)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.mirror = store.NewRedisMirror(client, cfg.Redis.SnapshotKey)
		opts.Mirror = a.mirror
	}

	if cfg.Kafka.Topic != "" {
		a.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		opts.Publisher = a.producer
	}

	a.runner = runner.New(opts, log)
	return a, nil
}

// restore seeds the runner with the last stored snapshot, preferring the
// database over the Redis mirror.
func (a *app) restore(ctx context.Context) {
	var (
		records []models.ValuationRecord
		err     error
	)
	switch {
	case a.db != nil:
		records, err = a.db.ListValuations(ctx)
	case a.mirror != nil:
		records, err = a.mirror.Snapshot(ctx)
	default:
		return
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to restore previous snapshot")
		return
	}
	a.runner.Seed(records)
	a.log.Info().Int("records", len(records)).Msg("Restored previous snapshot")
}

func (a *app) Close() error {
	var errs []error
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	if a.mirror != nil {
		errs = append(errs, a.mirror.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
