package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/archive"
	"github.com/rsinha/backfolio/internal/config"
	"github.com/rsinha/backfolio/internal/engine"
	"github.com/rsinha/backfolio/internal/metrics"
	"github.com/rsinha/backfolio/internal/provider"
	"github.com/rsinha/backfolio/internal/provider/yahoo"
	"github.com/rsinha/backfolio/internal/store"
)

// app holds the wired application dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	engine   *engine.Engine
	db       *store.Store
	registry *metrics.Registry
	logger   *zap.Logger
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// loadConfig loads the config file when one is given, defaults otherwise.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildApp wires the provider chain and backtest engine from config.
func buildApp(log *zap.Logger) (*app, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Cache.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening cache store: %w", err)
	}

	registry := metrics.NewRegistry()
	registry.SetUniverseSize(len(cfg.Universe))

	client := yahoo.New(yahoo.Config{
		ChartURL:          cfg.Provider.Yahoo.ChartURL,
		SummaryURL:        cfg.Provider.Yahoo.SummaryURL,
		Suffix:            cfg.Provider.Yahoo.Suffix,
		Timeout:           time.Duration(cfg.Provider.Yahoo.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.Provider.Yahoo.RequestsPerMinute,
		RetryAttempts:     cfg.Provider.Yahoo.RetryAttempts,
	})
	cached := provider.NewCached(client, client, db, log).WithObserver(registry)

	eng := engine.New(cfg.Universe, cached, cached, log, engine.Options{
		Workers:         cfg.Engine.Workers,
		ProviderTimeout: time.Duration(cfg.Engine.ProviderTimeoutSeconds) * time.Second,
		FillPolicy:      engine.FillPolicy(cfg.Engine.FillPolicy),
	})

	return &app{cfg: cfg, engine: eng, db: db, registry: registry, logger: log}, nil
}

// buildArchive creates the configured artifact store.
func buildArchive(cfg *config.Config) (archive.Store, error) {
	switch cfg.Export.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Export.S3.Bucket,
			Endpoint:  cfg.Export.S3.Endpoint,
			Region:    cfg.Export.S3.Region,
			AccessKey: cfg.Export.S3.AccessKey,
			SecretKey: cfg.Export.S3.SecretKey,
			Prefix:    cfg.Export.S3.Prefix,
		}), nil
	default:
		return archive.NewLocalFS(cfg.Export.Path)
	}
}
