package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-ledger/internal/config"
	"github.com/vovakirdan/arcade-ledger/internal/ledger"
	"github.com/vovakirdan/arcade-ledger/internal/logging"
	"github.com/vovakirdan/arcade-ledger/internal/registry"
	"github.com/vovakirdan/arcade-ledger/internal/storage"
)

// app is what every subcommand works with.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	ledger  *ledger.Ledger
	catalog *registry.Catalog
	backend storage.Backend
}

// Close releases the storage backend.
func (a *app) Close() {
	if a.backend != nil {
		a.backend.Close() //nolint:errcheck // Best-effort close on exit
	}
}

// loadConfig loads the config file and environment, then applies the
// command line flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = flagBackend
	}
	if flags.Changed("db") {
		cfg.Storage.SQLite.Path = flagDBPath
	}
	if flags.Changed("redis") {
		cfg.Storage.Redis.Addr = flagRedis
	}
	if flags.Changed("key") {
		cfg.Ledger.Key = flagKey
	}
	if flags.Changed("catalog") {
		cfg.Ledger.Catalog = flagCatalog
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	return cfg, cfg.Validate()
}

// newApp loads configuration and opens the ledger for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log.Level, "arcade")

	catalog, err := registry.LoadCatalog(cfg.Ledger.Catalog)
	if err != nil {
		return nil, err
	}

	a := openApp(cmd.Context(), cfg, logger)
	a.catalog = catalog
	return a, nil
}

// openApp opens the configured backend, degrading to memory when it is
// unusable, and builds the ledger on it.
func openApp(ctx context.Context, cfg config.Config, logger *log.Logger) *app {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	primary, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Warn("could not open score storage", "backend", cfg.Storage.Backend, "error", err)
	}
	backend := storage.Select(ctx, primary, cfg.Ledger.Key, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		ledger: ledger.New(backend,
			ledger.WithKey(cfg.Ledger.Key),
			ledger.WithLogger(logger),
		),
		backend: backend,
	}
}

// openBackend opens the backend named in cfg. A nil backend with a nil
// error never happens.
func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	switch storage.Kind(cfg.Storage.Backend) {
	case storage.KindMemory:
		return storage.NewMemory(), nil

	case storage.KindSQLite:
		s, err := storage.OpenSQLite(cfg.Storage.SQLite.Path, storage.SQLiteOptions{
			PollInterval: cfg.Storage.SQLite.PollInterval,
			BusyTimeout:  cfg.Storage.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil

	case storage.KindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		r, err := storage.NewRedis(storage.RedisOptions{Client: client})
		if err != nil {
			client.Close() //nolint:errcheck // Unusable anyway
			return nil, err
		}
		return r, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
