package setup

import (
	"context"
	"fmt"
	"log/slog"
	"memo-store/app"
	"memo-store/config"
	"memo-store/database"
	"memo-store/database/postgres"
	"memo-store/metrics"
	"memo-store/storage"
	"memo-store/storage/cache"
	"memo-store/storage/memory"
)

// InitStore opens the configured storage engine and layers the optional
// LRU cache and metrics instrumentation on top of it
func InitStore(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (storage.Store, error) {
	store, err := openEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheSize > 0 {
		cached, err := cache.New(store, cfg.CacheSize)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = cached
		logger.Info("memo cache enabled", "size", cfg.CacheSize)
	}

	if collector != nil {
		store = collector.Instrument(store)
	}

	return store, nil
}

func openEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, logger); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database initialized", "driver", cfg.StoreDriver, "path", cfg.DBPath)
		return database.NewRepository(db), nil

	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, postgres.Config{
			URL:            cfg.DatabaseURL,
			ConnectRetries: cfg.ConnectRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("database initialized", "driver", cfg.StoreDriver)
		return repo, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, memos are lost on exit")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// InitApp initializes the application with all dependencies
func InitApp(store storage.Store, collector *metrics.Collector, logger *slog.Logger) *app.App {
	application := app.New(store, collector, logger)
	logger.Info("application initialized with dependency injection")
	return application
}

// SeedMemos fills an empty store with n sample memos
func SeedMemos(ctx context.Context, application *app.App, n int) error {
	if n <= 0 {
		return nil
	}
	if _, err := application.MemoService.Seed(ctx, n); err != nil {
		return fmt.Errorf("seed memos: %w", err)
	}
	return nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(store storage.Store, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
			return
		}
		logger.Info("store closed")
	}
}
