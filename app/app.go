package app

import (
	"log/slog"
	"memo-store/metrics"
	"memo-store/services"
	"memo-store/storage"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Store       storage.Store
	MemoService *services.MemoService
	Metrics     *metrics.Collector // nil when metrics are disabled
	Logger      *slog.Logger
}

// New creates a new App instance with all dependencies
func New(store storage.Store, collector *metrics.Collector, logger *slog.Logger) *App {
	return &App{
		Store:       store,
		MemoService: services.NewMemoService(store, logger),
		Metrics:     collector,
		Logger:      logger,
	}
}
