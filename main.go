package main

import (
	"context"
	"log/slog"
	"memo-store/config"
	"memo-store/config/setup"
	"memo-store/metrics"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	if err := config.Load(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	store, err := setup.InitStore(startCtx, cfg, collector, logger)
	if err != nil {
		cancelStart()
		logger.Error("failed to initialize store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	application := setup.InitApp(store, collector, logger)

	if err := setup.SeedMemos(startCtx, application, cfg.SeedMemos); err != nil {
		cancelStart()
		logger.Error("failed to seed memos", "error", err)
		setup.Shutdown(store, logger)
		os.Exit(1)
	}
	cancelStart()

	fiberApp := setup.NewFiberApp(cfg, logger)
	setup.ApplyMiddleware(fiberApp, cfg, collector, logger)
	setup.RegisterRoutes(fiberApp, application)

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env, "driver", cfg.StoreDriver)

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	setup.Shutdown(store, logger)
	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     getLogLevel(cfg.LogLevel),
		AddSource: cfg.Env == "development",
	}

	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
