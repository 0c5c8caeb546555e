package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const (
	defaultMaxConns       = 20
	defaultConnectRetries = 5
	defaultConnectBackoff = 200 * time.Millisecond
	defaultPingTimeout    = 3 * time.Second
)

// Config holds connection settings for the PostgreSQL memo store
type Config struct {
	URL            string
	MaxConns       int32
	ConnectRetries uint64
}

// Open connects a pool, waiting for the server with exponential backoff,
// applies migrations and returns the memo repository on top of it.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Repository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres: database url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}

	retries := uint64(defaultConnectRetries)
	if cfg.ConnectRetries > 0 {
		retries = cfg.ConnectRetries
	}
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(defaultConnectBackoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("postgres not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := ApplyMigrations(ctx, cfg.URL, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres store initialized",
		"max_conns", poolCfg.MaxConns,
		"attempts", attempt,
	)

	repo := NewRepository(pool)
	repo.pool = pool
	return repo, nil
}
