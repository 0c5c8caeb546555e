package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"memo-store/database/migrate"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Connection pragmas go in the DSN so every pooled connection gets them,
	// not only the one that happens to run a PRAGMA statement
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "on")
	dsn := "file:" + dbPath + "?" + params.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Migrate applies the embedded schema migrations
func (db *DB) Migrate(ctx context.Context, logger *slog.Logger) error {
	return migrate.Up(ctx, db.DB, migrationsFS, "migrations", "sqlite3", logger)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
