package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"memo-store/database/migrate"

	// Register pgx stdlib driver for database/sql usage in migrations.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations runs the embedded schema migrations using goose.
// It expects a DSN understood by the pgx stdlib driver.
func ApplyMigrations(ctx context.Context, dsn string, logger *slog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres: open db for migrations: %w", err)
	}
	defer db.Close()

	if err := migrate.Up(ctx, db, migrationsFS, "migrations", "postgres", logger); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}
