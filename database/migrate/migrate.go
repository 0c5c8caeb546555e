// Package migrate runs embedded goose migrations with progress logged
// through slog.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its base FS, dialect and logger in package globals
var mu sync.Mutex

// Up applies every pending migration found under dir in fsys
func Up(ctx context.Context, db *sql.DB, fsys fs.FS, dir, dialect string, logger *slog.Logger) error {
	mu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		mu.Unlock()
	}()

	goose.SetBaseFS(fsys)
	goose.SetLogger(NewLogger(logger.With("dialect", dialect)))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Logger adapts slog to goose.Logger
type Logger struct {
	logger *slog.Logger
}

var _ goose.Logger = (*Logger)(nil)

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("component", "migrations")}
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.logger.Info(message(format, v...))
}

// Fatalf keeps goose's contract of not returning
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(message(format, v...))
	os.Exit(1)
}

func message(format string, v ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
