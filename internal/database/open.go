package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

type Config struct {
	// Backend is BackendPostgres or BackendSQLite.
	Backend string
	// Driver selects the PostgreSQL driver: DriverPQ or DriverPGX.
	Driver     string
	URL        string
	SQLitePath string
}

// Open connects to the configured backend, applies migrations and returns
// a ready store.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Backend {
	case BackendPostgres:
		db, err = openPostgres(cfg)
	case BackendSQLite:
		db, err = openSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported data backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Backend, err)
	}
	if err := Migrate(db, cfg.Backend); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLStore(db, cfg.Backend)
}

func openPostgres(cfg Config) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPQ
	}
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unsupported postgres driver: %q", driver)
	}
	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// openSQLite keeps a single connection so an in-memory database lives as
// long as the handle and writers never contend for the file lock.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}
