package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pressly/goose/v3"
)

//go:embed schema/postgres/*.sql schema/sqlite/*.sql
var schemaFS embed.FS

// Migrate brings the schema for backend up to date.
func Migrate(db *sql.DB, backend string) error {
	switch backend {
	case BackendPostgres:
		return migratePostgres(db)
	case BackendSQLite:
		return migrateSQLite(db)
	default:
		return fmt.Errorf("unsupported data backend: %q", backend)
	}
}

func migratePostgres(db *sql.DB) error {
	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "schema/postgres"); err != nil {
		return fmt.Errorf("could not apply database migrations with goose: %w", err)
	}
	return nil
}

// migrateSQLite runs on the caller's handle so that in-memory databases
// are migrated in place. The migrate instance is not closed because that
// would close db as well.
func migrateSQLite(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(schemaFS, "schema/sqlite")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, BackendSQLite, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
