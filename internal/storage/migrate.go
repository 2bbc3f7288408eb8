package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrator(dbPath string) (*migrate.Migrate, *sql.DB, error) {
	// A separate connection keeps migration state out of the main pool.
	migrateDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, nil, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, migrateDB, nil
}

// RunMigrations applies every pending up migration.
func RunMigrations(dbPath string) error {
	m, db, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// MigrateSteps moves n migrations up (n > 0) or down (n < 0).
func MigrateSteps(dbPath string, n int) error {
	m, db, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer m.Close()

	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %d steps: %w", n, err)
	}
	return nil
}

// MigrationVersion reports the applied version and whether it is dirty.
func MigrationVersion(dbPath string) (uint, bool, error) {
	m, db, err := newMigrator(dbPath)
	if err != nil {
		return 0, false, err
	}
	defer db.Close()
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return v, dirty, nil
}
