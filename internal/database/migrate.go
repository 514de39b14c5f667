package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// MigrationsSource returns the file source URL holding the migrations for
// the configured database type under dir.
func MigrationsSource(dir string, dbType config.DBType) string {
	sub := "postgres"
	if dbType == config.DBTypeMemory {
		sub = "sqlite"
	}
	return "file://" + filepath.ToSlash(filepath.Join(dir, sub))
}

// NewMigrator binds golang-migrate to an already open connection.
// Closing the returned instance closes db as well.
func NewMigrator(db *sqlx.DB, cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	var (
		driver     migratedb.Driver
		driverName string
		err        error
	)

	// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
	if cfg.IsMemory() {
		driverName = "sqlite3"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		driverName = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", driverName, err)
	}

	m, err := migrate.NewWithDatabaseInstance(MigrationsSource(dir, cfg.Type), driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration
func MigrateUp(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	m, err := NewMigrator(db, cfg, dir)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}
