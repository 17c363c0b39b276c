// Package db manages the PostgreSQL connection pool and schema migrations.
// Migrations are embedded in the binary via go:embed, so a freshly deployed
// server applies its own schema on startup without external tooling.
package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens a PostgreSQL pool, applies the pool limits, and verifies the
// connection with a ping.
func Connect(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func newMigrator(pool *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(pool, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

// RunMigrations applies the embedded migrations in the given direction,
// "up" or "down". An already current schema is not an error.
func RunMigrations(pool *sql.DB, direction string) error {
	m, err := newMigrator(pool)
	if err != nil {
		return err
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("invalid migration direction: %s (must be 'up' or 'down')", direction)
	}

	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations %s: %w", direction, err)
	}
	return nil
}

// MigrationVersion reports the current schema version and whether a previous
// migration left it dirty.
func MigrationVersion(pool *sql.DB) (version uint, dirty bool, err error) {
	m, err := newMigrator(pool)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}
