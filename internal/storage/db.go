package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrNotFound is returned when a save slot has never been written.
var ErrNotFound = errors.New("save slot not found")

// Backend stores one opaque JSON document per save slot. Each write replaces
// the whole document.
type Backend interface {
	ReadSlot(ctx context.Context, slot string) ([]byte, error)
	WriteSlot(ctx context.Context, slot string, data []byte) error
	DeleteSlot(ctx context.Context, slot string) error
	Close() error
}

// RunMigrations applies all pending embedded migrations for driver.
// databaseURL uses the migrate scheme: sqlite://path or postgres://...
func RunMigrations(driver, databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("loading %s migrations: %w", driver, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Open connects to the configured backend, running migrations first.
// dsn is a file path for sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		if err := RunMigrations(DriverSQLite, "sqlite://"+dsn); err != nil {
			return nil, err
		}
		return OpenSQLite(dsn)
	case DriverPostgres:
		if err := RunMigrations(DriverPostgres, dsn); err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, dsn)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
