package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bissquit/store-rating/internal/config"
	"github.com/bissquit/store-rating/internal/identity"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/memory"
	"github.com/bissquit/store-rating/internal/storage/postgres"
	"github.com/bissquit/store-rating/internal/storage/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNothingToMigrate is returned by MigrateSchema for the memory driver.
var ErrNothingToMigrate = errors.New("memory storage has no schema to migrate")

// OpenBackend creates the storage backend selected by cfg. The returned pool
// is non-nil only for the postgres driver.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, *pgxpool.Pool, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil, nil

	case config.DriverSQLite:
		backend, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return backend, nil, nil

	case config.DriverPostgres:
		if cfg.Migrate {
			if err := postgres.Migrate(cfg.URL); err != nil {
				return nil, nil, err
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		pool, err := postgres.Connect(connectCtx, postgres.Config{
			URL:             cfg.URL,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnectAttempts: cfg.ConnectAttempts,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return postgres.NewBackend(pool), pool, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// MigrateSchema applies pending migrations for the configured SQL backend.
func MigrateSchema(cfg config.StorageConfig) error {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Migrate(cfg.URL)
	case config.DriverSQLite:
		backend, err := sqlite.Open(cfg.Path)
		if err != nil {
			return err
		}
		return backend.Close()
	case config.DriverMemory:
		return ErrNothingToMigrate
	}
	return fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// SeedBackend fills an empty backend with the demo data.
func SeedBackend(ctx context.Context, backend storage.Backend, bcryptCost int) (bool, error) {
	seeded, err := storage.Seed(ctx, backend, identity.NewHasher(bcryptCost))
	if err != nil {
		return false, fmt.Errorf("seed storage: %w", err)
	}
	return seeded, nil
}
