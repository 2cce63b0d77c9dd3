// Package commands holds the database maintenance tasks run by the tooling CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jrazmi/tasklists/infrastructure/datastores"
)

const timeout = 5 * time.Minute

// Migrate applies pending migrations to ds.
func Migrate(ctx context.Context, log *slog.Logger, ds *datastores.Datastore) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.InfoContext(ctx, "migration started", "driver", ds.Driver, "step", "checking database status")

	if err := ds.StatusCheck(ctx); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	log.InfoContext(ctx, "database status check successful", "step", "running migrations")

	if err := ds.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}

// InitDB drops every table and recreates the schema. All data is lost.
func InitDB(ctx context.Context, log *slog.Logger, ds *datastores.Datastore) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.InfoContext(ctx, "init-db started", "driver", ds.Driver)

	if err := ds.Reset(ctx); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}

	log.InfoContext(ctx, "initialized the database")
	return nil
}
