// Package datastores opens whichever database backend the environment
// selects and exposes the operations every backend supports.
package datastores

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/tasklists/infrastructure/postgresdb"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/schema"
	"github.com/jrazmi/tasklists/sdk/environment"
)

// Supported drivers.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
	MySQL    = "mysql"
)

// Options selects the backend.
type Options struct {
	Driver      string `env:"DATABASE_DRIVER" default:"sqlite"`
	AutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" default:"true"`
}

// Datastore holds the one open backend. Exactly one of Postgres and SQL is set.
type Datastore struct {
	Driver   string
	Postgres *pgxpool.Pool
	SQL      *sqldb.DB

	log *slog.Logger
}

// NewFromEnv reads Options under prefix and opens the selected backend with
// that backend's own environment configuration.
func NewFromEnv(prefix string, log *slog.Logger) (*Datastore, Options, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, cfg, fmt.Errorf("parsing datastore config: %w", err)
	}

	ds, err := open(prefix, cfg.Driver, log)
	if err != nil {
		return nil, cfg, err
	}
	return ds, cfg, nil
}

func open(prefix, driver string, log *slog.Logger) (*Datastore, error) {
	switch driver {
	case Postgres:
		opts := []postgresdb.Option{postgresdb.WithLogger(log)}
		pool, err := postgresdb.NewFromEnv(prefix, opts...)
		if err != nil {
			return nil, fmt.Errorf("configuring postgres support: %w", err)
		}
		return &Datastore{Driver: driver, Postgres: pool, log: log}, nil

	case SQLite, MySQL:
		var cfg sqldb.Options
		if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s config: %w", driver, err)
		}
		cfg.Driver = driver
		db, err := sqldb.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("configuring %s support: %w", driver, err)
		}
		return &Datastore{Driver: driver, SQL: db, log: log}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", driver)
}

// FromSQL wraps an already open database/sql pool.
func FromSQL(db *sqldb.DB, log *slog.Logger) *Datastore {
	return &Datastore{Driver: string(db.Dialect), SQL: db, log: log}
}

// Migrate applies pending migrations.
func (d *Datastore) Migrate(ctx context.Context) error {
	if d.Postgres != nil {
		return postgresdb.Migrate(ctx, d.log, d.Postgres)
	}
	return sqldb.Migrate(ctx, d.log, d.SQL)
}

// Reset drops every application table and migrates from scratch.
func (d *Datastore) Reset(ctx context.Context) error {
	if d.Postgres != nil {
		return postgresdb.Reset(ctx, d.log, d.Postgres)
	}
	return sqldb.Reset(ctx, d.log, d.SQL)
}

// Applied lists the migrations recorded in the ledger.
func (d *Datastore) Applied(ctx context.Context) ([]schema.Migration, error) {
	if d.Postgres != nil {
		return postgresdb.Applied(ctx, d.Postgres)
	}
	return sqldb.Applied(ctx, d.SQL)
}

// StatusCheck returns nil if the backend answers.
func (d *Datastore) StatusCheck(ctx context.Context) error {
	if d.Postgres != nil {
		return postgresdb.StatusCheck(ctx, d.Postgres)
	}
	return sqldb.StatusCheck(ctx, d.SQL)
}

// Close releases the pool.
func (d *Datastore) Close() error {
	if d.Postgres != nil {
		d.Postgres.Close()
		return nil
	}
	return d.SQL.Close()
}
