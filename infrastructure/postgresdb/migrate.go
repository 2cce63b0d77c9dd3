package postgresdb

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/tasklists/schema"
)

// ErrChecksumMismatch is returned when an applied migration file was edited.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Migrate runs all pending migrations from schema/pgmigrations/*.sql files.
// Migrations are applied in alphabetical order and tracked in the
// schema_migrations table. This is a forward-only migration system.
func Migrate(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	if err := StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}
	return runMigrations(ctx, log, pool, schema.MigrationsFS, schema.PostgresDir)
}

// Reset drops every application table and the migration ledger, then
// migrates from scratch.
func Reset(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	tables := append(append([]string{}, schema.Tables...), "schema_migrations")
	for _, table := range tables {
		stmt := "DROP TABLE IF EXISTS " + pgx.Identifier{table}.Sanitize() + " CASCADE"
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		log.InfoContext(ctx, "dropped table", "table", table)
	}
	return Migrate(ctx, log, pool)
}

// Applied returns the recorded migrations, oldest first.
func Applied(ctx context.Context, pool *pgxpool.Pool) ([]schema.Migration, error) {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	const q = `
		SELECT version, checksum, applied_at::text AS applied_at
		FROM schema_migrations
		ORDER BY version`
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[schema.Migration])
}

func runMigrations(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, fsys fs.FS, dir string) error {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return fmt.Errorf("list migration files: %w", err)
	}

	for _, file := range files {
		if err := applyMigration(ctx, log, pool, fsys, path.Join(dir, file)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	_, err := pool.Exec(ctx, q)
	return err
}

// migrationFiles returns the sorted .sql file names in dir.
func migrationFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyMigration(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, fsys fs.FS, file string) error {
	version := path.Base(file)

	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	checksum := fmt.Sprintf("%x", sha256.Sum256(content))

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("%w: %s (recorded %s, found %s)", ErrChecksumMismatch, version, existing, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("read migration ledger: %w", err)
	}

	err = WithinTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", version, checksum); err != nil {
			return fmt.Errorf("record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "migration applied", "version", version)
	return nil
}
