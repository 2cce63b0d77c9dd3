package sqldb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jrazmi/tasklists/schema"
)

// ErrChecksumMismatch is returned when an applied migration file was edited.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Migrate applies the pending migrations for the pool's dialect. Applied
// files are tracked in schema_migrations with their sha256 checksum.
func Migrate(ctx context.Context, log *slog.Logger, db *DB) error {
	if err := StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	dir := schema.SQLiteDir
	if db.Dialect == MySQL {
		dir = schema.MySQLDir
	}
	return runMigrations(ctx, log, db, schema.MigrationsFS, dir)
}

// Reset drops every application table and the migration ledger, then
// migrates from scratch.
func Reset(ctx context.Context, log *slog.Logger, db *DB) error {
	tables := append(append([]string{}, schema.Tables...), "schema_migrations")
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		log.InfoContext(ctx, "dropped table", "table", table)
	}
	return Migrate(ctx, log, db)
}

const ledger = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		checksum VARCHAR(64) NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// Applied returns the recorded migrations, oldest first.
func Applied(ctx context.Context, db *DB) ([]schema.Migration, error) {
	if _, err := db.ExecContext(ctx, ledger); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	const q = `
		SELECT version, checksum, CAST(applied_at AS CHAR)
		FROM schema_migrations
		ORDER BY version`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	var out []schema.Migration
	for rows.Next() {
		var m schema.Migration
		if err := rows.Scan(&m.Version, &m.Checksum, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func runMigrations(ctx context.Context, log *slog.Logger, db *DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx, ledger); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("list migration files: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		if err := applyMigration(ctx, log, db, fsys, path.Join(dir, file)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, log *slog.Logger, db *DB, fsys fs.FS, file string) error {
	version := path.Base(file)

	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	checksum := fmt.Sprintf("%x", sha256.Sum256(content))

	var existing string
	err = db.QueryRowContext(ctx, "SELECT checksum FROM schema_migrations WHERE version = ?", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("%w: %s (recorded %s, found %s)", ErrChecksumMismatch, version, existing, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read migration ledger: %w", err)
	}

	// MySQL commits DDL implicitly, so a failed file may leave earlier
	// statements applied.
	err = WithinTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute migration: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES (?, ?)", version, checksum); err != nil {
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

// splitStatements breaks a migration file into single statements. A statement
// ends with a semicolon at the end of a line. Comment-only lines are dropped.
func splitStatements(content string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(cur.String()); stmt != ";" {
				stmts = append(stmts, strings.TrimSuffix(stmt, ";"))
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
