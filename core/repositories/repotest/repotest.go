// Package repotest sets up migrated SQLite databases for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/datastores"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/passwords"
	"golang.org/x/crypto/bcrypt"
)

// Database is a migrated, throwaway SQLite database.
type Database struct {
	DB      *sqldb.DB
	Log     *logger.Logger
	Hasher  passwords.Bcrypt
	Gateway repositories.Gateway
}

// New creates a migrated SQLite database in a temp dir. It is closed when the
// test ends.
func New(t *testing.T) *Database {
	t.Helper()

	db, err := sqldb.OpenSQLite(filepath.Join(t.TempDir(), "tasklists.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewDiscard()
	ds := datastores.FromSQL(db, log.Logger)
	if err := ds.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hasher := passwords.NewBcrypt(bcrypt.MinCost)
	return &Database{
		DB:      db,
		Log:     log,
		Hasher:  hasher,
		Gateway: repositories.NewGateway(log, ds, hasher),
	}
}

// Conn acquires a handle that is released when the test ends.
func (d *Database) Conn(t *testing.T) repositories.Conn {
	t.Helper()

	conn, err := d.Gateway.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(conn.Release)
	return conn
}

// Count returns the number of rows in table.
func (d *Database) Count(t *testing.T, table string) int {
	t.Helper()

	var n int
	if err := d.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
