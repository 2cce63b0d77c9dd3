// Package schema contains embedded migration files.
package schema

import "embed"

// Directories inside MigrationsFS, one per supported database.
const (
	PostgresDir = "pgmigrations"
	SQLiteDir   = "sqlitemigrations"
	MySQLDir    = "mysqlmigrations"
)

// MigrationsFS contains the SQL migration files for every supported database.
//
//go:embed pgmigrations/*.sql sqlitemigrations/*.sql mysqlmigrations/*.sql
var MigrationsFS embed.FS

// Tables lists the application tables, children first, in the order they
// must be dropped.
var Tables = []string{"tasks", "tasklists", "users"}

// Migration is one row of the schema_migrations ledger.
type Migration struct {
	Version   string `db:"version"`
	Checksum  string `db:"checksum"`
	AppliedAt string `db:"applied_at"`
}
