// Package sqldb provides database/sql support for the embedded SQLite store
// and for MySQL.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jrazmi/tasklists/sdk/environment"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL engine behind a DB.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

// DB is a database/sql pool that remembers which engine it talks to.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Options represents the exportable database configuration
type Options struct {
	Driver       string        `env:"SQL_DATABASE_DRIVER" default:"sqlite"`
	DSN          string        `env:"SQL_DATABASE_DSN" default:"tasklists.db"`
	MaxOpenConns int           `env:"SQL_DATABASE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns int           `env:"SQL_DATABASE_MAX_IDLE_CONNS" default:"2"`
	MaxLifetime  time.Duration `env:"SQL_DATABASE_MAX_LIFETIME" default:"1h"`
	BusyTimeout  time.Duration `env:"SQL_DATABASE_BUSY_TIMEOUT" default:"5s"`
}

// NewFromEnv opens a pool configured from environment variables.
func NewFromEnv(prefix string) (*DB, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	return Open(cfg)
}

// Open opens and pings a pool for cfg.Driver.
func Open(cfg Options) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	var (
		dialect Dialect
		dsn     string
		err     error
	)
	switch Dialect(strings.ToLower(cfg.Driver)) {
	case SQLite:
		dialect = SQLite
		dsn = sqliteDSN(cfg.DSN, cfg.BusyTimeout)
	case MySQL:
		dialect = MySQL
		dsn, err = mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	out := &DB{DB: db, Dialect: dialect}
	if err := StatusCheck(context.Background(), out); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return out, nil
}

// OpenSQLite opens the SQLite database file at path with default pool settings.
func OpenSQLite(path string) (*DB, error) {
	return Open(Options{
		Driver:       string(SQLite),
		DSN:          path,
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		MaxLifetime:  time.Hour,
		BusyTimeout:  5 * time.Second,
	})
}

// StatusCheck returns nil if it can successfully talk to the database
func StatusCheck(ctx context.Context, db *DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// sqliteDSN turns a file path into a modernc DSN with foreign keys enforced on
// every connection.
func sqliteDSN(path string, busy time.Duration) string {
	if busy <= 0 {
		busy = 5 * time.Second
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")

	base, existing, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}
	if existing != "" {
		return base + "?" + existing + "&" + q.Encode()
	}
	return base + "?" + q.Encode()
}

// mysqlDSN validates dsn and forces time parsing so DATETIME columns scan into
// time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}
