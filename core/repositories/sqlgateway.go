package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo/stores/tasklistssqlstore"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo/stores/taskssqlstore"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo/stores/userssqlstore"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// SQLGateway acquires connections from a database/sql pool, either SQLite or
// MySQL.
type SQLGateway struct {
	log    *logger.Logger
	db     *sqldb.DB
	hasher usersrepo.Hasher
}

// NewSQLGateway creates a Gateway backed by db.
func NewSQLGateway(log *logger.Logger, db *sqldb.DB, hasher usersrepo.Hasher) *SQLGateway {
	return &SQLGateway{
		log:    log,
		db:     db,
		hasher: hasher,
	}
}

func (g *SQLGateway) Acquire(ctx context.Context) (Conn, error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &sqlConn{gw: g, conn: conn}, nil
}

func (g *SQLGateway) repositories(db sqldb.Querier) *Repositories {
	return New(g.log, Storers{
		Users:     userssqlstore.NewStore(g.log, db),
		Tasklists: tasklistssqlstore.NewStore(g.log, db),
		Tasks:     taskssqlstore.NewStore(g.log, db),
	}, g.hasher)
}

type sqlConn struct {
	gw   *SQLGateway
	conn *sql.Conn
	once sync.Once
}

func (c *sqlConn) Repositories() *Repositories {
	return c.gw.repositories(c.conn)
}

func (c *sqlConn) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return sqldb.WithinTx(ctx, c.conn, func(tx *sql.Tx) error {
		return fn(c.gw.repositories(tx))
	})
}

func (c *sqlConn) Release() {
	c.once.Do(func() {
		if err := c.conn.Close(); err != nil {
			c.gw.log.Warn("release connection", "error", err)
		}
	})
}
