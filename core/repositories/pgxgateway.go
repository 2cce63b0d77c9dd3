package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo/stores/tasklistspgxstore"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo/stores/userspgxstore"
	"github.com/jrazmi/tasklists/infrastructure/postgresdb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// PostgresGateway acquires connections from a pgx pool.
type PostgresGateway struct {
	log    *logger.Logger
	pool   *pgxpool.Pool
	hasher usersrepo.Hasher
}

// NewPostgresGateway creates a Gateway backed by pool.
func NewPostgresGateway(log *logger.Logger, pool *pgxpool.Pool, hasher usersrepo.Hasher) *PostgresGateway {
	return &PostgresGateway{
		log:    log,
		pool:   pool,
		hasher: hasher,
	}
}

func (g *PostgresGateway) Acquire(ctx context.Context) (Conn, error) {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &pgxConn{gw: g, conn: conn}, nil
}

func (g *PostgresGateway) repositories(db postgresdb.Querier) *Repositories {
	return New(g.log, Storers{
		Users:     userspgxstore.NewStore(g.log, db),
		Tasklists: tasklistspgxstore.NewStore(g.log, db),
		Tasks:     taskspgxstore.NewStore(g.log, db),
	}, g.hasher)
}

type pgxConn struct {
	gw   *PostgresGateway
	conn *pgxpool.Conn
	once sync.Once
}

func (c *pgxConn) Repositories() *Repositories {
	return c.gw.repositories(c.conn)
}

func (c *pgxConn) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return postgresdb.WithinTx(ctx, c.conn, func(tx pgx.Tx) error {
		return fn(c.gw.repositories(tx))
	})
}

func (c *pgxConn) Release() {
	c.once.Do(c.conn.Release)
}
