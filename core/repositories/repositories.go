// Package repositories binds the domain repositories to a request-scoped
// database handle.
package repositories

import (
	"context"

	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Repositories groups the repositories that share one database handle.
type Repositories struct {
	Users     *usersrepo.Repository
	Tasklists *tasklistsrepo.Repository
	Tasks     *tasksrepo.Repository
}

// Storers groups the stores a Repositories set is built from.
type Storers struct {
	Users     usersrepo.Storer
	Tasklists tasklistsrepo.Storer
	Tasks     tasksrepo.Storer
}

// New wires the repositories over storers. Tasks resolve their parent through
// the tasklists repository so both share one author check.
func New(log *logger.Logger, storers Storers, hasher usersrepo.Hasher) *Repositories {
	tasklists := tasklistsrepo.NewRepository(log, storers.Tasklists)
	return &Repositories{
		Users:     usersrepo.NewRepository(log, storers.Users, hasher),
		Tasklists: tasklists,
		Tasks:     tasksrepo.NewRepository(log, storers.Tasks, tasklists),
	}
}

// Conn is one request's database handle. It must not be shared between
// requests.
type Conn interface {
	// Repositories returns repositories that run directly on the handle.
	Repositories() *Repositories

	// WithinTx runs fn with repositories bound to a new transaction. The
	// transaction commits when fn returns nil and is rolled back otherwise.
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error

	// Release returns the handle to its pool. It is safe to call more than once.
	Release()
}

// Gateway hands out request-scoped database handles.
type Gateway interface {
	Acquire(ctx context.Context) (Conn, error)
}
