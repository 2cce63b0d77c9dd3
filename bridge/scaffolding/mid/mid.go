// Package mid provides app level middleware support.
package mid

import (
	"context"

	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/web"
)

type ctxKey int

const (
	userKey ctxKey = iota + 1
	connKey
)

func setUser(ctx context.Context, user usersrepo.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the logged in user. ok is false for anonymous requests.
func GetUser(ctx context.Context) (user usersrepo.User, ok bool) {
	user, ok = ctx.Value(userKey).(usersrepo.User)
	return user, ok
}

func setConn(ctx context.Context, conn repositories.Conn) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// GetConn returns the database handle of the request, or nil when the
// Database middleware did not run.
func GetConn(ctx context.Context) repositories.Conn {
	conn, _ := ctx.Value(connKey).(repositories.Conn)
	return conn
}

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}
	return nil
}
