package mid

import (
	"context"
	"net/http"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/web"
)

// Database acquires one database handle for the request and releases it when
// the handler returns, including when it panics.
func Database(gw repositories.Gateway) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			conn, err := gw.Acquire(ctx)
			if err != nil {
				return errs.Newf(errs.InternalOnlyLog, "acquire database handle: %s", err)
			}
			defer conn.Release()

			return next(setConn(ctx, conn), r)
		}
	}
}
