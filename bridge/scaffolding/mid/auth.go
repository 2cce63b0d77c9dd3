package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/sessions"
)

// LoginPath is where anonymous callers of protected routes are sent.
const LoginPath = "/auth/login"

// Authenticate resolves the session cookie to a user and stores it in the
// context. A missing or invalid token, or one naming a user that no longer
// exists, leaves the request anonymous. Stale cookies are cleared.
func Authenticate(log *logger.Logger, sm *sessions.Manager) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			s, err := sm.Resolve(r)
			if err != nil {
				if !errors.Is(err, sessions.ErrNoSession) {
					log.InfoContext(ctx, "rejected session", "error", err)
					clearSession(ctx, sm)
				}
				return next(ctx, r)
			}

			conn := GetConn(ctx)
			if conn == nil {
				return next(ctx, r)
			}

			user, err := conn.Repositories().Users.GetByID(ctx, s.UserID)
			switch {
			case err == nil:
				ctx = setUser(ctx, user)
			case errors.Is(err, usersrepo.ErrNotFound):
				log.InfoContext(ctx, "session for unknown user", "user_id", s.UserID)
				clearSession(ctx, sm)
			default:
				log.ErrorContext(ctx, "load session user", "user_id", s.UserID, "error", err)
			}

			return next(ctx, r)
		}
	}
}

// RequireLogin redirects anonymous callers to the login page instead of
// running the handler.
func RequireLogin() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			if _, ok := GetUser(ctx); !ok {
				return web.NewRedirect(LoginPath)
			}
			return next(ctx, r)
		}
	}
}

func clearSession(ctx context.Context, sm *sessions.Manager) {
	if w := web.GetWriter(ctx); w != nil {
		sm.Clear(w)
	}
}
