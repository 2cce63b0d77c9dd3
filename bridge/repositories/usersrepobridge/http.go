// Package usersrepobridge exposes registration, login and self-service
// account management over HTTP.
package usersrepobridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/bridge/scaffolding/faultbridge"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/bridge/scaffolding/views"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/core/scaffolding/faults"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/sessions"
)

// Config holds configuration for the account bridge
type Config struct {
	Log      *logger.Logger
	Sessions *sessions.Manager
}

// AddHttpRoutes registers the account routes on group, normally mounted at /auth.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Sessions)

	group.GET("/register", b.httpRegisterForm)
	group.POST("/register", b.httpRegister)
	group.GET("/login", b.httpLoginForm)
	group.POST("/login", b.httpLogin)
	group.GET("/logout", b.httpLogout)

	group.GET("/{id}/update", b.httpUpdateForm, mid.RequireLogin())
	group.POST("/{id}/update", b.httpUpdate, mid.RequireLogin())
	group.POST("/{id}/delete-user", b.httpDelete, mid.RequireLogin())
}

func (b *bridge) httpRegisterForm(ctx context.Context, r *http.Request) web.Encoder {
	return views.Render(views.Register, views.NewPage(ctx, r, "Register"), http.StatusOK)
}

func (b *bridge) httpRegister(ctx context.Context, r *http.Request) web.Encoder {
	var form CredentialsForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	err := mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		_, err := repos.Users.Register(ctx, form.toNewUser())
		return err
	})
	if err != nil {
		if status, ok := faultbridge.FormStatus(err); ok {
			page := views.NewPage(ctx, r, "Register")
			page.Error = faults.Message(err)
			page.Form = form.values()
			return views.Render(views.Register, page, status)
		}
		return faultbridge.Respond(ctx, b.log, err, "/auth/register")
	}

	return web.NewRedirect(mid.LoginPath)
}

func (b *bridge) httpLoginForm(ctx context.Context, r *http.Request) web.Encoder {
	return views.Render(views.Login, views.NewPage(ctx, r, "Log In"), http.StatusOK)
}

func (b *bridge) httpLogin(ctx context.Context, r *http.Request) web.Encoder {
	var form CredentialsForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	user, err := mid.GetConn(ctx).Repositories().Users.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		if status, ok := faultbridge.FormStatus(err); ok {
			page := views.NewPage(ctx, r, "Log In")
			page.Error = faults.Message(err)
			page.Form = form.values()
			return views.Render(views.Login, page, status)
		}
		return faultbridge.Respond(ctx, b.log, err, mid.LoginPath)
	}

	// A new token with a fresh id replaces whatever cookie the client sent.
	if _, err := b.sessions.Issue(web.GetWriter(ctx), user.ID); err != nil {
		return faultbridge.Respond(ctx, b.log, fmt.Errorf("issue session: %w", err), mid.LoginPath)
	}

	b.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return web.NewRedirect("/")
}

func (b *bridge) httpLogout(ctx context.Context, r *http.Request) web.Encoder {
	b.sessions.Clear(web.GetWriter(ctx))
	return web.NewRedirect("/")
}

func (b *bridge) httpUpdateForm(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	target, err := mid.GetConn(ctx).Repositories().Users.GetByID(ctx, id)
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, "/")
	}
	if target.ID != actor.ID {
		return faultbridge.Redirect(ctx, usersrepo.ErrForbidden, "/")
	}

	page := views.NewPage(ctx, r, "Edit Account")
	page.Form = map[string]string{"username": target.Username}
	page.Data = target
	return views.Render(views.UserUpdate, page, http.StatusOK)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var form CredentialsForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		_, err := repos.Users.Update(ctx, actor.ID, id, form.toUpdateUser())
		return err
	})
	switch {
	case err == nil:
		web.SetFlash(ctx, "Account updated.")
		return web.NewRedirect("/")
	case faults.Is(err, faults.Forbidden):
		return faultbridge.Redirect(ctx, err, "/")
	}

	if status, ok := faultbridge.FormStatus(err); ok {
		page := views.NewPage(ctx, r, "Edit Account")
		page.Error = faults.Message(err)
		page.Form = form.values()
		page.Data = actor
		return views.Render(views.UserUpdate, page, status)
	}
	return faultbridge.Respond(ctx, b.log, err, "/")
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var deleted usersrepo.User
	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		deleted, err = repos.Users.Delete(ctx, actor.ID, id)
		return err
	})
	switch {
	case err == nil:
	case faults.Is(err, faults.Forbidden):
		return faultbridge.Redirect(ctx, err, "/")
	case faults.Is(err, faults.NotFound):
		return faultbridge.Respond(ctx, b.log, err, "/")
	default:
		b.log.ErrorContext(ctx, "delete user", "user_id", id, "error", err)
		web.SetFlash(ctx, fmt.Sprintf("Could not delete the account: %s", faultbridge.UnexpectedMessage))
		return web.NewRedirect(mid.LoginPath)
	}

	b.sessions.Clear(web.GetWriter(ctx))
	web.SetFlash(ctx, fmt.Sprintf("Your account '%s' was deleted.", deleted.Username))
	return web.NewRedirect(mid.LoginPath)
}
