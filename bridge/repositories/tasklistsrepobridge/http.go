// Package tasklistsrepobridge contains the HTTP routes for tasklists.
package tasklistsrepobridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/bridge/scaffolding/faultbridge"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/bridge/scaffolding/views"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/scaffolding/faults"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Config holds configuration for the tasklist bridge
type Config struct {
	Log *logger.Logger
}

// AddHttpRoutes registers the tasklist routes. The group is expected to be
// mounted at the site root.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log)

	group.GET("/{$}", b.httpIndex)
	group.GET("/create", b.httpCreateForm, mid.RequireLogin())
	group.POST("/create", b.httpCreate, mid.RequireLogin())
	group.GET("/{id}/update", b.httpUpdateForm, mid.RequireLogin())
	group.POST("/{id}/update", b.httpUpdate, mid.RequireLogin())
	group.POST("/{id}/delete", b.httpDelete, mid.RequireLogin())
	group.GET("/{id}/{$}", b.httpDetail, mid.RequireLogin())
}

func (b *bridge) httpIndex(ctx context.Context, r *http.Request) web.Encoder {
	lists, err := mid.GetConn(ctx).Repositories().Tasklists.List(ctx)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	page := views.NewPage(ctx, r, "Tasklists")
	page.Data = lists
	return views.Render(views.Index, page, http.StatusOK)
}

func (b *bridge) httpCreateForm(ctx context.Context, r *http.Request) web.Encoder {
	return views.Render(views.TasklistCreate, views.NewPage(ctx, r, "New Tasklist"), http.StatusOK)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	var form TasklistForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	var created tasklistsrepo.Tasklist
	err := mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		created, err = repos.Tasklists.Create(ctx, actor.ID, form.toCreate())
		return err
	})
	if err != nil {
		if status, ok := faultbridge.FormStatus(err); ok {
			page := views.NewPage(ctx, r, "New Tasklist")
			page.Error = faults.Message(err)
			page.Form = form.values()
			return views.Render(views.TasklistCreate, page, status)
		}
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	b.log.InfoContext(ctx, "tasklist created", "tasklist_id", created.ID, "author_id", actor.ID)
	return web.NewRedirect("/")
}

func (b *bridge) httpUpdateForm(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	list, err := mid.GetConn(ctx).Repositories().Tasklists.Fetch(ctx, id, actor.ID, true)
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	page := views.NewPage(ctx, r, fmt.Sprintf("Edit %q", list.Title))
	page.Form = valuesOf(list)
	page.Data = list
	return views.Render(views.TasklistUpdate, page, http.StatusOK)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var form TasklistForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		_, err := repos.Tasklists.Update(ctx, id, actor.ID, form.toUpdate())
		return err
	})
	if err != nil {
		if status, ok := faultbridge.FormStatus(err); ok {
			page := views.NewPage(ctx, r, "Edit Tasklist")
			page.Error = faults.Message(err)
			page.Form = form.values()
			page.Data = tasklistsrepo.Tasklist{ID: id}
			return views.Render(views.TasklistUpdate, page, status)
		}
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	return web.NewRedirect("/")
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		return repos.Tasklists.Delete(ctx, id, actor.ID)
	})
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	b.log.InfoContext(ctx, "tasklist deleted", "tasklist_id", id)
	return web.NewRedirect("/")
}

func (b *bridge) httpDetail(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	list, tasks, err := mid.GetConn(ctx).Repositories().Tasks.Detail(ctx, id, actor.ID)
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	page := views.NewPage(ctx, r, list.Title)
	page.Data = detail{Tasklist: list, Tasks: tasks}
	return views.Render(views.TasklistDetail, page, http.StatusOK)
}
