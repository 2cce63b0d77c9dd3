// Package tasksrepobridge contains the HTTP routes for the tasks of a
// tasklist.
package tasksrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/bridge/scaffolding/faultbridge"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/bridge/scaffolding/views"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/core/scaffolding/faults"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Config holds configuration for the task bridge
type Config struct {
	Log *logger.Logger
}

// AddHttpRoutes registers the task routes, normally on a group mounted at /task.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log)

	group.GET("/{tasklist_id}/create", b.httpCreateForm, mid.RequireLogin())
	group.POST("/{tasklist_id}/create", b.httpCreate, mid.RequireLogin())
	group.POST("/{id}/delete", b.httpDelete, mid.RequireLogin())
	group.POST("/{id}/toggle-complete", b.httpToggleComplete, mid.RequireLogin())
}

func (b *bridge) httpCreateForm(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	tasklistID, err := web.ParamInt64(r, "tasklist_id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	parent, err := mid.GetConn(ctx).Repositories().Tasklists.Fetch(ctx, tasklistID, actor.ID, true)
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, "/")
	}

	page := views.NewPage(ctx, r, "New Task")
	page.Data = parent
	return views.Render(views.TaskCreate, page, http.StatusOK)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	tasklistID, err := web.ParamInt64(r, "tasklist_id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var form TaskForm
	if err := web.DecodeForm(r, &form); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	conn := mid.GetConn(ctx)
	err = conn.WithinTx(ctx, func(repos *repositories.Repositories) error {
		_, err := repos.Tasks.Create(ctx, tasklistID, actor.ID, form.toCreate())
		return err
	})
	if err != nil {
		status, ok := faultbridge.FormStatus(err)
		if !ok {
			return faultbridge.Respond(ctx, b.log, err, detailURL(tasklistID))
		}

		// The parent passed the author check before validation ran.
		parent, perr := conn.Repositories().Tasklists.Fetch(ctx, tasklistID, actor.ID, true)
		if perr != nil {
			return faultbridge.Respond(ctx, b.log, perr, "/")
		}
		page := views.NewPage(ctx, r, "New Task")
		page.Error = faults.Message(err)
		page.Form = map[string]string{"body": form.Body}
		page.Data = parent
		return views.Render(views.TaskCreate, page, status)
	}

	return web.NewRedirect(detailURL(tasklistID))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var task tasksrepo.Task
	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		task, err = repos.Tasks.Delete(ctx, id, actor.ID)
		return err
	})
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, fallback(task))
	}

	return web.NewRedirect(detailURL(task.TasklistID))
}

func (b *bridge) httpToggleComplete(ctx context.Context, r *http.Request) web.Encoder {
	actor, _ := mid.GetUser(ctx)

	id, err := web.ParamInt64(r, "id")
	if err != nil {
		return errs.New(errs.NotFound, err)
	}

	var task tasksrepo.Task
	err = mid.GetConn(ctx).WithinTx(ctx, func(repos *repositories.Repositories) error {
		var err error
		task, err = repos.Tasks.ToggleComplete(ctx, id, actor.ID)
		return err
	})
	if err != nil {
		return faultbridge.Respond(ctx, b.log, err, fallback(task))
	}

	return web.NewRedirect(detailURL(task.TasklistID))
}

// fallback is where a failed task write sends the user: the parent tasklist
// when the task was resolved, the index otherwise.
func fallback(task tasksrepo.Task) string {
	if task.TasklistID == 0 {
		return "/"
	}
	return detailURL(task.TasklistID)
}
