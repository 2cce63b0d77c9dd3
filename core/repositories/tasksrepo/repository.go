// Package tasksrepo manages the tasks of a tasklist. Permission to change a
// task is always derived from the parent tasklist's author.
package tasksrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Storer defines the data storage interface for Task. Implementations map a
// missing row to ErrNotFound.
type Storer interface {
	Create(ctx context.Context, tasklistID int64, body string) (Task, error)
	// Get returns the task joined with its parent's author.
	Get(ctx context.Context, id int64) (Task, error)
	// ListByTasklist returns the tasks of a tasklist, oldest first.
	ListByTasklist(ctx context.Context, tasklistID int64) ([]Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
}

// ParentFetcher resolves a tasklist with the same author check the tasklist
// handlers use. *tasklistsrepo.Repository satisfies it.
type ParentFetcher interface {
	Fetch(ctx context.Context, id, actorID int64, checkAuthor bool) (tasklistsrepo.Tasklist, error)
}

// Repository provides access to task storage.
type Repository struct {
	log     *logger.Logger
	storer  Storer
	parents ParentFetcher
}

// NewRepository creates a new Task repository
func NewRepository(log *logger.Logger, storer Storer, parents ParentFetcher) *Repository {
	return &Repository{
		log:     log,
		storer:  storer,
		parents: parents,
	}
}

// Fetch returns task id. With checkAuthor set it fails with ErrForbidden
// unless actorID authored the parent tasklist.
func (r *Repository) Fetch(ctx context.Context, id, actorID int64, checkAuthor bool) (Task, error) {
	task, err := r.storer.Get(ctx, id)
	if err != nil {
		return Task{}, fmt.Errorf("fetch task %d: %w", id, err)
	}
	if checkAuthor && !task.MutableBy(actorID) {
		return Task{}, ErrForbidden
	}
	return task, nil
}

// Create adds a task to tasklist tasklistID. The parent is resolved and
// author-checked before anything is validated or written.
func (r *Repository) Create(ctx context.Context, tasklistID, actorID int64, in CreateTask) (Task, error) {
	if _, err := r.parents.Fetch(ctx, tasklistID, actorID, true); err != nil {
		return Task{}, err
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return Task{}, ErrBodyRequired
	}

	task, err := r.storer.Create(ctx, tasklistID, body)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}

	r.log.InfoContext(ctx, "task created", "task_id", task.ID, "tasklist_id", tasklistID)
	return task, nil
}

// Delete removes task id and returns it so callers know the parent.
func (r *Repository) Delete(ctx context.Context, id, actorID int64) (Task, error) {
	task, err := r.Fetch(ctx, id, actorID, true)
	if err != nil {
		return Task{}, err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return task, fmt.Errorf("delete task %d: %w", id, err)
	}

	r.log.InfoContext(ctx, "task deleted", "task_id", id)
	return task, nil
}

// ToggleComplete flips the completed flag of task id. The returned task
// carries the new value. When the task was resolved but the write failed, the
// task is still returned alongside the error.
func (r *Repository) ToggleComplete(ctx context.Context, id, actorID int64) (Task, error) {
	task, err := r.Fetch(ctx, id, actorID, true)
	if err != nil {
		return Task{}, err
	}

	completed := !task.Completed
	if err := r.storer.SetCompleted(ctx, id, completed); err != nil {
		return task, fmt.Errorf("toggle task %d: %w", id, err)
	}

	task.Completed = completed
	return task, nil
}

// Detail returns an author-checked tasklist with its tasks, oldest first.
func (r *Repository) Detail(ctx context.Context, tasklistID, actorID int64) (tasklistsrepo.Tasklist, []Task, error) {
	list, err := r.parents.Fetch(ctx, tasklistID, actorID, true)
	if err != nil {
		return tasklistsrepo.Tasklist{}, nil, err
	}

	tasks, err := r.storer.ListByTasklist(ctx, tasklistID)
	if err != nil {
		return tasklistsrepo.Tasklist{}, nil, fmt.Errorf("list tasks of %d: %w", tasklistID, err)
	}
	return list, tasks, nil
}
