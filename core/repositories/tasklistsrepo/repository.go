// Package tasklistsrepo manages tasklists and decides who may change them.
package tasklistsrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrazmi/tasklists/sdk/logger"
)

// Storer defines the data storage interface for Tasklist. Implementations
// map a missing row to ErrNotFound.
type Storer interface {
	Create(ctx context.Context, authorID int64, title, body string) (Tasklist, error)
	// Get returns the tasklist joined with its author's username.
	Get(ctx context.Context, id int64) (Tasklist, error)
	// List returns every tasklist, newest first.
	List(ctx context.Context) ([]Tasklist, error)
	Update(ctx context.Context, id int64, title, body string) error
	// Delete removes the tasklist and its tasks.
	Delete(ctx context.Context, id int64) error
}

// Repository provides access to tasklist storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
}

// NewRepository creates a new Tasklist repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

// List returns all tasklists with their author's username, newest first.
func (r *Repository) List(ctx context.Context) ([]Tasklist, error) {
	lists, err := r.storer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasklists: %w", err)
	}
	return lists, nil
}

// Create stores a tasklist authored by actorID.
func (r *Repository) Create(ctx context.Context, actorID int64, in CreateTasklist) (Tasklist, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Tasklist{}, ErrTitleRequired
	}

	list, err := r.storer.Create(ctx, actorID, title, in.Body)
	if err != nil {
		return Tasklist{}, fmt.Errorf("create tasklist: %w", err)
	}

	r.log.InfoContext(ctx, "tasklist created", "tasklist_id", list.ID, "author_id", actorID)
	return list, nil
}

// Fetch returns tasklist id. With checkAuthor set it fails with ErrForbidden
// unless actorID is the author.
func (r *Repository) Fetch(ctx context.Context, id, actorID int64, checkAuthor bool) (Tasklist, error) {
	list, err := r.storer.Get(ctx, id)
	if err != nil {
		return Tasklist{}, fmt.Errorf("fetch tasklist %d: %w", id, err)
	}
	if checkAuthor && !list.OwnedBy(actorID) {
		return Tasklist{}, ErrForbidden
	}
	return list, nil
}

// Update replaces the title and body of a tasklist authored by actorID.
func (r *Repository) Update(ctx context.Context, id, actorID int64, in UpdateTasklist) (Tasklist, error) {
	list, err := r.Fetch(ctx, id, actorID, true)
	if err != nil {
		return Tasklist{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Tasklist{}, ErrTitleRequired
	}

	if err := r.storer.Update(ctx, id, title, in.Body); err != nil {
		return Tasklist{}, fmt.Errorf("update tasklist %d: %w", id, err)
	}

	list.Title = title
	list.Body = in.Body
	r.log.InfoContext(ctx, "tasklist updated", "tasklist_id", id)
	return list, nil
}

// Delete removes a tasklist authored by actorID along with its tasks.
func (r *Repository) Delete(ctx context.Context, id, actorID int64) error {
	if _, err := r.Fetch(ctx, id, actorID, true); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tasklist %d: %w", id, err)
	}

	r.log.InfoContext(ctx, "tasklist deleted", "tasklist_id", id)
	return nil
}
