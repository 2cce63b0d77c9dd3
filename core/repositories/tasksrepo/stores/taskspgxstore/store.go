// Package taskspgxstore implements tasksrepo.Storer on PostgreSQL.
package taskspgxstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/infrastructure/postgresdb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for Task.
type Store struct {
	log *logger.Logger
	db  postgresdb.Querier
}

// NewStore creates a new Task store running on db.
func NewStore(log *logger.Logger, db postgresdb.Querier) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

const selectTask = `
	SELECT t.id, t.body, t.completed, t.created, t.tasklist_id, tl.author_id
	FROM tasks t
	JOIN tasklists tl ON t.tasklist_id = tl.id`

func (s *Store) Create(ctx context.Context, tasklistID int64, body string) (tasksrepo.Task, error) {
	const query = `
		INSERT INTO tasks (body, tasklist_id)
		VALUES (@body, @tasklist_id)
		RETURNING id`

	args := pgx.NamedArgs{
		"body":        body,
		"tasklist_id": tasklistID,
	}

	var id int64
	if err := s.db.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return tasksrepo.Task{}, mapError(err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (tasksrepo.Task, error) {
	rows, err := s.db.Query(ctx, selectTask+` WHERE t.id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return tasksrepo.Task{}, mapError(err)
	}
	task, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return tasksrepo.Task{}, mapError(err)
	}
	return task, nil
}

func (s *Store) ListByTasklist(ctx context.Context, tasklistID int64) ([]tasksrepo.Task, error) {
	query := selectTask + `
		WHERE t.tasklist_id = @tasklist_id
		ORDER BY t.created ASC, t.id ASC`

	rows, err := s.db.Query(ctx, query, pgx.NamedArgs{"tasklist_id": tasklistID})
	if err != nil {
		return nil, mapError(err)
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}

func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	const query = `UPDATE tasks SET completed = @completed WHERE id = @id`

	tag, err := s.db.Exec(ctx, query, pgx.NamedArgs{"id": id, "completed": completed})
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	err = postgresdb.HandlePgError(err)
	if errors.Is(err, postgresdb.ErrDBNotFound) {
		return tasksrepo.ErrNotFound
	}
	return err
}
