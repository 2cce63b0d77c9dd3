// Package taskssqlstore implements tasksrepo.Storer on SQLite and MySQL.
package taskssqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for Task.
type Store struct {
	log *logger.Logger
	db  sqldb.Querier
}

// NewStore creates a new Task store running on db.
func NewStore(log *logger.Logger, db sqldb.Querier) *Store {
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
	const query = `INSERT INTO tasks (body, tasklist_id) VALUES (?, ?)`

	res, err := s.db.ExecContext(ctx, query, body, tasklistID)
	if err != nil {
		return tasksrepo.Task{}, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return tasksrepo.Task{}, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (tasksrepo.Task, error) {
	row := s.db.QueryRowContext(ctx, selectTask+` WHERE t.id = ?`, id)

	var task tasksrepo.Task
	if err := scan(row, &task); err != nil {
		return tasksrepo.Task{}, mapError(err)
	}
	return task, nil
}

func (s *Store) ListByTasklist(ctx context.Context, tasklistID int64) ([]tasksrepo.Task, error) {
	query := selectTask + ` WHERE t.tasklist_id = ? ORDER BY t.created ASC, t.id ASC`

	rows, err := s.db.QueryContext(ctx, query, tasklistID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := []tasksrepo.Task{}
	for rows.Next() {
		var task tasksrepo.Task
		if err := scan(rows, &task); err != nil {
			return nil, mapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}

func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, completed, id); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tasksrepo.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner, task *tasksrepo.Task) error {
	return row.Scan(&task.ID, &task.Body, &task.Completed, &task.Created, &task.TasklistID, &task.AuthorID)
}

func mapError(err error) error {
	err = sqldb.HandleSQLError(err)
	if errors.Is(err, sql.ErrNoRows) {
		return tasksrepo.ErrNotFound
	}
	return err
}
