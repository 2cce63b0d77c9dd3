// Package tasklistssqlstore implements tasklistsrepo.Storer on SQLite and MySQL.
package tasklistssqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for Tasklist.
type Store struct {
	log *logger.Logger
	db  sqldb.Querier
}

// NewStore creates a new Tasklist store running on db.
func NewStore(log *logger.Logger, db sqldb.Querier) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

const selectTasklist = `
	SELECT t.id, t.title, t.body, t.created, t.author_id, u.username
	FROM tasklists t
	JOIN users u ON t.author_id = u.id`

func (s *Store) Create(ctx context.Context, authorID int64, title, body string) (tasklistsrepo.Tasklist, error) {
	const query = `INSERT INTO tasklists (title, body, author_id) VALUES (?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query, title, body, authorID)
	if err != nil {
		return tasklistsrepo.Tasklist{}, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return tasklistsrepo.Tasklist{}, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (tasklistsrepo.Tasklist, error) {
	row := s.db.QueryRowContext(ctx, selectTasklist+` WHERE t.id = ?`, id)

	var list tasklistsrepo.Tasklist
	if err := scan(row, &list); err != nil {
		return tasklistsrepo.Tasklist{}, mapError(err)
	}
	return list, nil
}

func (s *Store) List(ctx context.Context) ([]tasklistsrepo.Tasklist, error) {
	rows, err := s.db.QueryContext(ctx, selectTasklist+` ORDER BY t.created DESC, t.id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	lists := []tasklistsrepo.Tasklist{}
	for rows.Next() {
		var list tasklistsrepo.Tasklist
		if err := scan(rows, &list); err != nil {
			return nil, mapError(err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return lists, nil
}

func (s *Store) Update(ctx context.Context, id int64, title, body string) error {
	const query = `UPDATE tasklists SET title = ?, body = ? WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, title, body, id); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE tasklist_id = ?`, id); err != nil {
		return fmt.Errorf("delete tasks: %w", mapError(err))
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasklists WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tasklistsrepo.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner, list *tasklistsrepo.Tasklist) error {
	return row.Scan(&list.ID, &list.Title, &list.Body, &list.Created, &list.AuthorID, &list.AuthorUsername)
}

func mapError(err error) error {
	err = sqldb.HandleSQLError(err)
	if errors.Is(err, sql.ErrNoRows) {
		return tasklistsrepo.ErrNotFound
	}
	return err
}
