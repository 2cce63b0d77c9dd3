// Package tasklistspgxstore implements tasklistsrepo.Storer on PostgreSQL.
package tasklistspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/infrastructure/postgresdb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for Tasklist.
type Store struct {
	log *logger.Logger
	db  postgresdb.Querier
}

// NewStore creates a new Tasklist store running on db.
func NewStore(log *logger.Logger, db postgresdb.Querier) *Store {
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
	const query = `
		INSERT INTO tasklists (title, body, author_id)
		VALUES (@title, @body, @author_id)
		RETURNING id`

	args := pgx.NamedArgs{
		"title":     title,
		"body":      body,
		"author_id": authorID,
	}

	var id int64
	if err := s.db.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return tasklistsrepo.Tasklist{}, mapError(err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (tasklistsrepo.Tasklist, error) {
	query := selectTasklist + ` WHERE t.id = @id`

	rows, err := s.db.Query(ctx, query, pgx.NamedArgs{"id": id})
	if err != nil {
		return tasklistsrepo.Tasklist{}, mapError(err)
	}
	list, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[tasklistsrepo.Tasklist])
	if err != nil {
		return tasklistsrepo.Tasklist{}, mapError(err)
	}
	return list, nil
}

func (s *Store) List(ctx context.Context) ([]tasklistsrepo.Tasklist, error) {
	query := selectTasklist + ` ORDER BY t.created DESC, t.id DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	lists, err := pgx.CollectRows(rows, pgx.RowToStructByName[tasklistsrepo.Tasklist])
	if err != nil {
		return nil, mapError(err)
	}
	return lists, nil
}

func (s *Store) Update(ctx context.Context, id int64, title, body string) error {
	const query = `
		UPDATE tasklists
		SET title = @title, body = @body
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":    id,
		"title": title,
		"body":  body,
	}

	tag, err := s.db.Exec(ctx, query, args)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return tasklistsrepo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	args := pgx.NamedArgs{"id": id}

	if _, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE tasklist_id = @id`, args); err != nil {
		return fmt.Errorf("delete tasks: %w", mapError(err))
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM tasklists WHERE id = @id`, args)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return tasklistsrepo.ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	err = postgresdb.HandlePgError(err)
	if errors.Is(err, postgresdb.ErrDBNotFound) {
		return tasklistsrepo.ErrNotFound
	}
	return err
}
