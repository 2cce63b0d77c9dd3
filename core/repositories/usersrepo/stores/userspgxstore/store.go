// Package userspgxstore implements usersrepo.Storer on PostgreSQL.
package userspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/postgresdb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for User.
type Store struct {
	log *logger.Logger
	db  postgresdb.Querier
}

// NewStore creates a new User store running on db.
func NewStore(log *logger.Logger, db postgresdb.Querier) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, username, passwordHash string) (usersrepo.User, error) {
	const query = `
		INSERT INTO users (username, password)
		VALUES (@username, @password)
		RETURNING id, username, password`

	args := pgx.NamedArgs{
		"username": username,
		"password": passwordHash,
	}

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (usersrepo.User, error) {
	const query = `
		SELECT id, username, password
		FROM users
		WHERE id = @id`

	return s.getOne(ctx, query, pgx.NamedArgs{"id": id})
}

func (s *Store) GetByUsername(ctx context.Context, username string) (usersrepo.User, error) {
	const query = `
		SELECT id, username, password
		FROM users
		WHERE username = @username`

	return s.getOne(ctx, query, pgx.NamedArgs{"username": username})
}

func (s *Store) Update(ctx context.Context, id int64, username, passwordHash string) error {
	const query = `
		UPDATE users
		SET username = @username, password = @password
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":       id,
		"username": username,
		"password": passwordHash,
	}

	tag, err := s.db.Exec(ctx, query, args)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return usersrepo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	args := pgx.NamedArgs{"id": id}

	const deleteTasks = `
		DELETE FROM tasks
		WHERE tasklist_id IN (SELECT id FROM tasklists WHERE author_id = @id)`
	if _, err := s.db.Exec(ctx, deleteTasks, args); err != nil {
		return fmt.Errorf("delete tasks: %w", mapError(err))
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM tasklists WHERE author_id = @id`, args); err != nil {
		return fmt.Errorf("delete tasklists: %w", mapError(err))
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = @id`, args)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return usersrepo.ErrNotFound
	}
	return nil
}

func (s *Store) getOne(ctx context.Context, query string, args pgx.NamedArgs) (usersrepo.User, error) {
	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	return user, nil
}

func mapError(err error) error {
	err = postgresdb.HandlePgError(err)
	switch {
	case errors.Is(err, postgresdb.ErrDBNotFound):
		return usersrepo.ErrNotFound
	case errors.Is(err, postgresdb.ErrDBDuplicatedEntry):
		return fmt.Errorf("%w: %w", usersrepo.ErrUsernameTaken, err)
	}
	return err
}
