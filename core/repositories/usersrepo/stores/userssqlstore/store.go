// Package userssqlstore implements usersrepo.Storer on SQLite and MySQL.
package userssqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/sqldb"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// Store provides database access for User.
type Store struct {
	log *logger.Logger
	db  sqldb.Querier
}

// NewStore creates a new User store running on db.
func NewStore(log *logger.Logger, db sqldb.Querier) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, username, passwordHash string) (usersrepo.User, error) {
	const query = `INSERT INTO users (username, password) VALUES (?, ?)`

	res, err := s.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return usersrepo.User{}, fmt.Errorf("last insert id: %w", err)
	}

	return usersrepo.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
	}, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (usersrepo.User, error) {
	const query = `SELECT id, username, password FROM users WHERE id = ?`
	return s.getOne(ctx, query, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (usersrepo.User, error) {
	const query = `SELECT id, username, password FROM users WHERE username = ?`
	return s.getOne(ctx, query, username)
}

func (s *Store) Update(ctx context.Context, id int64, username, passwordHash string) error {
	const query = `UPDATE users SET username = ?, password = ? WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, username, passwordHash, id); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	const deleteTasks = `
		DELETE FROM tasks
		WHERE tasklist_id IN (SELECT id FROM tasklists WHERE author_id = ?)`
	if _, err := s.db.ExecContext(ctx, deleteTasks, id); err != nil {
		return fmt.Errorf("delete tasks: %w", mapError(err))
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasklists WHERE author_id = ?`, id); err != nil {
		return fmt.Errorf("delete tasklists: %w", mapError(err))
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return usersrepo.ErrNotFound
	}
	return nil
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (usersrepo.User, error) {
	var user usersrepo.User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		return usersrepo.User{}, mapError(err)
	}
	return user, nil
}

func mapError(err error) error {
	err = sqldb.HandleSQLError(err)
	switch {
	case errors.Is(err, sqldb.ErrDBNotFound):
		return usersrepo.ErrNotFound
	case errors.Is(err, sqldb.ErrDBDuplicatedEntry):
		return fmt.Errorf("%w: %w", usersrepo.ErrUsernameTaken, err)
	}
	return err
}
