// Package usersrepo manages accounts: registration, authentication and
// self-service update and deletion.
package usersrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jrazmi/tasklists/sdk/logger"
)

// ========================================
// STORER INTERFACE
// ========================================

// Storer defines the data storage interface for User. Implementations map a
// missing row to ErrNotFound and a unique violation to ErrUsernameTaken.
type Storer interface {
	Create(ctx context.Context, username, passwordHash string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id int64, username, passwordHash string) error
	// Delete removes the user with every tasklist and task they authored.
	Delete(ctx context.Context, id int64) error
}

// Hasher turns plaintext passwords into digests and checks them.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ========================================
// REPOSITORY
// ========================================

// Repository provides access to user storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
	hasher Hasher
}

// NewRepository creates a new User repository
func NewRepository(log *logger.Logger, storer Storer, hasher Hasher) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
		hasher: hasher,
	}
}

// Register creates an account. It does not log the user in.
func (r *Repository) Register(ctx context.Context, in NewUser) (User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return User{}, ErrUsernameRequired
	}
	if in.Password == "" {
		return User{}, ErrPasswordRequired
	}

	digest, err := r.hasher.Hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	user, err := r.storer.Create(ctx, username, digest)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	r.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user whose credentials match.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := r.storer.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrIncorrectUsername
		}
		return User{}, fmt.Errorf("authenticate: %w", err)
	}

	if !r.hasher.Verify(password, user.PasswordHash) {
		return User{}, ErrIncorrectPassword
	}
	return user, nil
}

// GetByID returns the user with id.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	user, err := r.storer.GetByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Update replaces the username and password of account id. Only the account
// owner may update it.
func (r *Repository) Update(ctx context.Context, actorID, id int64, in UpdateUser) (User, error) {
	user, err := r.storer.GetByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	if user.ID != actorID {
		return User{}, ErrForbidden
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return User{}, ErrUsernameRequired
	}

	digest, err := r.hasher.Hash(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	if err := r.storer.Update(ctx, id, username, digest); err != nil {
		return User{}, fmt.Errorf("update user %d: %w", id, err)
	}

	user.Username = username
	user.PasswordHash = digest
	r.log.InfoContext(ctx, "user updated", "user_id", id)
	return user, nil
}

// Delete removes account id together with the tasklists and tasks it
// authored. Only the account owner may delete it.
func (r *Repository) Delete(ctx context.Context, actorID, id int64) (User, error) {
	user, err := r.storer.GetByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("delete user %d: %w", id, err)
	}
	if user.ID != actorID {
		return User{}, ErrForbidden
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return User{}, fmt.Errorf("delete user %d: %w", id, err)
	}

	r.log.InfoContext(ctx, "user deleted", "user_id", id)
	return user, nil
}
