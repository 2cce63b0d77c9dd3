package usersrepo

import "github.com/jrazmi/tasklists/core/scaffolding/faults"

var (
	ErrUsernameRequired  = faults.New(faults.Invalid, "Username is required.")
	ErrPasswordRequired  = faults.New(faults.Invalid, "Password is required.")
	ErrUsernameTaken     = faults.New(faults.Conflict, "Username is already registered.")
	ErrIncorrectUsername = faults.New(faults.Unauthenticated, "Incorrect username.")
	ErrIncorrectPassword = faults.New(faults.Unauthenticated, "Incorrect password.")
	ErrNotFound          = faults.New(faults.NotFound, "User not found.")
	ErrForbidden         = faults.New(faults.Forbidden, "You can only change your own account.")
)
