package tasklistsrepo

import "github.com/jrazmi/tasklists/core/scaffolding/faults"

var (
	ErrTitleRequired = faults.New(faults.Invalid, "Title is required.")
	ErrNotFound      = faults.New(faults.NotFound, "Tasklist not found.")
	ErrForbidden     = faults.New(faults.Forbidden, "Only the author can change this tasklist.")
)
