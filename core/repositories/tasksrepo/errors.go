package tasksrepo

import "github.com/jrazmi/tasklists/core/scaffolding/faults"

var (
	ErrBodyRequired = faults.New(faults.Invalid, "Task description is required.")
	ErrNotFound     = faults.New(faults.NotFound, "Task not found.")
	ErrForbidden    = faults.New(faults.Forbidden, "Only the tasklist author can change this task.")
)
