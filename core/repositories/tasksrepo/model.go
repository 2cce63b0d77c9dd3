package tasksrepo

import "time"

// Task is a single to-do item of a tasklist. AuthorID is read through the
// parent tasklist and never stored on the task.
type Task struct {
	ID         int64     `db:"id"`
	Body       string    `db:"body"`
	Completed  bool      `db:"completed"`
	Created    time.Time `db:"created"`
	TasklistID int64     `db:"tasklist_id"`
	AuthorID   int64     `db:"author_id"`
}

// MutableBy reports whether userID may change the task, which is the case
// exactly when userID authored the parent tasklist.
func (t Task) MutableBy(userID int64) bool {
	return t.AuthorID == userID
}

// CreateTask contains the fields for a new task.
type CreateTask struct {
	Body string
}
