package tasklistsrepo

import "time"

// Tasklist is a named collection of tasks owned by its author.
type Tasklist struct {
	ID             int64     `db:"id"`
	Title          string    `db:"title"`
	Body           string    `db:"body"`
	Created        time.Time `db:"created"`
	AuthorID       int64     `db:"author_id"`
	AuthorUsername string    `db:"username"`
}

// OwnedBy reports whether userID authored the tasklist. Every tasklist and
// task permission check goes through here.
func (t Tasklist) OwnedBy(userID int64) bool {
	return t.AuthorID == userID
}

// CreateTasklist contains the fields for a new tasklist.
type CreateTasklist struct {
	Title string
	Body  string
}

// UpdateTasklist contains the replacement title and body of a tasklist.
type UpdateTasklist struct {
	Title string
	Body  string
}
