package tasksrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrazmi/tasklists/core/repositories/repotest"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
)

type fixture struct {
	db    *repotest.Database
	tasks *tasksrepo.Repository
	alice usersrepo.User
	bob   usersrepo.User
	list  tasklistsrepo.Tasklist
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db := repotest.New(t)
	repos := db.Conn(t).Repositories()

	alice, err := repos.Users.Register(ctx, usersrepo.NewUser{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := repos.Users.Register(ctx, usersrepo.NewUser{Username: "bob", Password: "pw2"})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	list, err := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})
	if err != nil {
		t.Fatalf("create tasklist: %v", err)
	}

	return fixture{db: db, tasks: repos.Tasks, alice: alice, bob: bob, list: list}
}

func TestCreateChecksParentBeforeBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An empty body under a foreign tasklist reports the permission error.
	_, err := f.tasks.Create(ctx, f.list.ID, f.bob.ID, tasksrepo.CreateTask{})
	if !errors.Is(err, tasklistsrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = f.tasks.Create(ctx, 9999, f.alice.ID, tasksrepo.CreateTask{Body: "x"})
	if !errors.Is(err, tasklistsrepo.ErrNotFound) {
		t.Fatalf("expected tasklist ErrNotFound, got %v", err)
	}

	_, err = f.tasks.Create(ctx, f.list.ID, f.alice.ID, tasksrepo.CreateTask{Body: " "})
	if !errors.Is(err, tasksrepo.ErrBodyRequired) {
		t.Fatalf("expected ErrBodyRequired, got %v", err)
	}

	if n := f.db.Count(t, "tasks"); n != 0 {
		t.Fatalf("expected no tasks written, got %d", n)
	}
}

func TestCreateAndFetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.list.ID, f.alice.ID, tasksrepo.CreateTask{Body: "Buy milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Completed {
		t.Fatalf("new task should not be completed")
	}
	if task.AuthorID != f.alice.ID || task.TasklistID != f.list.ID {
		t.Fatalf("unexpected task %+v", task)
	}

	if _, err := f.tasks.Fetch(ctx, task.ID, f.bob.ID, true); !errors.Is(err, tasksrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.tasks.Fetch(ctx, task.ID, f.bob.ID, false); err != nil {
		t.Fatalf("fetch without check: %v", err)
	}
	if _, err := f.tasks.Fetch(ctx, 9999, f.alice.ID, true); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleTwiceRestoresValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, _ := f.tasks.Create(ctx, f.list.ID, f.alice.ID, tasksrepo.CreateTask{Body: "Buy milk"})

	got, err := f.tasks.ToggleComplete(ctx, task.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !got.Completed {
		t.Fatalf("expected completed after first toggle")
	}

	got, err = f.tasks.ToggleComplete(ctx, task.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got.Completed {
		t.Fatalf("expected not completed after second toggle")
	}

	stored, _ := f.tasks.Fetch(ctx, task.ID, f.alice.ID, true)
	if stored.Completed != task.Completed {
		t.Fatalf("expected stored value %v, got %v", task.Completed, stored.Completed)
	}
}

func TestMutationsFollowParentAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, _ := f.tasks.Create(ctx, f.list.ID, f.alice.ID, tasksrepo.CreateTask{Body: "Buy milk"})

	if _, err := f.tasks.ToggleComplete(ctx, task.ID, f.bob.ID); !errors.Is(err, tasksrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on toggle, got %v", err)
	}
	if _, err := f.tasks.Delete(ctx, task.ID, f.bob.ID); !errors.Is(err, tasksrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	deleted, err := f.tasks.Delete(ctx, task.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.TasklistID != f.list.ID {
		t.Fatalf("expected parent %d, got %d", f.list.ID, deleted.TasklistID)
	}
	if n := f.db.Count(t, "tasks"); n != 0 {
		t.Fatalf("expected no tasks, got %d", n)
	}
}

func TestDetailOrdersOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for _, body := range []string{"one", "two", "three"} {
		task, err := f.tasks.Create(ctx, f.list.ID, f.alice.ID, tasksrepo.CreateTask{Body: body})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, task.ID)
	}

	list, tasks, err := f.tasks.Detail(ctx, f.list.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if list.Title != "Groceries" {
		t.Fatalf("unexpected tasklist %+v", list)
	}
	if len(tasks) != len(ids) {
		t.Fatalf("expected %d tasks, got %d", len(ids), len(tasks))
	}
	for i, task := range tasks {
		if task.ID != ids[i] {
			t.Fatalf("task %d: expected id %d, got %d", i, ids[i], task.ID)
		}
	}

	if _, _, err := f.tasks.Detail(ctx, f.list.ID, f.bob.ID); !errors.Is(err, tasklistsrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMutableByMatchesOwnedBy(t *testing.T) {
	list := tasklistsrepo.Tasklist{ID: 1, AuthorID: 7}
	task := tasksrepo.Task{ID: 2, TasklistID: list.ID, AuthorID: list.AuthorID}

	for _, user := range []int64{7, 8} {
		if task.MutableBy(user) != list.OwnedBy(user) {
			t.Fatalf("user %d: task and tasklist permissions disagree", user)
		}
	}
}
