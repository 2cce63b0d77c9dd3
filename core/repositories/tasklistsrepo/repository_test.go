package tasklistsrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/repotest"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
)

func seedUsers(t *testing.T, repos *repositories.Repositories) (alice, bob usersrepo.User) {
	t.Helper()
	ctx := context.Background()

	var err error
	if alice, err = repos.Users.Register(ctx, usersrepo.NewUser{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if bob, err = repos.Users.Register(ctx, usersrepo.NewUser{Username: "bob", Password: "pw2"}); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	return alice, bob
}

func TestCreateRequiresTitle(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, _ := seedUsers(t, repos)

	_, err := repos.Tasklists.Create(context.Background(), alice.ID, tasklistsrepo.CreateTasklist{Title: "  ", Body: "x"})
	if !errors.Is(err, tasklistsrepo.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if n := db.Count(t, "tasklists"); n != 0 {
		t.Fatalf("expected no tasklists, got %d", n)
	}
}

func TestListNewestFirstWithAuthor(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, bob := seedUsers(t, repos)
	ctx := context.Background()

	first, err := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repos.Tasklists.Create(ctx, bob.ID, tasklistsrepo.CreateTasklist{Title: "Chores", Body: "weekly"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lists, err := repos.Tasklists.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 tasklists, got %d", len(lists))
	}
	if lists[0].ID != second.ID || lists[1].ID != first.ID {
		t.Fatalf("expected newest first, got ids %d, %d", lists[0].ID, lists[1].ID)
	}
	if lists[0].AuthorUsername != "bob" || lists[1].AuthorUsername != "alice" {
		t.Fatalf("unexpected authors %q, %q", lists[0].AuthorUsername, lists[1].AuthorUsername)
	}
	if lists[0].Body != "weekly" {
		t.Fatalf("expected body to round trip, got %q", lists[0].Body)
	}
}

func TestFetchChecksAuthor(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, bob := seedUsers(t, repos)
	ctx := context.Background()

	list, _ := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})

	if _, err := repos.Tasklists.Fetch(ctx, list.ID, bob.ID, true); !errors.Is(err, tasklistsrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := repos.Tasklists.Fetch(ctx, list.ID, bob.ID, false); err != nil {
		t.Fatalf("fetch without author check: %v", err)
	}
	if _, err := repos.Tasklists.Fetch(ctx, 9999, alice.ID, true); !errors.Is(err, tasklistsrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNonAuthorCannotChangeTasklist(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, bob := seedUsers(t, repos)
	ctx := context.Background()

	list, _ := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})

	if _, err := repos.Tasklists.Update(ctx, list.ID, bob.ID, tasklistsrepo.UpdateTasklist{Title: "Mine"}); !errors.Is(err, tasklistsrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}
	if err := repos.Tasklists.Delete(ctx, list.ID, bob.ID); !errors.Is(err, tasklistsrepo.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	got, err := repos.Tasklists.Fetch(ctx, list.ID, alice.ID, true)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Title != "Groceries" {
		t.Fatalf("expected title unchanged, got %q", got.Title)
	}
}

func TestUpdate(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, _ := seedUsers(t, repos)
	ctx := context.Background()

	list, _ := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})

	if _, err := repos.Tasklists.Update(ctx, list.ID, alice.ID, tasklistsrepo.UpdateTasklist{}); !errors.Is(err, tasklistsrepo.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	if _, err := repos.Tasklists.Update(ctx, list.ID, alice.ID, tasklistsrepo.UpdateTasklist{Title: "Market", Body: "saturday"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repos.Tasklists.Fetch(ctx, list.ID, alice.ID, true)
	if got.Title != "Market" || got.Body != "saturday" {
		t.Fatalf("unexpected tasklist after update: %+v", got)
	}
}

func TestDeleteLeavesNoOrphans(t *testing.T) {
	db := repotest.New(t)
	repos := db.Conn(t).Repositories()
	alice, _ := seedUsers(t, repos)
	ctx := context.Background()

	list, _ := repos.Tasklists.Create(ctx, alice.ID, tasklistsrepo.CreateTasklist{Title: "Groceries"})
	for _, body := range []string{"Buy milk", "Buy eggs"} {
		if _, err := repos.Tasks.Create(ctx, list.ID, alice.ID, tasksrepo.CreateTask{Body: body}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	if err := repos.Tasklists.Delete(ctx, list.ID, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := db.Count(t, "tasks"); n != 0 {
		t.Fatalf("expected no tasks after delete, got %d", n)
	}
	if _, err := repos.Tasklists.Fetch(ctx, list.ID, alice.ID, true); !errors.Is(err, tasklistsrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
