package bridgetest

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
)

// Store keeps users, tasklists and tasks in memory and satisfies the three
// storer interfaces. Any storer method can be made to fail with FailOn.
type Store struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]usersrepo.User
	tasklists map[int64]tasklistsrepo.Tasklist
	tasks     map[int64]tasksrepo.Task
	failures  map[string]error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     map[int64]usersrepo.User{},
		tasklists: map[int64]tasklistsrepo.Tasklist{},
		tasks:     map[int64]tasksrepo.Task{},
		failures:  map[string]error{},
	}
}

// FailOn makes method return err. Methods are named "<table>.<Method>", for
// example "tasks.SetCompleted" or "users.Delete".
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// Storers returns storers over s.
func (s *Store) Storers() repositories.Storers {
	return repositories.Storers{
		Users:     usersStore{s},
		Tasklists: tasklistsStore{s},
		Tasks:     tasksStore{s},
	}
}

// AddUser inserts a user directly.
func (s *Store) AddUser(username, passwordHash string) usersrepo.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u := usersrepo.User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.users[u.ID] = u
	return u
}

// AddTasklist inserts a tasklist directly.
func (s *Store) AddTasklist(authorID int64, title string) tasklistsrepo.Tasklist {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l := tasklistsrepo.Tasklist{ID: s.nextID, Title: title, Created: time.Now(), AuthorID: authorID}
	s.tasklists[l.ID] = l
	return s.joinTasklist(l)
}

// AddTask inserts a task directly.
func (s *Store) AddTask(tasklistID int64, body string) tasksrepo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := tasksrepo.Task{ID: s.nextID, Body: body, Created: time.Now(), TasklistID: tasklistID}
	s.tasks[t.ID] = t
	return s.joinTask(t)
}

// User reports the stored user id.
func (s *Store) User(id int64) (usersrepo.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Tasklist reports the stored tasklist id.
func (s *Store) Tasklist(id int64) (tasklistsrepo.Tasklist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.tasklists[id]
	return l, ok
}

// Task reports the stored task id.
func (s *Store) Task(id int64) (tasksrepo.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

type snapshot struct {
	nextID    int64
	users     map[int64]usersrepo.User
	tasklists map[int64]tasklistsrepo.Tasklist
	tasks     map[int64]tasksrepo.Task
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		nextID:    s.nextID,
		users:     maps.Clone(s.users),
		tasklists: maps.Clone(s.tasklists),
		tasks:     maps.Clone(s.tasks),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.users = snap.users
	s.tasklists = snap.tasklists
	s.tasks = snap.tasks
}

// fail must be called with mu held.
func (s *Store) fail(method string) error {
	return s.failures[method]
}

func (s *Store) joinTasklist(l tasklistsrepo.Tasklist) tasklistsrepo.Tasklist {
	l.AuthorUsername = s.users[l.AuthorID].Username
	return l
}

func (s *Store) joinTask(t tasksrepo.Task) tasksrepo.Task {
	t.AuthorID = s.tasklists[t.TasklistID].AuthorID
	return t
}

func (s *Store) deleteTasklist(id int64) {
	delete(s.tasklists, id)
	maps.DeleteFunc(s.tasks, func(_ int64, t tasksrepo.Task) bool {
		return t.TasklistID == id
	})
}

// =============================================================================

type usersStore struct{ s *Store }

func (u usersStore) Create(ctx context.Context, username, passwordHash string) (usersrepo.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.Create"); err != nil {
		return usersrepo.User{}, err
	}

	for _, existing := range u.s.users {
		if existing.Username == username {
			return usersrepo.User{}, usersrepo.ErrUsernameTaken
		}
	}
	u.s.nextID++
	user := usersrepo.User{ID: u.s.nextID, Username: username, PasswordHash: passwordHash}
	u.s.users[user.ID] = user
	return user, nil
}

func (u usersStore) GetByID(ctx context.Context, id int64) (usersrepo.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.GetByID"); err != nil {
		return usersrepo.User{}, err
	}

	user, ok := u.s.users[id]
	if !ok {
		return usersrepo.User{}, usersrepo.ErrNotFound
	}
	return user, nil
}

func (u usersStore) GetByUsername(ctx context.Context, username string) (usersrepo.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.GetByUsername"); err != nil {
		return usersrepo.User{}, err
	}

	for _, user := range u.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return usersrepo.User{}, usersrepo.ErrNotFound
}

func (u usersStore) Update(ctx context.Context, id int64, username, passwordHash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.Update"); err != nil {
		return err
	}

	user, ok := u.s.users[id]
	if !ok {
		return usersrepo.ErrNotFound
	}
	for _, existing := range u.s.users {
		if existing.ID != id && existing.Username == username {
			return usersrepo.ErrUsernameTaken
		}
	}
	user.Username = username
	user.PasswordHash = passwordHash
	u.s.users[id] = user
	return nil
}

func (u usersStore) Delete(ctx context.Context, id int64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.Delete"); err != nil {
		return err
	}

	if _, ok := u.s.users[id]; !ok {
		return usersrepo.ErrNotFound
	}
	for lid, l := range u.s.tasklists {
		if l.AuthorID == id {
			u.s.deleteTasklist(lid)
		}
	}
	delete(u.s.users, id)
	return nil
}

// =============================================================================

type tasklistsStore struct{ s *Store }

func (t tasklistsStore) Create(ctx context.Context, authorID int64, title, body string) (tasklistsrepo.Tasklist, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasklists.Create"); err != nil {
		return tasklistsrepo.Tasklist{}, err
	}

	t.s.nextID++
	l := tasklistsrepo.Tasklist{ID: t.s.nextID, Title: title, Body: body, Created: time.Now(), AuthorID: authorID}
	t.s.tasklists[l.ID] = l
	return t.s.joinTasklist(l), nil
}

func (t tasklistsStore) Get(ctx context.Context, id int64) (tasklistsrepo.Tasklist, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasklists.Get"); err != nil {
		return tasklistsrepo.Tasklist{}, err
	}

	l, ok := t.s.tasklists[id]
	if !ok {
		return tasklistsrepo.Tasklist{}, tasklistsrepo.ErrNotFound
	}
	return t.s.joinTasklist(l), nil
}

func (t tasklistsStore) List(ctx context.Context) ([]tasklistsrepo.Tasklist, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasklists.List"); err != nil {
		return nil, err
	}

	lists := make([]tasklistsrepo.Tasklist, 0, len(t.s.tasklists))
	for _, l := range t.s.tasklists {
		lists = append(lists, t.s.joinTasklist(l))
	}
	slices.SortFunc(lists, func(a, b tasklistsrepo.Tasklist) int {
		return int(b.ID - a.ID)
	})
	return lists, nil
}

func (t tasklistsStore) Update(ctx context.Context, id int64, title, body string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasklists.Update"); err != nil {
		return err
	}

	l, ok := t.s.tasklists[id]
	if !ok {
		return tasklistsrepo.ErrNotFound
	}
	l.Title = title
	l.Body = body
	t.s.tasklists[id] = l
	return nil
}

func (t tasklistsStore) Delete(ctx context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasklists.Delete"); err != nil {
		return err
	}

	if _, ok := t.s.tasklists[id]; !ok {
		return tasklistsrepo.ErrNotFound
	}
	t.s.deleteTasklist(id)
	return nil
}

// =============================================================================

type tasksStore struct{ s *Store }

func (t tasksStore) Create(ctx context.Context, tasklistID int64, body string) (tasksrepo.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasks.Create"); err != nil {
		return tasksrepo.Task{}, err
	}

	t.s.nextID++
	task := tasksrepo.Task{ID: t.s.nextID, Body: body, Created: time.Now(), TasklistID: tasklistID}
	t.s.tasks[task.ID] = task
	return t.s.joinTask(task), nil
}

func (t tasksStore) Get(ctx context.Context, id int64) (tasksrepo.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasks.Get"); err != nil {
		return tasksrepo.Task{}, err
	}

	task, ok := t.s.tasks[id]
	if !ok {
		return tasksrepo.Task{}, tasksrepo.ErrNotFound
	}
	return t.s.joinTask(task), nil
}

func (t tasksStore) ListByTasklist(ctx context.Context, tasklistID int64) ([]tasksrepo.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasks.ListByTasklist"); err != nil {
		return nil, err
	}

	var tasks []tasksrepo.Task
	for _, task := range t.s.tasks {
		if task.TasklistID == tasklistID {
			tasks = append(tasks, t.s.joinTask(task))
		}
	}
	slices.SortFunc(tasks, func(a, b tasksrepo.Task) int {
		return int(a.ID - b.ID)
	})
	return tasks, nil
}

func (t tasksStore) SetCompleted(ctx context.Context, id int64, completed bool) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasks.SetCompleted"); err != nil {
		return err
	}

	task, ok := t.s.tasks[id]
	if !ok {
		return tasksrepo.ErrNotFound
	}
	task.Completed = completed
	t.s.tasks[id] = task
	return nil
}

func (t tasksStore) Delete(ctx context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("tasks.Delete"); err != nil {
		return err
	}

	if _, ok := t.s.tasks[id]; !ok {
		return tasksrepo.ErrNotFound
	}
	delete(t.s.tasks, id)
	return nil
}
