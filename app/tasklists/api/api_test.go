package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrazmi/tasklists/app/tasklists/api"
	"github.com/jrazmi/tasklists/app/tasklists/config"
	"github.com/jrazmi/tasklists/core/repositories/repotest"
	"github.com/jrazmi/tasklists/sdk/sessions"
	"github.com/jrazmi/tasklists/sdk/telemetry"
)

type app struct {
	db  *repotest.Database
	srv *httptest.Server
}

func newApp(t *testing.T) *app {
	t.Helper()

	db := repotest.New(t)
	sm, err := sessions.New(sessions.Config{SigningKey: "test-signing-key-0123456789"})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	handler := api.New(config.Tasklists{
		Build:     "test",
		Logger:    db.Log,
		Telemetry: telemetry.NewTelemetry(),
		Gateway:   db.Gateway,
		Sessions:  sm,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &app{db: db, srv: srv}
}

// client is one browser: it keeps its own cookies and never follows redirects.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (a *app) client(t *testing.T) *client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &client{
		t:    t,
		base: a.srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	return c.do(req)
}

func (c *client) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()

	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d", status, resp.StatusCode)
	}
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

// signup registers and logs in a new user.
func (a *app) signup(t *testing.T, username, password string) *client {
	t.Helper()

	c := a.client(t)
	resp, _ := c.post("/auth/register", credentials(username, password))
	expectRedirect(t, resp, "/auth/login")

	resp, _ = c.post("/auth/login", credentials(username, password))
	expectRedirect(t, resp, "/")
	return c
}

func (a *app) scalar(t *testing.T, query string, args ...any) any {
	t.Helper()

	var v any
	if err := a.db.DB.QueryRowContext(context.Background(), query, args...).Scan(&v); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return v
}

func TestHello(t *testing.T) {
	a := newApp(t)

	resp, body := a.client(t).get("/hello")
	expectStatus(t, resp, http.StatusOK)
	if body != "Hello, World!" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDebugVarsCountsRequests(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	c.get("/hello")
	resp, body := c.get("/debug/vars")
	expectStatus(t, resp, http.StatusOK)
	for _, name := range []string{`"requests"`, `"errors"`, `"panics"`, `"goroutines"`} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in the expvar output", name)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	resp, _ := c.get("/auth/register")
	expectStatus(t, resp, http.StatusOK)

	resp, _ = c.post("/auth/register", credentials("alice", "pw1"))
	expectRedirect(t, resp, "/auth/login")
	if n := a.db.Count(t, "users"); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}

	// Registering does not log in.
	resp, _ = c.get("/create")
	expectRedirect(t, resp, "/auth/login")

	resp, _ = c.post("/auth/login", credentials("alice", "pw1"))
	expectRedirect(t, resp, "/")

	resp, body := c.get("/")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "alice") || !strings.Contains(body, "Log Out") {
		t.Fatalf("expected the index to show the logged in user")
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "pw1")

	resp, body := a.client(t).post("/auth/register", credentials("alice", "other"))
	expectStatus(t, resp, http.StatusConflict)
	if !strings.Contains(body, "Username is already registered.") {
		t.Fatalf("expected the conflict message on the form")
	}
	if n := a.db.Count(t, "users"); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	resp, body := c.post("/auth/register", credentials("", "pw1"))
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Username is required.") {
		t.Fatalf("expected the username message")
	}

	resp, body = c.post("/auth/register", credentials("alice", ""))
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Password is required.") {
		t.Fatalf("expected the password message")
	}
	if n := a.db.Count(t, "users"); n != 0 {
		t.Fatalf("expected no users, got %d", n)
	}
}

func TestLoginFailures(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "pw1")
	c := a.client(t)

	resp, body := c.post("/auth/login", credentials("alice", "wrong"))
	expectStatus(t, resp, http.StatusUnauthorized)
	if !strings.Contains(body, "Incorrect password.") {
		t.Fatalf("expected the password message")
	}

	resp, body = c.post("/auth/login", credentials("nobody", "pw1"))
	expectStatus(t, resp, http.StatusUnauthorized)
	if !strings.Contains(body, "Incorrect username.") {
		t.Fatalf("expected the username message")
	}

	resp, _ = c.get("/create")
	expectRedirect(t, resp, "/auth/login")
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	c := a.signup(t, "alice", "pw1")

	resp, _ := c.get("/create")
	expectStatus(t, resp, http.StatusOK)

	resp, _ = c.get("/auth/logout")
	expectRedirect(t, resp, "/")

	resp, _ = c.get("/create")
	expectRedirect(t, resp, "/auth/login")
}

func TestForgedSessionIsAnonymous(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "pw1")
	c := a.client(t)

	u, _ := url.Parse(a.srv.URL)
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: "tasklists_session", Value: "not-a-token", Path: "/"}})

	resp, _ := c.get("/create")
	expectRedirect(t, resp, "/auth/login")
}

func TestLoginRequired(t *testing.T) {
	a := newApp(t)
	c := a.client(t)

	for _, path := range []string{"/create", "/1/", "/1/update", "/task/1/create", "/auth/1/update"} {
		resp, _ := c.get(path)
		expectRedirect(t, resp, "/auth/login")
	}
	for _, path := range []string{"/create", "/1/delete", "/task/1/toggle-complete", "/task/1/delete", "/auth/1/delete-user"} {
		resp, _ := c.post(path, url.Values{})
		expectRedirect(t, resp, "/auth/login")
	}
}

func TestTasklistLifecycle(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")

	resp, body := alice.post("/create", url.Values{"title": {""}})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Title is required.") {
		t.Fatalf("expected the title message")
	}
	if n := a.db.Count(t, "tasklists"); n != 0 {
		t.Fatalf("expected no tasklists, got %d", n)
	}

	resp, _ = alice.post("/create", url.Values{"title": {"Groceries"}, "body": {"weekly shop"}})
	expectRedirect(t, resp, "/")

	resp, body = alice.get("/")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Groceries") || !strings.Contains(body, "weekly shop") {
		t.Fatalf("expected the new tasklist on the index")
	}

	resp, body = alice.get("/1/update")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `value="Groceries"`) {
		t.Fatalf("expected the update form to be prefilled")
	}

	resp, _ = alice.post("/1/update", url.Values{"title": {"Hardware"}, "body": {""}})
	expectRedirect(t, resp, "/")
	if got := a.scalar(t, "SELECT title FROM tasklists WHERE id = ?", 1); got != "Hardware" {
		t.Fatalf("expected the title to change, got %v", got)
	}

	resp, _ = alice.post("/1/update", url.Values{"title": {""}})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if got := a.scalar(t, "SELECT title FROM tasklists WHERE id = ?", 1); got != "Hardware" {
		t.Fatalf("a rejected update must not change the title, got %v", got)
	}

	resp, _ = alice.get("/99/")
	expectStatus(t, resp, http.StatusNotFound)
	resp, _ = alice.get("/abc/")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestTasksAndToggle(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")

	resp, _ := alice.post("/create", url.Values{"title": {"Groceries"}})
	expectRedirect(t, resp, "/")

	resp, _ = alice.get("/task/1/create")
	expectStatus(t, resp, http.StatusOK)

	resp, body := alice.post("/task/1/create", url.Values{"body": {""}})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	if !strings.Contains(body, "Task description is required.") {
		t.Fatalf("expected the body message")
	}

	resp, _ = alice.post("/task/1/create", url.Values{"body": {"Buy milk"}})
	expectRedirect(t, resp, "/1/")
	resp, _ = alice.post("/task/1/create", url.Values{"body": {"Buy eggs"}})
	expectRedirect(t, resp, "/1/")

	resp, body = alice.get("/1/")
	expectStatus(t, resp, http.StatusOK)
	milk, eggs := strings.Index(body, "Buy milk"), strings.Index(body, "Buy eggs")
	if milk < 0 || eggs < 0 || milk > eggs {
		t.Fatalf("expected both tasks oldest first")
	}

	resp, _ = alice.post("/task/1/toggle-complete", url.Values{})
	expectRedirect(t, resp, "/1/")
	if got := a.scalar(t, "SELECT COUNT(*) FROM tasks WHERE id = 1 AND completed"); got != int64(1) {
		t.Fatalf("expected the task to be completed")
	}

	resp, _ = alice.post("/task/1/toggle-complete", url.Values{})
	expectRedirect(t, resp, "/1/")
	if got := a.scalar(t, "SELECT COUNT(*) FROM tasks WHERE id = 1 AND completed"); got != int64(0) {
		t.Fatalf("expected a second toggle to restore the task")
	}

	resp, _ = alice.post("/task/2/delete", url.Values{})
	expectRedirect(t, resp, "/1/")
	if n := a.db.Count(t, "tasks"); n != 1 {
		t.Fatalf("expected 1 task left, got %d", n)
	}

	resp, _ = alice.post("/task/99/toggle-complete", url.Values{})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestNonAuthorIsForbidden(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")
	bob := a.signup(t, "bob", "pw2")

	resp, _ := alice.post("/create", url.Values{"title": {"Groceries"}})
	expectRedirect(t, resp, "/")
	resp, _ = alice.post("/task/1/create", url.Values{"body": {"Buy milk"}})
	expectRedirect(t, resp, "/1/")

	// Everyone sees the index, only the author gets a link.
	resp, body := bob.get("/")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Groceries") || strings.Contains(body, `href="/1/"`) {
		t.Fatalf("expected bob to see the title without a link")
	}

	for _, path := range []string{"/1/", "/1/update", "/task/1/create"} {
		resp, _ := bob.get(path)
		expectStatus(t, resp, http.StatusForbidden)
	}

	resp, _ = bob.post("/1/update", url.Values{"title": {"Mine now"}})
	expectStatus(t, resp, http.StatusForbidden)
	resp, _ = bob.post("/1/delete", url.Values{})
	expectStatus(t, resp, http.StatusForbidden)
	resp, _ = bob.post("/task/1/create", url.Values{"body": {"Sneaky"}})
	expectStatus(t, resp, http.StatusForbidden)
	resp, _ = bob.post("/task/1/toggle-complete", url.Values{})
	expectStatus(t, resp, http.StatusForbidden)
	resp, _ = bob.post("/task/1/delete", url.Values{})
	expectStatus(t, resp, http.StatusForbidden)

	if got := a.scalar(t, "SELECT title FROM tasklists WHERE id = ?", 1); got != "Groceries" {
		t.Fatalf("expected the title unchanged, got %v", got)
	}
	if n := a.db.Count(t, "tasks"); n != 1 {
		t.Fatalf("expected 1 task, got %d", n)
	}
	if got := a.scalar(t, "SELECT COUNT(*) FROM tasks WHERE completed"); got != int64(0) {
		t.Fatalf("expected the task to stay open")
	}
}

func TestDeleteTasklistRemovesTasks(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")

	alice.post("/create", url.Values{"title": {"Groceries"}})
	alice.post("/task/1/create", url.Values{"body": {"Buy milk"}})
	alice.post("/task/1/create", url.Values{"body": {"Buy eggs"}})

	resp, _ := alice.post("/1/delete", url.Values{})
	expectRedirect(t, resp, "/")

	if n := a.db.Count(t, "tasklists"); n != 0 {
		t.Fatalf("expected no tasklists, got %d", n)
	}
	if n := a.db.Count(t, "tasks"); n != 0 {
		t.Fatalf("expected no orphan tasks, got %d", n)
	}
}

func TestUpdateAccount(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")
	bob := a.signup(t, "bob", "pw2")

	resp, body := alice.get("/auth/1/update")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `value="alice"`) {
		t.Fatalf("expected the form to be prefilled")
	}

	resp, _ = alice.post("/auth/1/update", credentials("bob", "pw3"))
	expectStatus(t, resp, http.StatusConflict)

	resp, _ = alice.post("/auth/1/update", credentials("alicia", "pw3"))
	expectRedirect(t, resp, "/")
	if got := a.scalar(t, "SELECT username FROM users WHERE id = ?", 1); got != "alicia" {
		t.Fatalf("expected the rename, got %v", got)
	}

	// Bob cannot edit alice.
	resp, _ = bob.post("/auth/1/update", credentials("bobby", "x"))
	expectRedirect(t, resp, "/")
	if got := a.scalar(t, "SELECT username FROM users WHERE id = ?", 1); got != "alicia" {
		t.Fatalf("expected alice unchanged, got %v", got)
	}

	resp, _ = alice.get("/auth/99/update")
	expectStatus(t, resp, http.StatusNotFound)

	relogin := a.client(t)
	resp, _ = relogin.post("/auth/login", credentials("alicia", "pw3"))
	expectRedirect(t, resp, "/")
}

func TestDeleteAccount(t *testing.T) {
	a := newApp(t)
	alice := a.signup(t, "alice", "pw1")
	bob := a.signup(t, "bob", "pw2")

	alice.post("/create", url.Values{"title": {"Groceries"}})
	alice.post("/task/1/create", url.Values{"body": {"Buy milk"}})

	resp, _ := bob.post("/auth/1/delete-user", url.Values{})
	expectRedirect(t, resp, "/")
	if n := a.db.Count(t, "users"); n != 2 {
		t.Fatalf("expected both users, got %d", n)
	}

	resp, _ = alice.post("/auth/1/delete-user", url.Values{})
	expectRedirect(t, resp, "/auth/login")

	if n := a.db.Count(t, "users"); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
	if n := a.db.Count(t, "tasklists") + a.db.Count(t, "tasks"); n != 0 {
		t.Fatalf("expected alice's data to be gone, got %d rows", n)
	}

	resp, body := alice.get("/auth/login")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "was deleted.") {
		t.Fatalf("expected the confirmation flash")
	}

	resp, _ = alice.get("/create")
	expectRedirect(t, resp, "/auth/login")
}
