// Package bridgetest serves bridge routes over an in-memory store, so handler
// paths such as failed writes can be exercised without a database.
package bridgetest

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/passwords"
	"github.com/jrazmi/tasklists/sdk/sessions"
	"golang.org/x/crypto/bcrypt"
)

// Conn is a repositories.Conn over a Store. A transaction snapshots the store
// and restores it when fn fails.
type Conn struct {
	store  *Store
	log    *logger.Logger
	hasher passwords.Bcrypt

	Commits   int
	Rollbacks int
	Released  int
}

func (c *Conn) Repositories() *repositories.Repositories {
	return repositories.New(c.log, c.store.Storers(), c.hasher)
}

func (c *Conn) WithinTx(ctx context.Context, fn func(repos *repositories.Repositories) error) error {
	snap := c.store.snapshot()
	if err := fn(c.Repositories()); err != nil {
		c.store.restore(snap)
		c.Rollbacks++
		return err
	}
	c.Commits++
	return nil
}

func (c *Conn) Release() {
	c.Released++
}

// Harness is a web handler with the request middleware the site installs:
// error mapping, panic recovery, the database handle and the session user.
type Harness struct {
	Log      *logger.Logger
	Store    *Store
	Conn     *Conn
	Hasher   passwords.Bcrypt
	Sessions *sessions.Manager
	Handler  *web.WebHandler
}

// New returns a harness with an empty store. Register routes on h.Handler.
func New(t *testing.T) *Harness {
	t.Helper()

	sm, err := sessions.New(sessions.Config{SigningKey: "bridgetest-signing-key"})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	log := logger.NewDiscard()
	store := NewStore()
	hasher := passwords.NewBcrypt(bcrypt.MinCost)

	h := &Harness{
		Log:      log,
		Store:    store,
		Conn:     &Conn{store: store, log: log, hasher: hasher},
		Hasher:   hasher,
		Sessions: sm,
	}
	h.Handler = web.NewWebHandler(web.HandlerOptions{},
		web.WithLogging(log.Logger),
		web.WithGlobalMiddleware(
			mid.Errors(log),
			mid.Panics(),
			mid.Database(h),
			mid.Authenticate(log, sm),
		),
	)
	return h
}

// Acquire hands out the harness connection on every request.
func (h *Harness) Acquire(ctx context.Context) (repositories.Conn, error) {
	return h.Conn, nil
}

// Get requests path as userID. A zero userID is anonymous.
func (h *Harness) Get(t *testing.T, path string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	return h.serve(t, httptest.NewRequest(http.MethodGet, path, nil), userID)
}

// Post submits form to path as userID. A zero userID is anonymous.
func (h *Harness) Post(t *testing.T, path string, userID int64, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(t, r, userID)
}

func (h *Harness) serve(t *testing.T, r *http.Request, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	if userID != 0 {
		token, _, err := h.Sessions.Sign(userID)
		if err != nil {
			t.Fatalf("sign session: %v", err)
		}
		r.AddCookie(&http.Cookie{Name: h.Sessions.CookieName(), Value: token})
	}

	w := httptest.NewRecorder()
	h.Handler.ServeHTTP(w, r)
	return w
}

// ExpectRedirect fails t unless w is a 303 to location.
func ExpectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

// Flash returns the flash message set on w, if any.
func Flash(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name != "flash" || c.Value == "" {
			continue
		}
		msg, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			return ""
		}
		return string(msg)
	}
	return ""
}

// Cookie returns the cookie named name set on w.
func Cookie(w *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
