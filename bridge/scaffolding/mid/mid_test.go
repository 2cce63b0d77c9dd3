package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
)

type fakeConn struct {
	released int
}

func (c *fakeConn) Repositories() *repositories.Repositories { return nil }

func (c *fakeConn) WithinTx(ctx context.Context, fn func(*repositories.Repositories) error) error {
	return fn(nil)
}

func (c *fakeConn) Release() { c.released++ }

type fakeGateway struct {
	conn *fakeConn
	err  error
}

func (g *fakeGateway) Acquire(ctx context.Context) (repositories.Conn, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.conn, nil
}

func ok(ctx context.Context, r *http.Request) web.Encoder {
	return web.NewTextResponse("ok")
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	called := false
	h := mid.RequireLogin()(func(ctx context.Context, r *http.Request) web.Encoder {
		called = true
		return web.NewTextResponse("secret")
	})

	resp := h(context.Background(), httptest.NewRequest(http.MethodGet, "/create", nil))

	rd, isRedirect := resp.(*web.Redirect)
	if !isRedirect {
		t.Fatalf("expected a redirect, got %T", resp)
	}
	if rd.URL != mid.LoginPath || rd.HTTPStatus() != http.StatusSeeOther {
		t.Fatalf("unexpected redirect %q %d", rd.URL, rd.HTTPStatus())
	}
	if called {
		t.Fatalf("the handler must not run for anonymous callers")
	}
}

func TestDatabaseReleasesTheHandle(t *testing.T) {
	gw := &fakeGateway{conn: &fakeConn{}}

	var seen repositories.Conn
	h := mid.Database(gw)(func(ctx context.Context, r *http.Request) web.Encoder {
		seen = mid.GetConn(ctx)
		return web.NewTextResponse("ok")
	})
	h(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen != gw.conn {
		t.Fatalf("expected the handler to see the acquired handle")
	}
	if gw.conn.released != 1 {
		t.Fatalf("expected one release, got %d", gw.conn.released)
	}
}

func TestDatabaseReleasesOnPanic(t *testing.T) {
	gw := &fakeGateway{conn: &fakeConn{}}

	h := mid.Panics()(mid.Database(gw)(func(ctx context.Context, r *http.Request) web.Encoder {
		panic("boom")
	}))
	resp := h(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	var appErr *errs.Error
	if err, isErr := resp.(error); !isErr || !errors.As(err, &appErr) || appErr.Code != errs.InternalOnlyLog {
		t.Fatalf("expected the panic to become an internal error, got %#v", resp)
	}
	if gw.conn.released != 1 {
		t.Fatalf("expected the handle to be released after a panic, got %d", gw.conn.released)
	}
}

func TestDatabaseAcquireFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("pool closed")}

	resp := mid.Database(gw)(ok)(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	appErr, isErr := resp.(*errs.Error)
	if !isErr || appErr.Code != errs.InternalOnlyLog {
		t.Fatalf("expected an internal error, got %#v", resp)
	}
}

func TestErrorsMasksInternalDetails(t *testing.T) {
	h := mid.Errors(logger.NewDiscard())(func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Newf(errs.InternalOnlyLog, "connection string leaked")
	})
	resp := h(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	appErr, isErr := resp.(*errs.Error)
	if !isErr {
		t.Fatalf("expected an error response, got %T", resp)
	}
	if appErr.Code != errs.Internal || appErr.Message != "Internal Server Error" {
		t.Fatalf("expected a masked 500, got %v %q", appErr.Code, appErr.Message)
	}
}

func TestErrorsKeepsClientErrors(t *testing.T) {
	h := mid.Errors(logger.NewDiscard())(func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.Newf(errs.NotFound, "Tasklist not found.")
	})
	resp := h(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))

	appErr, isErr := resp.(*errs.Error)
	if !isErr || appErr.Code != errs.NotFound || appErr.HTTPStatus() != http.StatusNotFound {
		t.Fatalf("expected the not found error to pass through, got %#v", resp)
	}
}
