package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrazmi/tasklists/infrastructure/web"
)

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) web.Middleware {
		return func(next web.HandlerFunc) web.HandlerFunc {
			return func(ctx context.Context, r *http.Request) web.Encoder {
				order = append(order, name)
				return next(ctx, r)
			}
		}
	}

	wh := web.NewWebHandler(web.HandlerOptions{}, web.WithGlobalMiddleware(mark("global1"), mark("global2")))
	group := wh.Group("/grp", mark("group"))
	group.GET("/x", func(ctx context.Context, r *http.Request) web.Encoder {
		order = append(order, "handler")
		return web.NewTextResponse("ok")
	}, mark("route"))

	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grp/x", nil))

	want := "global1,global2,group,route,handler"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected order %s, got %s", want, got)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRedirectDefaultsToSeeOther(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{FrameOptions: "DENY"})
	wh.POST("/go", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewRedirect("/there")
	})

	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/go", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/there" {
		t.Fatalf("expected Location /there, got %q", loc)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected default headers to be written")
	}
}

func TestHTMLResponseStatus(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{})
	wh.GET("/page", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewHTMLResponse([]byte("<p>bad</p>"), http.StatusUnprocessableEntity)
	})

	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Remember bool   `form:"remember"`
	Age      int    `form:"age"`
	Ignored  string
}

func TestDecodeForm(t *testing.T) {
	form := url.Values{
		"username": {"alice"},
		"password": {"pw1"},
		"remember": {"on"},
		"age":      {"30"},
		"Ignored":  {"x"},
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var got loginForm
	if err := web.DecodeForm(r, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := loginForm{Username: "alice", Password: "pw1", Remember: true, Age: 30}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDecodeFormRejectsNonPointer(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := web.DecodeForm(r, loginForm{}); err == nil {
		t.Fatalf("expected error for non-pointer")
	}
}

func TestParamInt64(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{})
	var got int64
	var gotErr error
	wh.GET("/item/{id}", func(ctx context.Context, r *http.Request) web.Encoder {
		got, gotErr = web.ParamInt64(r, "id")
		return web.NewTextResponse("ok")
	})

	wh.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/item/42", nil))
	if gotErr != nil || got != 42 {
		t.Fatalf("expected 42, got %d (%v)", got, gotErr)
	}

	wh.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/item/abc", nil))
	if gotErr == nil {
		t.Fatalf("expected error for non-integer id")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{})
	wh.POST("/set", func(ctx context.Context, r *http.Request) web.Encoder {
		web.SetFlash(ctx, "Title is required.")
		return web.NewRedirect("/get")
	})
	wh.GET("/get", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewTextResponse(web.PopFlash(ctx, r))
	})

	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/set", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one flash cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	if rec.Body.String() != "Title is required." {
		t.Fatalf("unexpected flash %q", rec.Body.String())
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected flash cookie to be cleared, got %+v", cleared)
	}
}
