// Package views renders the server side HTML pages.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/web"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	Register       = "register.html"
	Login          = "login.html"
	UserUpdate     = "user_update.html"
	Index          = "index.html"
	TasklistCreate = "tasklist_create.html"
	TasklistUpdate = "tasklist_update.html"
	TasklistDetail = "tasklist_detail.html"
	TaskCreate     = "task_create.html"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{Register, Login, UserUpdate, Index, TasklistCreate, TasklistUpdate, TasklistDetail, TaskCreate} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
	}
}

// Page is the data every template receives.
type Page struct {
	Title string
	User  *usersrepo.User
	Flash string
	Error string
	Form  map[string]string
	Data  any
}

// NewPage starts a page for the current request with its user and pending
// flash message filled in.
func NewPage(ctx context.Context, r *http.Request, title string) Page {
	p := Page{
		Title: title,
		Flash: web.PopFlash(ctx, r),
		Form:  map[string]string{},
	}
	if user, ok := mid.GetUser(ctx); ok {
		p.User = &user
	}
	return p
}

// Render executes the named page. A zero status means 200.
func Render(name string, page Page, status int) web.Encoder {
	tmpl, ok := pages[name]
	if !ok {
		return errs.Newf(errs.InternalOnlyLog, "unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return errs.New(errs.InternalOnlyLog, fmt.Errorf("render %s: %w", name, err))
	}
	return web.NewHTMLResponse(buf.Bytes(), status)
}
