// Package api assembles the tasklists web handler.
package api

import (
	"context"
	"expvar"
	"net/http"

	"github.com/jrazmi/tasklists/app/tasklists/config"
	"github.com/jrazmi/tasklists/bridge/repositories/tasklistsrepobridge"
	"github.com/jrazmi/tasklists/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/tasklists/bridge/repositories/usersrepobridge"
	"github.com/jrazmi/tasklists/bridge/scaffolding/mid"
	"github.com/jrazmi/tasklists/infrastructure/web"
)

// New returns the web handler with the global middleware installed and every
// route registered.
func New(cfg config.Tasklists, opts ...web.HandlerOption) *web.WebHandler {
	opts = append([]web.HandlerOption{
		web.WithLogging(cfg.Logger.Logger),
		web.WithTelemetry(cfg.Telemetry),
		web.WithGlobalMiddleware(
			mid.Logger(cfg.Logger),                     // Request logging
			mid.Errors(cfg.Logger),                     // Error handling
			mid.Metrics(),                              // Metrics collection
			mid.Panics(),                               // Panic recovery
			mid.Database(cfg.Gateway),                  // Per request database handle
			mid.Authenticate(cfg.Logger, cfg.Sessions), // Session user
		),
	}, opts...)

	app := web.NewWebHandler(cfg.Web, opts...)
	AddHandlers(app, cfg)
	return app
}

// AddHandlers registers the application routes on app.
func AddHandlers(app *web.WebHandler, cfg config.Tasklists) {
	app.GET("/hello", hello)
	app.HandleRaw("GET /debug/vars", expvar.Handler())

	usersrepobridge.AddHttpRoutes(app.Group(config.AuthRoute), usersrepobridge.Config{
		Log:      cfg.Logger,
		Sessions: cfg.Sessions,
	})
	tasklistsrepobridge.AddHttpRoutes(app.Group(""), tasklistsrepobridge.Config{
		Log: cfg.Logger,
	})
	tasksrepobridge.AddHttpRoutes(app.Group(config.TaskRoute), tasksrepobridge.Config{
		Log: cfg.Logger,
	})
}

func hello(ctx context.Context, r *http.Request) web.Encoder {
	return web.NewTextResponse("Hello, World!")
}
