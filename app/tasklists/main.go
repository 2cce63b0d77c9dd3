package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/tasklists/app/tasklists/api"
	"github.com/jrazmi/tasklists/app/tasklists/config"
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/datastores"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/environment"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/passwords"
	"github.com/jrazmi/tasklists/sdk/sessions"
	"github.com/jrazmi/tasklists/sdk/telemetry"
)

var build = "develop"
var appName = "TASKLISTS"

func main() {
	ctx := context.Background()

	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewFromEnv(appName, logger.WithTraceID(telemetry.TraceID))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	// :*: START DATABASES :*:
	ds, dsCfg, err := datastores.NewFromEnv(appName, log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		ds.Close()
	}()
	log.InfoContext(ctx, "init", "service", ds.Driver)

	if dsCfg.AutoMigrate {
		if err := ds.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}
	// END DATABASES //

	// REPOSITORIES //
	log.InfoContext(ctx, "startup", "status", "initializing repository support")
	hasher, err := passwords.NewFromEnv(appName)
	if err != nil {
		return err
	}
	gateway := repositories.NewGateway(log, ds, hasher)
	// END REPOSITORIES //

	sm, err := sessions.NewFromEnv(appName)
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}

	var handlerCfg web.HandlerOptions
	if err := environment.ParseEnvTags(appName, &handlerCfg); err != nil {
		return fmt.Errorf("webhandler: %w", err)
	}

	siteCfg := config.Tasklists{
		Build:     build,
		Logger:    log,
		Telemetry: telemetry.NewTelemetry(),
		Web:       handlerCfg,
		Gateway:   gateway,
		Sessions:  sm,
	}

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(api.New(siteCfg)),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		if err := server.GracefulShutdown(ctx); err != nil {
			return err
		}
	}

	return nil
}
