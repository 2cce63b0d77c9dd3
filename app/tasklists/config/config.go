package config

import (
	"github.com/jrazmi/tasklists/core/repositories"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/sessions"
	"github.com/jrazmi/tasklists/sdk/telemetry"
)

// site wide globals.
const (
	AuthRoute = "/auth"
	TaskRoute = "/task"
)

// Tasklists is the overall configuration for the tasklists application.
type Tasklists struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Web       web.HandlerOptions

	// Gateway hands each request its own database handle.
	Gateway  repositories.Gateway
	Sessions *sessions.Manager
}
