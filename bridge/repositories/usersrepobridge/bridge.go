package usersrepobridge

import (
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/jrazmi/tasklists/sdk/sessions"
)

// bridge provides HTTP handlers for account operations.
type bridge struct {
	log      *logger.Logger
	sessions *sessions.Manager
}

func newBridge(log *logger.Logger, sm *sessions.Manager) *bridge {
	return &bridge{
		log:      log,
		sessions: sm,
	}
}
