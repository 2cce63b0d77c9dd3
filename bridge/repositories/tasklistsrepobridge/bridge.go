package tasklistsrepobridge

import "github.com/jrazmi/tasklists/sdk/logger"

// bridge provides HTTP handlers for tasklist operations.
type bridge struct {
	log *logger.Logger
}

func newBridge(log *logger.Logger) *bridge {
	return &bridge{log: log}
}
