package tasksrepobridge

import (
	"strconv"

	"github.com/jrazmi/tasklists/sdk/logger"
)

// bridge provides HTTP handlers for task operations.
type bridge struct {
	log *logger.Logger
}

func newBridge(log *logger.Logger) *bridge {
	return &bridge{log: log}
}

// detailURL is the page of the tasklist a task belongs to.
func detailURL(tasklistID int64) string {
	return "/" + strconv.FormatInt(tasklistID, 10) + "/"
}
