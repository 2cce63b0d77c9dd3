package tasksrepobridge

import "github.com/jrazmi/tasklists/core/repositories/tasksrepo"

// TaskForm is posted by the new task page.
type TaskForm struct {
	Body string `form:"body"`
}

func (f TaskForm) toCreate() tasksrepo.CreateTask {
	return tasksrepo.CreateTask{Body: f.Body}
}
