package tasklistsrepobridge

import (
	"github.com/jrazmi/tasklists/core/repositories/tasklistsrepo"
	"github.com/jrazmi/tasklists/core/repositories/tasksrepo"
)

// TasklistForm is posted by the create and update pages.
type TasklistForm struct {
	Title string `form:"title"`
	Body  string `form:"body"`
}

func (f TasklistForm) toCreate() tasklistsrepo.CreateTasklist {
	return tasklistsrepo.CreateTasklist{Title: f.Title, Body: f.Body}
}

func (f TasklistForm) toUpdate() tasklistsrepo.UpdateTasklist {
	return tasklistsrepo.UpdateTasklist{Title: f.Title, Body: f.Body}
}

func (f TasklistForm) values() map[string]string {
	return map[string]string{"title": f.Title, "body": f.Body}
}

func valuesOf(t tasklistsrepo.Tasklist) map[string]string {
	return map[string]string{"title": t.Title, "body": t.Body}
}

// detail is the data of the tasklist page.
type detail struct {
	Tasklist tasklistsrepo.Tasklist
	Tasks    []tasksrepo.Task
}
