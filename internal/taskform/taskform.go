// Package taskform holds the create/edit form state shared by the web and
// terminal dashboards.
package taskform

import (
	"errors"
	"strings"

	"github.com/Ualine055/task-mgt-app/internal/models"
)

// EmptyTitleMessage is shown when a submit is rejected for a blank title.
const EmptyTitleMessage = "Please enter a task title"

var ErrEmptyTitle = errors.New("task title is empty")

const DefaultPriority = models.PriorityMedium

type Form struct {
	Title       string
	Description string
	Priority    models.Priority

	editing *models.Task
}

func New() *Form {
	return &Form{Priority: DefaultPriority}
}

// Edit pre-fills the form from t and switches to edit mode.
func (f *Form) Edit(t models.Task) {
	f.Title = t.Title
	f.Description = t.Description
	f.Priority = t.Priority
	f.editing = &t
}

func (f *Form) Cancel() {
	f.Reset()
}

// Reset empties the fields and leaves edit mode.
func (f *Form) Reset() {
	*f = Form{Priority: DefaultPriority}
}

func (f *Form) Editing() (models.Task, bool) {
	if f.editing == nil {
		return models.Task{}, false
	}
	return *f.editing, true
}

func (f *Form) Heading() string {
	if f.editing != nil {
		return "Edit Task"
	}
	return "Create New Task"
}

func (f *Form) SubmitLabel() string {
	if f.editing != nil {
		return "Update Task"
	}
	return "Create Task"
}

// Submit validates the title and returns the payload. The payload never
// carries id, owner or timestamp; completion is kept from the edited task.
// The form is reset after a successful submit.
func (f *Form) Submit() (models.TaskPayload, error) {
	if strings.TrimSpace(f.Title) == "" {
		return models.TaskPayload{}, ErrEmptyTitle
	}
	priority := f.Priority
	if !priority.Valid() {
		priority = DefaultPriority
	}
	p := models.TaskPayload{
		Title:       f.Title,
		Description: f.Description,
		Priority:    priority,
	}
	if f.editing != nil {
		p.Completed = f.editing.Completed
	}
	f.Reset()
	return p, nil
}

// SubmitTo calls onSubmit with the payload only when the form is valid.
func (f *Form) SubmitTo(onSubmit func(models.TaskPayload)) error {
	p, err := f.Submit()
	if err != nil {
		return err
	}
	onSubmit(p)
	return nil
}
