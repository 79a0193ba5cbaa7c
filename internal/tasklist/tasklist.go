// Package tasklist turns tasks into display rows and routes row actions to
// caller-supplied callbacks. It keeps no state of its own.
package tasklist

import "github.com/Ualine055/task-mgt-app/internal/models"

const (
	EmptyMessage = "No tasks yet. Create one to get started!"
	DeletePrompt = "Are you sure you want to delete this task?"
)

type Row struct {
	Task   models.Task
	Badge  string
	Color  string
	Struck bool
}

type List struct {
	Empty        bool
	EmptyMessage string
	Rows         []Row
}

func Build(tasks []models.Task) List {
	if len(tasks) == 0 {
		return List{Empty: true, EmptyMessage: EmptyMessage}
	}
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{
			Task:   t,
			Badge:  BadgeClass(t.Priority),
			Color:  Color(t.Priority),
			Struck: t.Completed,
		})
	}
	return List{Rows: rows}
}

// BadgeClass is the CSS class of a priority badge.
func BadgeClass(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "badge-high"
	case models.PriorityLow:
		return "badge-low"
	default:
		return "badge-medium"
	}
}

// Color is the priority accent: green, yellow or red.
func Color(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "#dc2626"
	case models.PriorityLow:
		return "#16a34a"
	default:
		return "#ca8a04"
	}
}

type Actions struct {
	OnToggle func(id string, completed bool)
	OnEdit   func(task models.Task)
	OnDelete func(id string)
}

// Toggle asks for the row's completion to be flipped.
func (a Actions) Toggle(r Row) {
	if a.OnToggle != nil {
		a.OnToggle(r.Task.ID, !r.Task.Completed)
	}
}

func (a Actions) Edit(r Row) {
	if a.OnEdit != nil {
		a.OnEdit(r.Task)
	}
}

// Delete calls OnDelete only if confirm accepts DeletePrompt. It reports
// whether the delete was requested.
func (a Actions) Delete(r Row, confirm func(prompt string) bool) bool {
	if confirm == nil || !confirm(DeletePrompt) {
		return false
	}
	if a.OnDelete != nil {
		a.OnDelete(r.Task.ID)
	}
	return true
}
