// Package dashboard is the UI-agnostic core of the task dashboard: loading,
// commands, the reducer that applies their results, and derived counts.
package dashboard

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/models"
)

// Store is the owner-scoped task collection.
type Store interface {
	Insert(ctx context.Context, owner string, p models.TaskPayload) (string, error)
	ListByOwner(ctx context.Context, owner string) ([]models.TaskRecord, error)
	Update(ctx context.Context, owner, id string, f models.TaskFields) error
	Delete(ctx context.Context, owner, id string) error
}

const (
	ReasonCreate = "Failed to add task"
	ReasonUpdate = "Failed to update task"
	ReasonDelete = "Failed to delete task"
	ReasonLoad   = "Failed to load tasks"
)

// State is what one dashboard shows. Editing is nil or the task whose edit
// form is open.
type State struct {
	Tasks   []models.Task
	Editing *models.Task
	Alert   string
}

// Load reads the owner's tasks, resolves creation times and orders them
// newest first. Equal times keep store order.
func Load(ctx context.Context, store Store, owner string, now time.Time) ([]models.Task, error) {
	records, err := store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, fromRecord(rec, now))
	}
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return tasks, nil
}

func fromRecord(rec models.TaskRecord, now time.Time) models.Task {
	return models.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    rec.Priority,
		Completed:   rec.Completed,
		Owner:       rec.Owner,
		CreatedAt:   rec.CreatedAt.Resolve(now),
	}
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func ComputeStats(tasks []models.Task) Stats {
	var s Stats
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Total = len(tasks)
	s.Pending = s.Total - s.Completed
	return s
}

func (s State) Stats() Stats {
	return ComputeStats(s.Tasks)
}

// Find returns the task with the given id.
func (s State) Find(id string) (models.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Refresh replaces the task list with a fresh load. The edit target follows
// the reloaded copy and is dropped when the task no longer exists.
func Refresh(s State, tasks []models.Task) State {
	s.Tasks = tasks
	if s.Editing != nil {
		if task, ok := s.Find(s.Editing.ID); ok {
			s.Editing = &task
		} else {
			s.Editing = nil
		}
	}
	return s
}

func BeginEdit(s State, task models.Task) State {
	s.Editing = &task
	return s
}

func CancelEdit(s State) State {
	s.Editing = nil
	return s
}

func DismissAlert(s State) State {
	s.Alert = ""
	return s
}
