package dashboard

import (
	"context"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
)

type Op int

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpToggle
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpToggle:
		return "toggle"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Command is one user action against the store.
type Command interface {
	Op() Op
}

type CreateCommand struct {
	Payload models.TaskPayload
}

// UpdateCommand replaces the editable fields of Task with Payload.
type UpdateCommand struct {
	Task    models.Task
	Payload models.TaskPayload
}

type ToggleCommand struct {
	Task models.Task
}

type DeleteCommand struct {
	ID string
}

func (CreateCommand) Op() Op { return OpCreate }
func (UpdateCommand) Op() Op { return OpUpdate }
func (ToggleCommand) Op() Op { return OpToggle }
func (DeleteCommand) Op() Op { return OpDelete }

// Result is the outcome of one command. On success Task holds the new or
// updated record (ID alone for deletes). On failure Err and Reason are set.
type Result struct {
	Op     Op
	Task   models.Task
	Err    error
	Reason string
}

func (r Result) OK() bool {
	return r.Err == nil
}

func failed(op Op, err error) Result {
	reason := ReasonUpdate
	switch op {
	case OpCreate:
		reason = ReasonCreate
	case OpDelete:
		reason = ReasonDelete
	}
	return Result{Op: op, Err: err, Reason: reason}
}

// Execute performs the store write for cmd as the session's owner. now
// stamps newly created tasks until the next full load.
func Execute(ctx context.Context, store Store, sess *session.Session, cmd Command, now time.Time) Result {
	owner := sess.Owner()
	if owner == "" {
		return failed(cmd.Op(), session.ErrNoUser)
	}

	switch c := cmd.(type) {
	case CreateCommand:
		id, err := store.Insert(ctx, owner, c.Payload)
		if err != nil {
			return failed(OpCreate, err)
		}
		task := c.Payload.Apply(models.Task{ID: id, Owner: owner, CreatedAt: now.UnixMilli()})
		return Result{Op: OpCreate, Task: task}

	case UpdateCommand:
		if err := store.Update(ctx, owner, c.Task.ID, models.FieldsFromPayload(c.Payload)); err != nil {
			return failed(OpUpdate, err)
		}
		return Result{Op: OpUpdate, Task: c.Payload.Apply(c.Task)}

	case ToggleCommand:
		completed := !c.Task.Completed
		if err := store.Update(ctx, owner, c.Task.ID, models.TaskFields{Completed: &completed}); err != nil {
			return failed(OpToggle, err)
		}
		task := c.Task
		task.Completed = completed
		return Result{Op: OpToggle, Task: task}

	case DeleteCommand:
		if err := store.Delete(ctx, owner, c.ID); err != nil {
			return failed(OpDelete, err)
		}
		return Result{Op: OpDelete, Task: models.Task{ID: c.ID}}
	}
	panic("dashboard: unknown command")
}

// Reduce applies a result to the state without touching the input slice.
func Reduce(s State, r Result) State {
	if !r.OK() {
		s.Alert = r.Reason
		return s
	}

	switch r.Op {
	case OpCreate:
		tasks := make([]models.Task, 0, len(s.Tasks)+1)
		tasks = append(tasks, r.Task)
		s.Tasks = append(tasks, s.Tasks...)
		s.Editing = nil

	case OpUpdate, OpToggle:
		tasks := make([]models.Task, len(s.Tasks))
		for i, t := range s.Tasks {
			if t.ID == r.Task.ID {
				t = r.Task
			}
			tasks[i] = t
		}
		s.Tasks = tasks
		if r.Op == OpUpdate {
			s.Editing = nil
		} else if s.Editing != nil && s.Editing.ID == r.Task.ID {
			editing := *s.Editing
			editing.Completed = r.Task.Completed
			s.Editing = &editing
		}

	case OpDelete:
		tasks := make([]models.Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.ID != r.Task.ID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = tasks
		if s.Editing != nil && s.Editing.ID == r.Task.ID {
			s.Editing = nil
		}
	}
	return s
}
