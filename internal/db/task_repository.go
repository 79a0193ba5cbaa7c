package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/google/uuid"
)

// TaskRepository is the task collection. Every query is scoped by owner.
type TaskRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

// Insert stores a new task under a generated id and stamps it with the
// server clock.
func (r *TaskRepository) Insert(ctx context.Context, owner string, p models.TaskPayload) (string, error) {
	if owner == "" {
		return "", errors.New("insert task: owner is required")
	}
	id := uuid.NewString()
	query := `INSERT INTO tasks (id, owner, title, description, priority, completed, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx, query, id, owner, p.Title, p.Description, string(p.Priority), p.Completed, r.now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

const taskColumns = `id, owner, title, description, priority, completed, created_at, created_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.TaskRecord, error) {
	var (
		rec       models.TaskRecord
		priority  string
		createdAt sql.NullTime
		createdMs sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.Owner, &rec.Title, &rec.Description, &priority,
		&rec.Completed, &createdAt, &createdMs)
	if err != nil {
		return models.TaskRecord{}, err
	}
	rec.Priority = models.Priority(priority)
	switch {
	case createdAt.Valid:
		rec.CreatedAt = models.ServerTime(createdAt.Time)
	case createdMs.Valid:
		rec.CreatedAt = models.Millis(createdMs.Int64)
	default:
		rec.CreatedAt = models.Unset()
	}
	return rec, nil
}

// ListByOwner returns the owner's tasks in storage order.
func (r *TaskRepository) ListByOwner(ctx context.Context, owner string) ([]models.TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner = $1`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.TaskRecord
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, owner, id string) (models.TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner = $2`
	rec, err := scanTask(r.db.QueryRowContext(ctx, query, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskRecord{}, ErrNotFound
	}
	if err != nil {
		return models.TaskRecord{}, fmt.Errorf("get task: %w", err)
	}
	return rec, nil
}

// Update writes only the non-nil fields.
func (r *TaskRepository) Update(ctx context.Context, owner, id string, f models.TaskFields) error {
	if f.Empty() {
		return errors.New("update task: no fields to update")
	}
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Priority != nil {
		add("priority", string(*f.Priority))
	}
	if f.Completed != nil {
		add("completed", *f.Completed)
	}
	args = append(args, id, owner)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND owner = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectOneRow(res)
}

func (r *TaskRepository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
