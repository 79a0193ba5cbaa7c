package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestTaskRepository_Insert_List_Update_Delete(t *testing.T) {
	dbx := setupTestDB(t)
	repo := NewTaskRepository(dbx)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	id, err := repo.Insert(ctx, "ann@example.com", models.TaskPayload{
		Title:       "Buy milk",
		Description: "2 litres",
		Priority:    models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated id %q is not a uuid: %v", id, err)
	}

	list, err := repo.ListByOwner(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	got := list[0]
	if got.ID != id || got.Title != "Buy milk" || got.Priority != models.PriorityHigh || got.Completed {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CreatedAt.Kind() != models.TimestampServer {
		t.Errorf("created_at kind = %v, want server", got.CreatedAt.Kind())
	}
	if ms := got.CreatedAt.Resolve(time.Now()); ms != fixed.UnixMilli() {
		t.Errorf("created_at = %d, want %d", ms, fixed.UnixMilli())
	}

	// partial update touches only completed
	if err := repo.Update(ctx, "ann@example.com", id, models.TaskFields{Completed: ptr(true)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, err := repo.Get(ctx, "ann@example.com", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !after.Completed || after.Title != "Buy milk" || after.Description != "2 litres" || after.Priority != models.PriorityHigh {
		t.Errorf("partial update changed other fields: %+v", after)
	}

	if err := repo.Delete(ctx, "ann@example.com", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "ann@example.com", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTaskRepository_ListByOwner_FiltersByOwner(t *testing.T) {
	dbx := setupTestDB(t)
	repo := NewTaskRepository(dbx)
	ctx := context.Background()

	for _, owner := range []string{"ann@example.com", "bob@example.com", "ann@example.com"} {
		if _, err := repo.Insert(ctx, owner, models.TaskPayload{Title: "t", Priority: models.PriorityLow}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	list, err := repo.ListByOwner(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks for ann, got %d", len(list))
	}
	for _, rec := range list {
		if rec.Owner != "ann@example.com" {
			t.Errorf("foreign task leaked: %+v", rec)
		}
	}
}

func TestTaskRepository_ListByOwner_Empty(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	list, err := repo.ListByOwner(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestTaskRepository_TimestampVariants(t *testing.T) {
	dbx := setupTestDB(t)
	repo := NewTaskRepository(dbx)

	_, err := dbx.Exec(`INSERT INTO tasks (id, owner, title, description, priority, completed, created_at, created_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		"legacy", "ann@example.com", "old", "", "Low", false, nil, int64(1700000000000))
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	_, err = dbx.Exec(`INSERT INTO tasks (id, owner, title, description, priority, completed)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		"bare", "ann@example.com", "no time", "", "Low", false)
	if err != nil {
		t.Fatalf("insert bare row: %v", err)
	}

	list, err := repo.ListByOwner(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	kinds := map[string]models.TimestampKind{}
	for _, rec := range list {
		kinds[rec.ID] = rec.CreatedAt.Kind()
	}
	if kinds["legacy"] != models.TimestampMillis {
		t.Errorf("legacy kind = %v, want millis", kinds["legacy"])
	}
	if kinds["bare"] != models.TimestampUnset {
		t.Errorf("bare kind = %v, want unset", kinds["bare"])
	}
}

func TestTaskRepository_ForeignOwnerCannotMutate(t *testing.T) {
	dbx := setupTestDB(t)
	repo := NewTaskRepository(dbx)
	ctx := context.Background()

	id, err := repo.Insert(ctx, "ann@example.com", models.TaskPayload{Title: "mine", Priority: models.PriorityMedium})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Update(ctx, "bob@example.com", id, models.TaskFields{Title: ptr("stolen")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update by other owner: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "bob@example.com", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete by other owner: expected ErrNotFound, got %v", err)
	}
	rec, err := repo.Get(ctx, "ann@example.com", id)
	if err != nil || rec.Title != "mine" {
		t.Errorf("task changed by other owner: %+v err=%v", rec, err)
	}
}

func TestTaskRepository_Update_NonExistent(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	err := repo.Update(context.Background(), "ann@example.com", uuid.NewString(), models.TaskFields{Completed: ptr(true)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_Update_NoFields(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	if err := repo.Update(context.Background(), "ann@example.com", "x", models.TaskFields{}); err == nil {
		t.Fatal("expected error for empty update")
	}
}

func TestTaskRepository_Delete_NonExistent(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	if err := repo.Delete(context.Background(), "ann@example.com", uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_Insert_RequiresOwner(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	if _, err := repo.Insert(context.Background(), "", models.TaskPayload{Title: "x"}); err == nil {
		t.Fatal("expected error for empty owner")
	}
}
