package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/testutil"
)

const owner = "ann@example.com"

func record(id string, ts models.Timestamp) models.TaskRecord {
	return models.TaskRecord{ID: id, Owner: owner, Title: id, Priority: models.PriorityMedium, CreatedAt: ts}
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestLoad_SortsNewestFirst(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed(record("a", models.Millis(100)))
	store.Seed(record("b", models.Millis(300)))
	store.Seed(record("c", models.Millis(200)))

	tasks, err := Load(context.Background(), store, owner, time.UnixMilli(0))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var got []int64
	for _, task := range tasks {
		got = append(got, task.CreatedAt)
	}
	if want := []int64{300, 200, 100}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestLoad_ResolvesTimestampVariants(t *testing.T) {
	now := time.UnixMilli(5_000)
	store := testutil.NewFakeStore()
	store.Seed(record("server", models.ServerTime(time.UnixMilli(4_000))))
	store.Seed(record("millis", models.Millis(3_000)))
	store.Seed(record("unset", models.Unset()))

	tasks, err := Load(context.Background(), store, owner, now)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string]int64{"unset": 5_000, "server": 4_000, "millis": 3_000}
	for _, task := range tasks {
		if task.CreatedAt != want[task.ID] {
			t.Errorf("%s: CreatedAt = %d, want %d", task.ID, task.CreatedAt, want[task.ID])
		}
	}
	if got := ids(tasks); !reflect.DeepEqual(got, []string{"unset", "server", "millis"}) {
		t.Errorf("order = %v", got)
	}
}

func TestLoad_TiesKeepStoreOrder(t *testing.T) {
	store := testutil.NewFakeStore()
	for _, id := range []string{"first", "second", "third"} {
		store.Seed(record(id, models.Millis(42)))
	}
	tasks, _ := Load(context.Background(), store, owner, time.Now())
	if got := ids(tasks); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("order = %v", got)
	}
}

func TestLoad_OnlyOwnersTasks(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed(record("mine", models.Millis(1)))
	other := record("theirs", models.Millis(2))
	other.Owner = "bob@example.com"
	store.Seed(other)

	tasks, _ := Load(context.Background(), store, owner, time.Now())
	if got := ids(tasks); !reflect.DeepEqual(got, []string{"mine"}) {
		t.Errorf("tasks = %v", got)
	}
}

func TestLoad_Error(t *testing.T) {
	store := testutil.NewFakeStore()
	store.ListErr = errors.New("unavailable")
	if _, err := Load(context.Background(), store, owner, time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		completed []bool
		want      Stats
	}{
		{"empty", nil, Stats{}},
		{"all pending", []bool{false, false}, Stats{Total: 2, Pending: 2}},
		{"all done", []bool{true, true, true}, Stats{Total: 3, Completed: 3}},
		{"mixed", []bool{true, false, true, false, false}, Stats{Total: 5, Completed: 2, Pending: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tasks []models.Task
			for _, c := range tt.completed {
				tasks = append(tasks, models.Task{Completed: c})
			}
			got := ComputeStats(tasks)
			if got != tt.want {
				t.Errorf("ComputeStats = %+v, want %+v", got, tt.want)
			}
			if got.Total != got.Completed+got.Pending {
				t.Errorf("total %d != completed %d + pending %d", got.Total, got.Completed, got.Pending)
			}
		})
	}
}

func TestEditStateMachine(t *testing.T) {
	task := models.Task{ID: "a", Title: "edit me"}
	s := BeginEdit(State{Tasks: []models.Task{task}}, task)
	if s.Editing == nil || s.Editing.ID != "a" {
		t.Fatalf("Editing = %+v", s.Editing)
	}
	if s = CancelEdit(s); s.Editing != nil {
		t.Errorf("Editing after cancel = %+v", s.Editing)
	}
	if got, ok := (State{Tasks: []models.Task{task}}).Find("a"); !ok || got.Title != "edit me" {
		t.Errorf("Find = %+v, %v", got, ok)
	}
}
