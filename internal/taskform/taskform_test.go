package taskform

import (
	"errors"
	"testing"

	"github.com/Ualine055/task-mgt-app/internal/models"
)

func TestNew_Defaults(t *testing.T) {
	f := New()
	if f.Title != "" || f.Description != "" || f.Priority != models.PriorityMedium {
		t.Errorf("New() = %+v", f)
	}
	if _, ok := f.Editing(); ok {
		t.Error("new form is in edit mode")
	}
	if f.Heading() != "Create New Task" || f.SubmitLabel() != "Create Task" {
		t.Errorf("heading=%q label=%q", f.Heading(), f.SubmitLabel())
	}
}

func TestSubmit_RejectsBlankTitle(t *testing.T) {
	for _, title := range []string{"", " ", "\t\n  "} {
		f := New()
		f.Title = title
		f.Description = "kept"
		called := false
		err := f.SubmitTo(func(models.TaskPayload) { called = true })
		if !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("title %q: err = %v", title, err)
		}
		if called {
			t.Errorf("title %q: submit callback invoked", title)
		}
		if f.Description != "kept" {
			t.Errorf("title %q: form reset after rejected submit", title)
		}
	}
}

func TestSubmit_ForwardsPayloadFields(t *testing.T) {
	f := New()
	f.Title = "  Buy milk "
	f.Description = "2 litres"
	f.Priority = models.PriorityHigh

	var got models.TaskPayload
	if err := f.SubmitTo(func(p models.TaskPayload) { got = p }); err != nil {
		t.Fatalf("SubmitTo: %v", err)
	}
	want := models.TaskPayload{Title: "  Buy milk ", Description: "2 litres", Priority: models.PriorityHigh}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
	if f.Title != "" || f.Priority != models.PriorityMedium {
		t.Errorf("form not reset: %+v", f)
	}
}

func TestEdit_PrefillsAndKeepsCompletion(t *testing.T) {
	task := models.Task{ID: "t1", Title: "Old", Description: "desc", Priority: models.PriorityLow, Completed: true, Owner: "ann@example.com", CreatedAt: 5}
	f := New()
	f.Edit(task)

	if f.Title != "Old" || f.Description != "desc" || f.Priority != models.PriorityLow {
		t.Fatalf("prefill = %+v", f)
	}
	if f.Heading() != "Edit Task" || f.SubmitLabel() != "Update Task" {
		t.Errorf("heading=%q label=%q", f.Heading(), f.SubmitLabel())
	}
	if got, ok := f.Editing(); !ok || got.ID != "t1" {
		t.Errorf("Editing = %+v, %v", got, ok)
	}

	f.Title = "New"
	p, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if p != (models.TaskPayload{Title: "New", Description: "desc", Priority: models.PriorityLow, Completed: true}) {
		t.Errorf("payload = %+v", p)
	}
	if _, ok := f.Editing(); ok {
		t.Error("still editing after submit")
	}
}

func TestCancel_Resets(t *testing.T) {
	f := New()
	f.Edit(models.Task{ID: "t1", Title: "x", Priority: models.PriorityHigh})
	f.Cancel()
	if f.Title != "" || f.Priority != models.PriorityMedium {
		t.Errorf("after cancel = %+v", f)
	}
	if _, ok := f.Editing(); ok {
		t.Error("still editing after cancel")
	}
}

func TestSubmit_InvalidPriorityFallsBack(t *testing.T) {
	f := New()
	f.Title = "x"
	f.Priority = "urgent"
	p, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if p.Priority != DefaultPriority {
		t.Errorf("priority = %q", p.Priority)
	}
}
