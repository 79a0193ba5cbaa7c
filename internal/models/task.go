package models

import (
	"fmt"
	"strings"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the accepted values in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts any casing of low, medium or high.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority %q", s)
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next cycles Low -> Medium -> High -> Low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task is one user-owned to-do item as shown on the dashboard.
// CreatedAt is milliseconds since the Unix epoch.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	Owner       string   `json:"owner"`
	CreatedAt   int64    `json:"created_at"`
}

// TaskPayload is what the task form hands to the dashboard. The dashboard
// attaches id, owner and timestamp itself.
type TaskPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// Apply returns a copy of t carrying the payload's fields.
func (p TaskPayload) Apply(t Task) Task {
	t.Title = p.Title
	t.Description = p.Description
	t.Priority = p.Priority
	t.Completed = p.Completed
	return t
}

// TaskRecord is a task as held by the store, before its creation time is
// resolved for display.
type TaskRecord struct {
	ID          string
	Owner       string
	Title       string
	Description string
	Priority    Priority
	Completed   bool
	CreatedAt   Timestamp
}

// TaskFields is a partial update; nil fields are left untouched.
type TaskFields struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// FieldsFromPayload sets every field of the payload.
func FieldsFromPayload(p TaskPayload) TaskFields {
	return TaskFields{
		Title:       &p.Title,
		Description: &p.Description,
		Priority:    &p.Priority,
		Completed:   &p.Completed,
	}
}

func (f TaskFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Priority == nil && f.Completed == nil
}

// ApplyTo returns a copy of t with the non-nil fields set.
func (f TaskFields) ApplyTo(t Task) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	return t
}
