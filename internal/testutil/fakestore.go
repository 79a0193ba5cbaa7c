// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/db"
	"github.com/Ualine055/task-mgt-app/internal/models"
)

// FakeStore is an in-memory implementation of dashboard.Store for testing.
// Records keep insertion order.
type FakeStore struct {
	mu      sync.RWMutex
	records []models.TaskRecord
	nextID  int

	// Error injection for testing
	InsertErr error
	ListErr   error
	UpdateErr error
	DeleteErr error

	// Calls counts store calls by method name.
	Calls map[string]int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Calls: make(map[string]int)}
}

// Seed adds a stored record as-is.
func (f *FakeStore) Seed(rec models.TaskRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
}

// Records returns a copy of everything stored.
func (f *FakeStore) Records() []models.TaskRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.TaskRecord(nil), f.records...)
}

func (f *FakeStore) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

func (f *FakeStore) Insert(ctx context.Context, owner string, p models.TaskPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Insert"]++
	if f.InsertErr != nil {
		return "", f.InsertErr
	}
	if owner == "" {
		return "", errors.New("owner is required")
	}
	f.nextID++
	id := "task-" + strconv.Itoa(f.nextID)
	f.records = append(f.records, models.TaskRecord{
		ID:          id,
		Owner:       owner,
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		Completed:   p.Completed,
		CreatedAt:   models.ServerTime(time.Now()),
	})
	return id, nil
}

func (f *FakeStore) ListByOwner(ctx context.Context, owner string) ([]models.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["ListByOwner"]++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []models.TaskRecord
	for _, rec := range f.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *FakeStore) find(owner, id string) int {
	for i, rec := range f.records {
		if rec.ID == id && rec.Owner == owner {
			return i
		}
	}
	return -1
}

func (f *FakeStore) Get(ctx context.Context, owner, id string) (models.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Get"]++
	i := f.find(owner, id)
	if i < 0 {
		return models.TaskRecord{}, db.ErrNotFound
	}
	return f.records[i], nil
}

func (f *FakeStore) Update(ctx context.Context, owner, id string, fields models.TaskFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Update"]++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	i := f.find(owner, id)
	if i < 0 {
		return db.ErrNotFound
	}
	rec := &f.records[i]
	if fields.Title != nil {
		rec.Title = *fields.Title
	}
	if fields.Description != nil {
		rec.Description = *fields.Description
	}
	if fields.Priority != nil {
		rec.Priority = *fields.Priority
	}
	if fields.Completed != nil {
		rec.Completed = *fields.Completed
	}
	return nil
}

func (f *FakeStore) Delete(ctx context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Delete"]++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	i := f.find(owner, id)
	if i < 0 {
		return db.ErrNotFound
	}
	f.records = append(f.records[:i], f.records[i+1:]...)
	return nil
}
