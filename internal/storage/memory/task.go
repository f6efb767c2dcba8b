// Package memory is an in-process storage.Adapter used by tests and the
// "memory" backend. Records are kept in their at-rest form so the date and
// description round trip matches the database adapters.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

// Store is the shared state. It outlives requests; adapters are cheap views
// over it.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]storage.Record
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]storage.Record)}
}

type TaskAdapter struct {
	store *Store
}

func NewTaskAdapter(store *Store) *TaskAdapter {
	return &TaskAdapter{store: store}
}

var _ storage.Adapter = (*TaskAdapter)(nil)

func (a *TaskAdapter) Insert(_ context.Context, task model.Task) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	if _, exists := a.store.tasks[task.ID]; exists {
		return fmt.Errorf("insert %s: %w", task.ID, storage.ErrDuplicate)
	}
	a.store.tasks[task.ID] = storage.NewRecord(task)
	return nil
}

func (a *TaskAdapter) FindByID(_ context.Context, id string) (model.Task, bool, error) {
	a.store.mu.RLock()
	rec, found := a.store.tasks[id]
	a.store.mu.RUnlock()

	if !found {
		return model.Task{}, false, nil
	}
	t, err := rec.Task()
	return t, err == nil, err
}

func (a *TaskAdapter) Update(_ context.Context, id string, patch storage.Patch) (model.Task, bool, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	rec, found := a.store.tasks[id]
	if !found {
		return model.Task{}, false, nil
	}
	rec.Apply(patch)
	a.store.tasks[id] = rec

	t, err := rec.Task()
	return t, err == nil, err
}

func (a *TaskAdapter) Remove(_ context.Context, id string) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	delete(a.store.tasks, id)
	return nil
}

// List returns tasks oldest first by CreatedAt.
func (a *TaskAdapter) List(_ context.Context) ([]model.Task, error) {
	a.store.mu.RLock()
	records := make([]storage.Record, 0, len(a.store.tasks))
	for _, rec := range a.store.tasks {
		records = append(records, rec)
	}
	a.store.mu.RUnlock()

	tasks, err := storage.DecodeAll(records)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Seed inserts tasks directly, bypassing validation and the duplicate check.
// Tests use it to preload a store.
func (s *Store) Seed(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tasks {
		s.tasks[t.ID] = storage.NewRecord(t)
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
