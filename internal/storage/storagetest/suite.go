// Package storagetest holds the behaviour every storage.Adapter must share.
// Adapter tests call Run with a constructor returning an empty store.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

// Factory returns an adapter over an empty store.
type Factory func(t *testing.T) storage.Adapter

// NewTask builds a fully populated task with millisecond-precision instants.
func NewTask(id string) model.Task {
	desc := "Test Description"
	return model.Task{
		ID:          id,
		Title:       "Test Task",
		Description: &desc,
		DueDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:      model.StatusNotStarted,
		Priority:    model.PriorityMedium,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func Run(t *testing.T, newAdapter Factory) {
	ctx := context.Background()

	t.Run("insert then find returns the same task", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("test-insert")
		task.DueDate = time.Date(2031, 7, 15, 13, 45, 30, 123_000_000, time.UTC)

		require.NoError(t, a.Insert(ctx, task))

		got, found, err := a.FindByID(ctx, "test-insert")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, task, got)
	})

	t.Run("absent description stays absent", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("no-desc")
		task.Description = nil

		require.NoError(t, a.Insert(ctx, task))

		got, found, err := a.FindByID(ctx, "no-desc")
		require.NoError(t, err)
		require.True(t, found)
		assert.Nil(t, got.Description)
		assert.Equal(t, task, got)
	})

	t.Run("empty description reads as absent", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("empty-desc")
		empty := ""
		task.Description = &empty

		require.NoError(t, a.Insert(ctx, task))

		got, _, err := a.FindByID(ctx, "empty-desc")
		require.NoError(t, err)
		assert.Nil(t, got.Description)
	})

	t.Run("find missing id is not an error", func(t *testing.T) {
		a := newAdapter(t)

		_, found, err := a.FindByID(ctx, "non-existent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("duplicate insert fails", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("dup")

		require.NoError(t, a.Insert(ctx, task))
		assert.Error(t, a.Insert(ctx, task))
	})

	t.Run("update applies only supplied fields", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("test-update")
		require.NoError(t, a.Insert(ctx, task))

		title := "Updated Title"
		status := model.StatusInProgress
		stamp := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

		got, found, err := a.Update(ctx, "test-update", storage.Patch{
			Title:     &title,
			Status:    &status,
			UpdatedAt: stamp,
		})
		require.NoError(t, err)
		require.True(t, found)

		want := task
		want.Title = title
		want.Status = status
		want.UpdatedAt = stamp
		assert.Equal(t, want, got)

		stored, _, err := a.FindByID(ctx, "test-update")
		require.NoError(t, err)
		assert.Equal(t, want, stored)
	})

	t.Run("update can move the due date into the past and clear the description", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Insert(ctx, NewTask("resched")))

		past := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
		empty := ""
		got, found, err := a.Update(ctx, "resched", storage.Patch{DueDate: &past, Description: &empty})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, past, got.DueDate)
		assert.Nil(t, got.Description)
	})

	t.Run("update always refreshes updatedAt", func(t *testing.T) {
		a := newAdapter(t)
		task := NewTask("refresh")
		require.NoError(t, a.Insert(ctx, task))

		got, found, err := a.Update(ctx, "refresh", storage.Patch{})
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, got.UpdatedAt.After(task.UpdatedAt))
		assert.Equal(t, task.CreatedAt, got.CreatedAt)
		assert.Equal(t, task.Title, got.Title)
	})

	t.Run("update missing id reports not present", func(t *testing.T) {
		a := newAdapter(t)
		title := "New Title"

		_, found, err := a.Update(ctx, "non-existent", storage.Patch{Title: &title})
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("remove deletes and is idempotent", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Insert(ctx, NewTask("test-remove")))

		require.NoError(t, a.Remove(ctx, "test-remove"))
		_, found, err := a.FindByID(ctx, "test-remove")
		require.NoError(t, err)
		assert.False(t, found)

		assert.NoError(t, a.Remove(ctx, "test-remove"))
		assert.NoError(t, a.Remove(ctx, "never-existed"))
	})

	t.Run("list returns every task", func(t *testing.T) {
		a := newAdapter(t)

		empty, err := a.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		want := make([]model.Task, 0, 3)
		for i := 0; i < 3; i++ {
			task := NewTask(fmt.Sprintf("test-list-%d", i))
			task.CreatedAt = task.CreatedAt.Add(time.Duration(i) * time.Hour)
			task.UpdatedAt = task.CreatedAt
			require.NoError(t, a.Insert(ctx, task))
			want = append(want, task)
		}

		got, err := a.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, got)
	})
}
