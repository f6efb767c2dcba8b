package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskeeper/internal/storage"
	"github.com/BuzzLyutic/taskeeper/internal/storage/storagetest"
)

func TestTaskAdapter_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Adapter {
		return NewTaskAdapter(NewStore())
	})
}

func TestTaskAdapter_DuplicateIsSentinel(t *testing.T) {
	a := NewTaskAdapter(NewStore())
	task := storagetest.NewTask("dup")

	require.NoError(t, a.Insert(context.Background(), task))
	assert.ErrorIs(t, a.Insert(context.Background(), task), storage.ErrDuplicate)
}

func TestTaskAdapter_ListSortedByCreatedAt(t *testing.T) {
	store := NewStore()
	newest := storagetest.NewTask("c")
	newest.CreatedAt = newest.CreatedAt.Add(48 * time.Hour)
	oldest := storagetest.NewTask("a")
	middle := storagetest.NewTask("b")
	middle.CreatedAt = middle.CreatedAt.Add(time.Hour)
	store.Seed(newest, oldest, middle)

	got, err := NewTaskAdapter(store).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestTaskAdapter_SharedStore(t *testing.T) {
	// two adapters over one store see each other's writes
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, NewTaskAdapter(store).Insert(ctx, storagetest.NewTask("shared")))

	_, found, err := NewTaskAdapter(store).FindByID(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, store.Len())
}
