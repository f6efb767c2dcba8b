package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskeeper/internal/model"
)

func TestRecord_RoundTrip(t *testing.T) {
	desc := "notes"
	task := model.Task{
		ID:          "r1",
		Title:       "Title",
		Description: &desc,
		DueDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:      model.StatusInProgress,
		Priority:    model.PriorityLow,
		CreatedAt:   time.Date(2024, 1, 1, 8, 0, 0, 250_000_000, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}

	rec := NewRecord(task)
	assert.Equal(t, "2024-12-31T00:00:00.000Z", rec.DueDate)
	assert.Equal(t, "2024-01-01T08:00:00.250Z", rec.CreatedAt)

	got, err := rec.Task()
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestRecord_Description(t *testing.T) {
	task := model.Task{ID: "r2", Title: "T", Status: model.StatusNotStarted, Priority: model.PriorityMedium}

	rec := NewRecord(task)
	assert.Equal(t, "", rec.Description)

	got, err := rec.Task()
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	empty := ""
	task.Description = &empty
	got, err = NewRecord(task).Task()
	require.NoError(t, err)
	assert.Nil(t, got.Description, "empty description at rest reads as absent")
}

func TestRecord_BadDate(t *testing.T) {
	rec := Record{ID: "r3", DueDate: "yesterday", CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"}
	_, err := rec.Task()
	assert.ErrorContains(t, err, "bad due_date")

	_, err = DecodeAll([]Record{rec})
	assert.Error(t, err)
}

func TestRecord_UnknownEnums(t *testing.T) {
	rec := NewRecord(model.Task{ID: "r5", Title: "T", Status: model.StatusCompleted, Priority: model.PriorityHigh})

	bad := rec
	bad.Status = "archived"
	_, err := bad.Task()
	assert.ErrorContains(t, err, `unknown status "archived"`)

	bad = rec
	bad.Priority = ""
	_, err = bad.Task()
	assert.ErrorContains(t, err, `unknown priority ""`)

	_, err = rec.Task()
	assert.NoError(t, err)
}

func TestRecord_Apply(t *testing.T) {
	rec := NewRecord(model.Task{
		ID:        "r4",
		Title:     "Before",
		DueDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    model.StatusNotStarted,
		Priority:  model.PriorityMedium,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	title := "After"
	status := model.StatusCompleted
	stamp := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rec.Apply(Patch{Title: &title, Status: &status, UpdatedAt: stamp})

	assert.Equal(t, "After", rec.Title)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, "medium", rec.Priority)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", rec.CreatedAt)
	assert.Equal(t, "2025-02-01T00:00:00.000Z", rec.UpdatedAt)
}

func TestPatch_Stamp(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	stamped, err := model.ParseTime(Patch{}.Stamp())
	require.NoError(t, err)
	assert.True(t, stamped.After(before))

	fixed := time.Date(2030, 5, 5, 5, 5, 5, 5_000_000, time.UTC)
	assert.Equal(t, "2030-05-05T05:05:05.005Z", Patch{UpdatedAt: fixed}.Stamp())
}

func TestPatchFromDTO(t *testing.T) {
	title := "x"
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := PatchFromDTO(model.UpdateTaskDTO{Title: &title}, now)
	assert.Equal(t, &title, p.Title)
	assert.Nil(t, p.Status)
	assert.Equal(t, now, p.UpdatedAt)
}
