package storage

import (
	"fmt"

	"github.com/BuzzLyutic/taskeeper/internal/model"
)

// Record is a task at rest: every column is text, instants are ISO-8601 and an
// absent description is stored as the empty string.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func NewRecord(t model.Task) Record {
	var desc string
	if t.Description != nil {
		desc = *t.Description
	}
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: desc,
		DueDate:     model.FormatTime(t.DueDate),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   model.FormatTime(t.CreatedAt),
		UpdatedAt:   model.FormatTime(t.UpdatedAt),
	}
}

// Task decodes the record. An empty description reads back as absent; an
// unknown status or priority is an error.
func (r Record) Task() (model.Task, error) {
	due, err := model.ParseTime(r.DueDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: bad due_date %q: %w", r.ID, r.DueDate, err)
	}
	created, err := model.ParseTime(r.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: bad created_at %q: %w", r.ID, r.CreatedAt, err)
	}
	updated, err := model.ParseTime(r.UpdatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: bad updated_at %q: %w", r.ID, r.UpdatedAt, err)
	}

	status, priority := model.Status(r.Status), model.Priority(r.Priority)
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("task %s: unknown status %q", r.ID, r.Status)
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("task %s: unknown priority %q", r.ID, r.Priority)
	}

	t := model.Task{
		ID:        r.ID,
		Title:     r.Title,
		DueDate:   due,
		Status:    status,
		Priority:  priority,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if r.Description != "" {
		desc := r.Description
		t.Description = &desc
	}
	return t, nil
}

// Apply merges the patch into the record in place.
func (r *Record) Apply(p Patch) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.DueDate != nil {
		r.DueDate = model.FormatTime(*p.DueDate)
	}
	if p.Status != nil {
		r.Status = string(*p.Status)
	}
	if p.Priority != nil {
		r.Priority = string(*p.Priority)
	}
	r.UpdatedAt = p.Stamp()
}

// DecodeAll converts a slice of records, failing on the first bad row.
func DecodeAll(records []Record) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		t, err := rec.Task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
