package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is ISO-8601 in UTC with millisecond precision, e.g. 2025-12-31T00:00:00.000Z.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the only persisted entity. Description is nil when absent.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	return json.Marshal(struct {
		alias
		DueDate   string `json:"dueDate"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{
		alias:     alias(t),
		DueDate:   FormatTime(t.DueDate),
		CreatedAt: FormatTime(t.CreatedAt),
		UpdatedAt: FormatTime(t.UpdatedAt),
	})
}

// DueDateInput is a due date as clients send it. It accepts RFC 3339, an offset
// without a colon, a bare YYYY-MM-DD (UTC midnight), and "" or null, which
// leave it zero.
type DueDateInput struct {
	time.Time
}

func (d *DueDateInput) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	t, err := ParseDueDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDueDate parses a client-supplied due date. Forms without a zone are
// read as UTC; the empty string yields the zero time.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("dueDate: unrecognised date %q", s)
}

// CreateTaskDTO is the inbound shape for task creation. A zero DueDate means
// none was supplied; empty Status/Priority fall back to the defaults.
type CreateTaskDTO struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate"`
	Status      Status    `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress completed"`
	Priority    Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

func (d *CreateTaskDTO) UnmarshalJSON(b []byte) error {
	type alias CreateTaskDTO
	aux := struct {
		*alias
		DueDate DueDateInput `json:"dueDate"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.DueDate = aux.DueDate.Time
	return nil
}

// UpdateTaskDTO is a partial update; nil fields are left unchanged.
type UpdateTaskDTO struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress completed"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// UnmarshalJSON treats an empty or null dueDate the same as an absent one.
func (d *UpdateTaskDTO) UnmarshalJSON(b []byte) error {
	type alias UpdateTaskDTO
	aux := struct {
		*alias
		DueDate *DueDateInput `json:"dueDate"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.DueDate = nil
	if aux.DueDate != nil && !aux.DueDate.IsZero() {
		due := aux.DueDate.Time
		d.DueDate = &due
	}
	return nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
