// Package storage defines the persistence contract for tasks and the record
// format shared by every backing store.
package storage

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/BuzzLyutic/taskeeper/internal/model"
)

// Schema is the relational layout used by the postgres and sqlite adapters.
//
//go:embed schema.sql
var Schema string

var ErrDuplicate = errors.New("task already exists")

// Adapter persists tasks in one concrete backing store.
//
// FindByID and Update report a missing record through the bool result, never
// through the error. Remove of a missing id is a no-op. List makes no
// ordering promise.
type Adapter interface {
	Insert(ctx context.Context, task model.Task) error
	FindByID(ctx context.Context, id string) (model.Task, bool, error)
	Update(ctx context.Context, id string, patch Patch) (model.Task, bool, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Task, error)
}

// Patch lists the fields to change. Nil fields stay as stored. UpdatedAt is
// always written; a zero value means "now".
type Patch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *model.Status
	Priority    *model.Priority
	UpdatedAt   time.Time
}

func PatchFromDTO(dto model.UpdateTaskDTO, updatedAt time.Time) Patch {
	return Patch{
		Title:       dto.Title,
		Description: dto.Description,
		DueDate:     dto.DueDate,
		Status:      dto.Status,
		Priority:    dto.Priority,
		UpdatedAt:   updatedAt,
	}
}

// Stamp returns the instant to store as updated_at.
func (p Patch) Stamp() string {
	if p.UpdatedAt.IsZero() {
		return model.FormatTime(time.Now())
	}
	return model.FormatTime(p.UpdatedAt)
}
