// Package domain validates task input and builds Task entities. It performs no
// I/O; the clock and id source are injected so callers can pin them in tests.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/result"
)

const (
	MsgTitleRequired = "Title is required"
	MsgDueDateInPast = "Due date cannot be in the past"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type (
	Clock       func() time.Time
	IDGenerator func() string
)

// SystemClock returns the current UTC instant truncated to milliseconds, the
// precision of the ISO-8601 form tasks are stored in.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func NewUUID() string {
	return uuid.NewString()
}

type Factory struct {
	now   Clock
	newID IDGenerator
}

// NewFactory falls back to SystemClock and NewUUID for nil collaborators.
func NewFactory(now Clock, newID IDGenerator) *Factory {
	if now == nil {
		now = SystemClock
	}
	if newID == nil {
		newID = NewUUID
	}
	return &Factory{now: now, newID: newID}
}

// Validate checks creation input against the current instant.
func (f *Factory) Validate(in model.CreateTaskDTO) result.Result[struct{}, *ValidationError] {
	return validateAt(in, f.now())
}

// Create validates the input and builds a new Task. The clock is read once, so
// CreatedAt and UpdatedAt are identical. An empty description is dropped, the
// same way storage reads it back.
func (f *Factory) Create(in model.CreateTaskDTO) result.Result[model.Task, *ValidationError] {
	now := f.now()

	return result.Map(validateAt(in, now), func(struct{}) model.Task {
		task := model.Task{
			ID:          f.newID(),
			Title:       in.Title,
			Description: in.Description,
			DueDate:     in.DueDate.UTC().Truncate(time.Millisecond),
			Status:      in.Status,
			Priority:    in.Priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if task.Description != nil && *task.Description == "" {
			task.Description = nil
		}
		if task.Status == "" {
			task.Status = model.StatusNotStarted
		}
		if task.Priority == "" {
			task.Priority = model.PriorityMedium
		}
		return task
	})
}

// ValidatePatch checks a partial update. The due date is not compared against
// the clock, so an overdue task can be rescheduled to any date.
func ValidatePatch(in model.UpdateTaskDTO) result.Result[struct{}, *ValidationError] {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return result.Err[struct{}](NewValidationError(MsgTitleRequired))
	}
	if err := checkEnums(in); err != nil {
		return result.Err[struct{}](err)
	}
	return result.Ok[struct{}, *ValidationError](struct{}{})
}

func validateAt(in model.CreateTaskDTO, now time.Time) result.Result[struct{}, *ValidationError] {
	if strings.TrimSpace(in.Title) == "" {
		return result.Err[struct{}](NewValidationError(MsgTitleRequired))
	}
	if !in.DueDate.IsZero() && in.DueDate.Before(now) {
		return result.Err[struct{}](NewValidationError(MsgDueDateInPast))
	}
	if err := checkEnums(in); err != nil {
		return result.Err[struct{}](err)
	}
	return result.Ok[struct{}, *ValidationError](struct{}{})
}

// checkEnums runs the struct tags of the DTOs, which only constrain status and
// priority.
func checkEnums(dto any) *ValidationError {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return NewValidationError("Invalid " + strings.ToLower(fieldErrs[0].Field()))
	}
	return NewValidationError(err.Error())
}
