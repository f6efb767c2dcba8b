package domain

import "fmt"

// ValidationError is user-correctable bad input. Maps to 400.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports a task id with no stored record. Maps to 404.
type NotFoundError struct {
	ID string
}

func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Task with id %s not found", e.ID)
}

// StorageError wraps any failure of the backing store. Maps to 500 and its
// message is returned to the client as is.
type StorageError struct {
	Message string
	Err     error
}

// NewStorageError builds the message as "<prefix> <cause>", e.g.
// "Failed to create task: connection refused".
func NewStorageError(prefix string, cause error) *StorageError {
	return &StorageError{
		Message: fmt.Sprintf("%s %v", prefix, cause),
		Err:     cause,
	}
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
