package repo

import (
	"context"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/result"
)

// Repository is the only place the task error taxonomy is produced. Every
// failure arrives as a *domain.ValidationError, *domain.NotFoundError or
// *domain.StorageError inside the Result; methods never panic.
type Repository interface {
	Create(ctx context.Context, in model.CreateTaskDTO) result.Result[model.Task, error]
	FindByID(ctx context.Context, id string) result.Result[model.Task, error]
	Update(ctx context.Context, id string, in model.UpdateTaskDTO) result.Result[model.Task, error]
	Remove(ctx context.Context, id string) result.Result[struct{}, error]
	List(ctx context.Context) result.Result[[]model.Task, error]
}
