package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/domain"
	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/result"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

const (
	prefixCreate = "Failed to create task:"
	prefixFetch  = "Failed to fetch task:"
	prefixUpdate = "Failed to update task:"
	prefixDelete = "Failed to delete task:"
	prefixList   = "Failed to list tasks:"
)

type TaskRepository struct {
	adapter storage.Adapter
	factory *domain.Factory
	now     domain.Clock
	logger  *zap.Logger
}

type Option func(*options)

type options struct {
	now   domain.Clock
	newID domain.IDGenerator
}

// WithClock pins the instant used for createdAt and updatedAt.
func WithClock(now domain.Clock) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(newID domain.IDGenerator) Option {
	return func(o *options) { o.newID = newID }
}

func NewTaskRepository(adapter storage.Adapter, logger *zap.Logger, opts ...Option) *TaskRepository {
	o := options{now: domain.SystemClock, newID: domain.NewUUID}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TaskRepository{
		adapter: adapter,
		factory: domain.NewFactory(o.now, o.newID),
		now:     o.now,
		logger:  logger,
	}
}

var _ Repository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(ctx context.Context, in model.CreateTaskDTO) (res result.Result[model.Task, error]) {
	defer recoverInto(r.logger, &res, prefixCreate)

	built := result.MapErr(r.factory.Create(in), widen)
	if built.IsErr() {
		r.logger.Debug("task rejected", zap.Error(built.UnwrapErr()))
	}

	return result.AndThen(built, func(task model.Task) result.Result[model.Task, error] {
		if err := r.adapter.Insert(ctx, task); err != nil {
			return fail[model.Task](r.logger, prefixCreate, err)
		}
		return result.Ok[model.Task, error](task)
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (res result.Result[model.Task, error]) {
	defer recoverInto(r.logger, &res, prefixFetch)

	task, found, err := r.adapter.FindByID(ctx, id)
	if err != nil {
		return fail[model.Task](r.logger, prefixFetch, err)
	}
	if !found {
		return result.Err[model.Task, error](domain.NewNotFoundError(id))
	}
	return result.Ok[model.Task, error](task)
}

// Update applies only the fields present in the input and always refreshes
// updatedAt. The due date is not checked against the clock.
func (r *TaskRepository) Update(ctx context.Context, id string, in model.UpdateTaskDTO) (res result.Result[model.Task, error]) {
	defer recoverInto(r.logger, &res, prefixUpdate)

	checked := result.MapErr(domain.ValidatePatch(in), widen)
	if checked.IsErr() {
		r.logger.Debug("task update rejected", zap.String("id", id), zap.Error(checked.UnwrapErr()))
	}

	return result.AndThen(checked, func(struct{}) result.Result[model.Task, error] {
		task, found, err := r.adapter.Update(ctx, id, storage.PatchFromDTO(in, r.now()))
		if err != nil {
			return fail[model.Task](r.logger, prefixUpdate, err)
		}
		if !found {
			return result.Err[model.Task, error](domain.NewNotFoundError(id))
		}
		return result.Ok[model.Task, error](task)
	})
}

// Remove checks existence before deleting. Two removers racing on one id may
// both pass the check; the second delete is then a no-op and still succeeds.
func (r *TaskRepository) Remove(ctx context.Context, id string) (res result.Result[struct{}, error]) {
	defer recoverInto(r.logger, &res, prefixDelete)

	_, found, err := r.adapter.FindByID(ctx, id)
	if err != nil {
		return fail[struct{}](r.logger, prefixDelete, err)
	}
	if !found {
		return result.Err[struct{}, error](domain.NewNotFoundError(id))
	}
	if err := r.adapter.Remove(ctx, id); err != nil {
		return fail[struct{}](r.logger, prefixDelete, err)
	}
	return result.Ok[struct{}, error](struct{}{})
}

func (r *TaskRepository) List(ctx context.Context) (res result.Result[[]model.Task, error]) {
	defer recoverInto(r.logger, &res, prefixList)

	tasks, err := r.adapter.List(ctx)
	if err != nil {
		return fail[[]model.Task](r.logger, prefixList, err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return result.Ok[[]model.Task, error](tasks)
}

func widen(e *domain.ValidationError) error {
	return e
}

func fail[T any](logger *zap.Logger, prefix string, cause error) result.Result[T, error] {
	err := domain.NewStorageError(prefix, cause)
	logger.Error("storage operation failed", zap.String("op", prefix), zap.Error(cause))
	return result.Err[T, error](err)
}

// recoverInto must be deferred directly so recover sees the panic.
func recoverInto[T any](logger *zap.Logger, res *result.Result[T, error], prefix string) {
	if p := recover(); p != nil {
		*res = fail[T](logger, prefix, fmt.Errorf("%v", p))
	}
}
