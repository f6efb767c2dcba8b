package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/di"
	"github.com/BuzzLyutic/taskeeper/internal/domain"
	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/repo"
	"github.com/BuzzLyutic/taskeeper/pkg/respond"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgTaskNotFound  = "Task not found"
	msgInternalError = "Internal Server Error"
)

type TaskHandler struct {
	logger *zap.Logger
}

func NewTaskHandler(logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		logger: logger,
	}
}

type taskResponse struct {
	Task model.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.repository(w, r)
	if !ok {
		return
	}

	res := tasks.List(r.Context())
	if res.IsErr() {
		h.handleErrors(w, r, res.UnwrapErr())
		return
	}

	list := res.Unwrap()
	if list == nil {
		list = []model.Task{}
	}
	respond.JSON(w, r, http.StatusOK, taskListResponse{Tasks: list})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.repository(w, r)
	if !ok {
		return
	}

	var req model.CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res := tasks.Create(r.Context(), req)
	if res.IsErr() {
		h.handleErrors(w, r, res.UnwrapErr())
		return
	}

	task := res.Unwrap()
	w.Header().Set("Location", "/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, taskResponse{Task: task})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.repository(w, r)
	if !ok {
		return
	}

	res := tasks.FindByID(r.Context(), chi.URLParam(r, "id"))
	if res.IsErr() {
		h.handleErrors(w, r, res.UnwrapErr())
		return
	}
	respond.JSON(w, r, http.StatusOK, taskResponse{Task: res.Unwrap()})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.repository(w, r)
	if !ok {
		return
	}

	var req model.UpdateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res := tasks.Update(r.Context(), chi.URLParam(r, "id"), req)
	if res.IsErr() {
		h.handleErrors(w, r, res.UnwrapErr())
		return
	}
	respond.JSON(w, r, http.StatusOK, taskResponse{Task: res.Unwrap()})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.repository(w, r)
	if !ok {
		return
	}

	res := tasks.Remove(r.Context(), chi.URLParam(r, "id"))
	if res.IsErr() {
		h.handleErrors(w, r, res.UnwrapErr())
		return
	}
	respond.NoContent(w, r)
}

func (h *TaskHandler) repository(w http.ResponseWriter, r *http.Request) (repo.Repository, bool) {
	tasks, ok := di.RepositoryFrom(r.Context())
	if !ok {
		h.logger.Error("no repository bound to request", zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, msgInternalError)
	}
	return tasks, ok
}

// handleErrors maps the error taxonomy to a status code. Not-found messages
// are replaced with a fixed text so ids are not echoed back.
func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		storageErr    *domain.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		respond.Error(w, r, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		respond.Error(w, r, http.StatusNotFound, msgTaskNotFound)
	case errors.As(err, &storageErr):
		h.logger.Error("storage error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, storageErr.Message)
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, msgInternalError)
	}
}
