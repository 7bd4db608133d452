package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/TodoGo/internal/domain"
	"github.com/utafrali/TodoGo/internal/service"
	"github.com/utafrali/TodoGo/pkg/httputil"
	"github.com/utafrali/TodoGo/pkg/validator"
)

// TaskHandler handles HTTP requests for task endpoints.
type TaskHandler struct {
	service *service.TodoService
	logger  *slog.Logger
}

// NewTaskHandler creates a new task HTTP handler.
func NewTaskHandler(svc *service.TodoService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateTaskRequest is the JSON request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=2000"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Categories  []string   `json:"categories" validate:"max=10,dive,max=50"`
}

// UpdateTaskRequest is the JSON request body for partially updating a task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Completed   *bool      `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Categories  []string   `json:"categories" validate:"omitempty,max=10,dive,max=50"`
}

func priorityPtr(s *string) *domain.Priority {
	if s == nil {
		return nil
	}
	p := domain.Priority(*s)
	return &p
}

// --- Handlers ---

// Create handles POST /api/v1/lists/{listId}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, ok := httputil.ParseUUID(w, chi.URLParam(r, "listId"), "list id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), listID.String(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priorityPtr(req.Priority),
		Categories:  req.Categories,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: task})
}

// List handles GET /api/v1/lists/{listId}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, ok := httputil.ParseUUID(w, chi.URLParam(r, "listId"), "list id")
	if !ok {
		return
	}

	tasks, err := h.service.Tasks(r.Context(), listID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tasks})
}

// Get handles GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "task id")
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: task})
}

// Update handles PATCH /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "task id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id.String(), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Priority:    priorityPtr(req.Priority),
		Categories:  req.Categories,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: task})
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "task id")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
