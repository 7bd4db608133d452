package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/TodoGo/internal/service"
	"github.com/utafrali/TodoGo/pkg/httputil"
	"github.com/utafrali/TodoGo/pkg/validator"
)

// ListHandler handles HTTP requests for todo list endpoints.
type ListHandler struct {
	service *service.TodoService
	logger  *slog.Logger
}

// NewListHandler creates a new list HTTP handler.
func NewListHandler(svc *service.TodoService, logger *slog.Logger) *ListHandler {
	return &ListHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateListRequest is the JSON request body for creating a list.
type CreateListRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateListRequest is the JSON request body for partially updating a list.
type UpdateListRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// --- Handlers ---

// Create handles POST /api/v1/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateListRequest
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

	list, err := h.service.CreateList(r.Context(), service.CreateListInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: list})
}

// List handles GET /api/v1/lists
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.Lists(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: lists})
}

// Get handles GET /api/v1/lists/{id}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "list id")
	if !ok {
		return
	}

	list, err := h.service.GetList(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// Update handles PATCH /api/v1/lists/{id}
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "list id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateListRequest
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

	list, err := h.service.UpdateList(r.Context(), id.String(), service.UpdateListInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// Delete handles DELETE /api/v1/lists/{id}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "list id")
	if !ok {
		return
	}

	if err := h.service.DeleteList(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
