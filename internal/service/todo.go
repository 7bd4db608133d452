package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/TodoGo/internal/domain"
	"github.com/utafrali/TodoGo/internal/repository"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

// Field length bounds for lists and tasks.
const (
	maxTitleLength           = 255
	maxListDescriptionLength = 1000
	maxTaskDescriptionLength = 2000
	maxCategories            = 10
	maxCategoryLength        = 50
)

// TodoService implements the business logic for todo lists and tasks.
type TodoService struct {
	listRepo repository.ListRepository
	taskRepo repository.TaskRepository
	logger   *slog.Logger
}

// NewTodoService creates a new todo service.
func NewTodoService(
	listRepo repository.ListRepository,
	taskRepo repository.TaskRepository,
	logger *slog.Logger,
) *TodoService {
	return &TodoService{
		listRepo: listRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// --- Input types ---

// CreateListInput holds the parameters for creating a new list.
type CreateListInput struct {
	Title       string
	Description string
}

// UpdateListInput holds the parameters for partially updating a list.
// At least one field must be set.
type UpdateListInput struct {
	Title       *string
	Description *string
}

// CreateTaskInput holds the parameters for creating a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    *domain.Priority
	Categories  []string
}

// UpdateTaskInput holds the parameters for partially updating a task.
// At least one field must be set.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *domain.Priority
	Categories  []string
}

// --- List operations ---

// CreateList validates the input and persists a new list.
func (s *TodoService) CreateList(ctx context.Context, input CreateListInput) (*domain.TodoList, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if len(input.Description) > maxListDescriptionLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", maxListDescriptionLength))
	}

	list := &domain.TodoList{
		ID:          uuid.New().String(),
		Title:       title,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.logger.InfoContext(ctx, "list created", slog.String("list_id", list.ID))

	return list, nil
}

// GetList returns the list with the given ID.
func (s *TodoService) GetList(ctx context.Context, id string) (*domain.TodoList, error) {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("list", id)
		}
		return nil, fmt.Errorf("get list: %w", err)
	}

	return list, nil
}

// Lists returns all lists.
func (s *TodoService) Lists(ctx context.Context) ([]domain.TodoList, error) {
	lists, err := s.listRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	return lists, nil
}

// UpdateList applies a partial update to a list. At least one field must be
// provided.
func (s *TodoService) UpdateList(ctx context.Context, id string, input UpdateListInput) (*domain.TodoList, error) {
	if input.Title == nil && input.Description == nil {
		return nil, apperrors.InvalidInput("at least one field must be provided")
	}

	list, err := s.GetList(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		list.Title = title
	}
	if input.Description != nil {
		if len(*input.Description) > maxListDescriptionLength {
			return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", maxListDescriptionLength))
		}
		list.Description = *input.Description
	}

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}

	return list, nil
}

// DeleteList removes a list; its tasks go with it through the schema cascade.
func (s *TodoService) DeleteList(ctx context.Context, id string) error {
	if err := s.listRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("list", id)
		}
		return fmt.Errorf("delete list: %w", err)
	}

	s.logger.InfoContext(ctx, "list deleted", slog.String("list_id", id))

	return nil
}

// --- Task operations ---

// CreateTask validates the input and persists a new task under the given
// list. The list must exist.
func (s *TodoService) CreateTask(ctx context.Context, listID string, input CreateTaskInput) (*domain.Task, error) {
	if _, err := s.GetList(ctx, listID); err != nil {
		return nil, err
	}

	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if len(input.Description) > maxTaskDescriptionLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", maxTaskDescriptionLength))
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.InvalidInput("priority must be one of: low, medium, high")
	}
	categories, err := validateCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		ListID:      listID,
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Categories:  categories,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID),
		slog.String("list_id", listID),
	)

	return task, nil
}

// GetTask returns the task with the given ID.
func (s *TodoService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("task", id)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

// Tasks returns all tasks belonging to the given list. The list must exist.
func (s *TodoService) Tasks(ctx context.Context, listID string) ([]domain.Task, error) {
	if _, err := s.GetList(ctx, listID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByListID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to a task. At least one field must be
// provided.
func (s *TodoService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error) {
	if input.Title == nil && input.Description == nil && input.Completed == nil &&
		input.DueDate == nil && input.Priority == nil && input.Categories == nil {
		return nil, apperrors.InvalidInput("at least one field must be provided")
	}

	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		if len(*input.Description) > maxTaskDescriptionLength {
			return nil, apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", maxTaskDescriptionLength))
		}
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.InvalidInput("priority must be one of: low, medium, high")
		}
		task.Priority = input.Priority
	}
	if input.Categories != nil {
		categories, err := validateCategories(input.Categories)
		if err != nil {
			return nil, err
		}
		task.Categories = categories
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task.
func (s *TodoService) DeleteTask(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("task", id)
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "task deleted", slog.String("task_id", id))

	return nil
}

// --- Validation helpers ---

// validateTitle trims the title and enforces the length bounds. Returns the
// trimmed title.
func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", apperrors.InvalidInput("title is required")
	}
	if len(trimmed) > maxTitleLength {
		return "", apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return trimmed, nil
}

// validateCategories drops blank entries and enforces the count and length
// bounds.
func validateCategories(categories []string) ([]string, error) {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if len(c) > maxCategoryLength {
			return nil, apperrors.InvalidInput(fmt.Sprintf("categories must be at most %d characters each", maxCategoryLength))
		}
		cleaned = append(cleaned, c)
	}
	if len(cleaned) > maxCategories {
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d categories are allowed", maxCategories))
	}
	return cleaned, nil
}
