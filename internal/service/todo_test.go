package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TodoGo/internal/domain"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

// --- Mock List Repository ---

type mockListRepository struct {
	mock.Mock
}

func (m *mockListRepository) Create(ctx context.Context, list *domain.TodoList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *mockListRepository) GetByID(ctx context.Context, id string) (*domain.TodoList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TodoList), args.Error(1)
}

func (m *mockListRepository) List(ctx context.Context) ([]domain.TodoList, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TodoList), args.Error(1)
}

func (m *mockListRepository) Update(ctx context.Context, list *domain.TodoList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *mockListRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Task Repository ---

type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskRepository) ListByListID(ctx context.Context, listID string) ([]domain.Task, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *mockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestTodoService(listRepo *mockListRepository, taskRepo *mockTaskRepository) *TodoService {
	return NewTodoService(listRepo, taskRepo, newTestLogger())
}

func existingList() *domain.TodoList {
	return &domain.TodoList{
		ID:        "9a1b2c3d-0000-4e3c-9a41-1f2f9a1f0002",
		Title:     "Groceries",
		CreatedAt: time.Now().UTC(),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// --- List operations ---

func TestCreateList_TrimsTitle(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	listRepo.On("Create", ctx, mock.AnythingOfType("*domain.TodoList")).Return(nil)

	list, err := svc.CreateList(ctx, CreateListInput{Title: "  Groceries  "})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", list.Title)
	assert.NotEmpty(t, list.ID)
}

func TestCreateList_BlankTitle(t *testing.T) {
	svc := newTestTodoService(new(mockListRepository), new(mockTaskRepository))

	_, err := svc.CreateList(context.Background(), CreateListInput{Title: "   "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateList_TitleTooLong(t *testing.T) {
	svc := newTestTodoService(new(mockListRepository), new(mockTaskRepository))

	_, err := svc.CreateList(context.Background(), CreateListInput{Title: strings.Repeat("x", 256)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateList_RequiresAtLeastOneField(t *testing.T) {
	svc := newTestTodoService(new(mockListRepository), new(mockTaskRepository))

	_, err := svc.UpdateList(context.Background(), "id", UpdateListInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateList_NotFound(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	listRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.UpdateList(ctx, "missing", UpdateListInput{Title: strPtr("New")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Task operations ---

func TestCreateTask_ListMustExist(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	listRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.CreateTask(ctx, "missing", CreateTaskInput{Title: "Buy milk"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	l := existingList()
	listRepo.On("GetByID", ctx, l.ID).Return(l, nil)

	bad := domain.Priority("urgent")
	_, err := svc.CreateTask(ctx, l.ID, CreateTaskInput{Title: "Buy milk", Priority: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateTask_DropsBlankCategories(t *testing.T) {
	listRepo := new(mockListRepository)
	taskRepo := new(mockTaskRepository)
	svc := newTestTodoService(listRepo, taskRepo)
	ctx := context.Background()

	l := existingList()
	listRepo.On("GetByID", ctx, l.ID).Return(l, nil)
	taskRepo.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

	task, err := svc.CreateTask(ctx, l.ID, CreateTaskInput{
		Title:      "Buy milk",
		Categories: []string{"errand", "  ", "", "food"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"errand", "food"}, task.Categories)
}

func TestCreateTask_TooManyCategories(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	l := existingList()
	listRepo.On("GetByID", ctx, l.ID).Return(l, nil)

	categories := make([]string, 11)
	for i := range categories {
		categories[i] = "c"
	}

	_, err := svc.CreateTask(ctx, l.ID, CreateTaskInput{Title: "Buy milk", Categories: categories})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateTask_RequiresAtLeastOneField(t *testing.T) {
	svc := newTestTodoService(new(mockListRepository), new(mockTaskRepository))

	_, err := svc.UpdateTask(context.Background(), "id", UpdateTaskInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateTask_TogglesCompleted(t *testing.T) {
	taskRepo := new(mockTaskRepository)
	svc := newTestTodoService(new(mockListRepository), taskRepo)
	ctx := context.Background()

	existing := &domain.Task{
		ID:        "task-1",
		ListID:    "list-1",
		Title:     "Buy milk",
		CreatedAt: time.Now().UTC(),
	}
	taskRepo.On("GetByID", ctx, "task-1").Return(existing, nil)
	taskRepo.On("Update", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

	task, err := svc.UpdateTask(ctx, "task-1", UpdateTaskInput{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Buy milk", task.Title)
}

func TestTasks_ListMustExist(t *testing.T) {
	listRepo := new(mockListRepository)
	svc := newTestTodoService(listRepo, new(mockTaskRepository))
	ctx := context.Background()

	listRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Tasks(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	taskRepo := new(mockTaskRepository)
	svc := newTestTodoService(new(mockListRepository), taskRepo)
	ctx := context.Background()

	taskRepo.On("Delete", ctx, "missing").Return(apperrors.ErrNotFound)

	err := svc.DeleteTask(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
