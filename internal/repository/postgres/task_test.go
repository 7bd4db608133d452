package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/TodoGo/internal/domain"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

func newTaskTestFixture(t *testing.T) (*TaskRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewTaskRepository(mock)
	return repo, mock
}

func sampleTask() *domain.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	prio := domain.PriorityHigh
	return &domain.Task{
		ID:         "7c8d9e0f-0000-4e3c-9a41-1f2f9a1f0003",
		ListID:     "9a1b2c3d-0000-4e3c-9a41-1f2f9a1f0002",
		Title:      "Buy milk",
		Completed:  false,
		Priority:   &prio,
		Categories: []string{"errand"},
		CreatedAt:  now,
	}
}

func taskColumns() []string {
	return []string{"id", "list_id", "title", "description", "completed", "due_date", "priority", "categories", "created_at", "updated_at"}
}

func taskRow(tk *domain.Task) *pgxmock.Rows {
	return pgxmock.NewRows(taskColumns()).AddRow(
		tk.ID, tk.ListID, tk.Title, tk.Description, tk.Completed,
		tk.DueDate, tk.Priority, tk.Categories, tk.CreatedAt, tk.UpdatedAt,
	)
}

func TestTaskRepository_Create_Success(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(
			tk.ID, tk.ListID, tk.Title, tk.Description, tk.Completed,
			tk.DueDate, tk.Priority, tk.Categories, tk.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tk)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_Found(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(tk.ID).
		WillReturnRows(taskRow(tk))

	got, err := repo.GetByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.Title, got.Title)
	require.NotNil(t, got.Priority)
	assert.Equal(t, domain.PriorityHigh, *got.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByListID_Empty(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs("list-1").
		WillReturnRows(pgxmock.NewRows(taskColumns()))

	tasks, err := repo.ListByListID(context.Background(), "list-1")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	tk := sampleTask()

	mock.ExpectExec("UPDATE tasks").
		WithArgs(
			tk.Title, tk.Description, tk.Completed, tk.DueDate,
			tk.Priority, tk.Categories, pgxmock.AnyArg(), tk.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), tk)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_Success(t *testing.T) {
	repo, mock := newTaskTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs("task-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "task-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
