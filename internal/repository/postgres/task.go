package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/TodoGo/internal/domain"
	"github.com/utafrali/TodoGo/pkg/database"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	db database.DBTX
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task into the database.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, list_id, title, description, completed, due_date, priority, categories, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.ListID,
		t.Title,
		t.Description,
		t.Completed,
		t.DueDate,
		t.Priority,
		t.Categories,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT id, list_id, title, description, completed, due_date, priority, categories, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	var t domain.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ListID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.DueDate,
		&t.Priority,
		&t.Categories,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &t, nil
}

// ListByListID returns all tasks belonging to the given list, oldest first.
func (r *TaskRepository) ListByListID(ctx context.Context, listID string) ([]domain.Task, error) {
	query := `
		SELECT id, list_id, title, description, completed, due_date, priority, categories, created_at, updated_at
		FROM tasks
		WHERE list_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID,
			&t.ListID,
			&t.Title,
			&t.Description,
			&t.Completed,
			&t.DueDate,
			&t.Priority,
			&t.Categories,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, nil
}

// Update modifies an existing task in the database.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()
	t.UpdatedAt = &now

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, due_date = $4,
		    priority = $5, categories = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Completed,
		t.DueDate,
		t.Priority,
		t.Categories,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", t.ID)
	}

	return nil
}

// Delete removes a task from the database by its ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", id)
	}

	return nil
}
