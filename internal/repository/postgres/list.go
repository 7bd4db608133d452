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

// ListRepository implements repository.ListRepository using PostgreSQL.
type ListRepository struct {
	db database.DBTX
}

// NewListRepository creates a new PostgreSQL-backed todo list repository.
func NewListRepository(db database.DBTX) *ListRepository {
	return &ListRepository{db: db}
}

// Create inserts a new list into the database.
func (r *ListRepository) Create(ctx context.Context, l *domain.TodoList) error {
	query := `
		INSERT INTO todo_lists (id, title, description, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.Title,
		l.Description,
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}

	return nil
}

// GetByID retrieves a list by its ID.
func (r *ListRepository) GetByID(ctx context.Context, id string) (*domain.TodoList, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM todo_lists
		WHERE id = $1`

	var l domain.TodoList
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan list: %w", err)
	}

	return &l, nil
}

// List returns all lists, newest first.
func (r *ListRepository) List(ctx context.Context) ([]domain.TodoList, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM todo_lists
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todo lists: %w", err)
	}
	defer rows.Close()

	var lists []domain.TodoList
	for rows.Next() {
		var l domain.TodoList
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Description,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		lists = append(lists, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list rows: %w", err)
	}

	if lists == nil {
		lists = []domain.TodoList{}
	}

	return lists, nil
}

// Update modifies an existing list in the database.
func (r *ListRepository) Update(ctx context.Context, l *domain.TodoList) error {
	now := time.Now().UTC()
	l.UpdatedAt = &now

	query := `
		UPDATE todo_lists
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query,
		l.Title,
		l.Description,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("list", l.ID)
	}

	return nil
}

// Delete removes a list from the database; the schema cascades to its tasks.
func (r *ListRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM todo_lists WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("list", id)
	}

	return nil
}
