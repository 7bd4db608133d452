package repository

import (
	"context"
	"time"

	"github.com/utafrali/TodoGo/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ListRepository defines the interface for todo list persistence operations.
type ListRepository interface {
	// Create inserts a new list into the store.
	Create(ctx context.Context, list *domain.TodoList) error

	// GetByID retrieves a list by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.TodoList, error)

	// List returns all lists.
	List(ctx context.Context) ([]domain.TodoList, error)

	// Update modifies an existing list in the store.
	Update(ctx context.Context, list *domain.TodoList) error

	// Delete removes a list and, through the schema cascade, its tasks.
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines the interface for task persistence operations.
type TaskRepository interface {
	// Create inserts a new task into the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ListByListID returns all tasks belonging to the given list.
	ListByListID(ctx context.Context, listID string) ([]domain.Task, error)

	// Update modifies an existing task in the store.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// TokenBlacklistRepository persists revoked tokens. A token string appears at
// most once; inserting a duplicate reports a conflict.
type TokenBlacklistRepository interface {
	// IsRevoked reports whether the exact token string has been blacklisted.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Revoke records the token as blacklisted until expiresAt and prunes
	// entries already past their expiry in the same transaction. A duplicate
	// token yields an error wrapping apperrors.ErrConflict.
	Revoke(ctx context.Context, token, userID string, expiresAt time.Time) error

	// PruneExpired deletes all entries whose expiry predates now and returns
	// the number of rows removed.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}
