package domain

import (
	"time"
)

// TodoList groups tasks under a title. Deleting a list cascades to its tasks.
type TodoList struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}
