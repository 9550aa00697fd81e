package store

import (
	"context"
	"errors"

	"github.com/nhle/todo-tracker/internal/model"
)

// ErrNotFound is returned (wrapped with the id) when a todo does not exist.
var ErrNotFound = errors.New("not found")

// TodoFilter controls filtering, sorting, and pagination for todo queries.
// The zero value selects every todo ordered by id.
type TodoFilter struct {
	Status    *model.Status
	Priority  *model.Priority
	Completed *bool
	Query     *string // search title + description
	SortBy    string  // "id", "title", "priority", "status", "completed", "created_at", "updated_at"
	SortDesc  bool
	Limit     int
	Offset    int
}

// Store defines the persistence interface for todos.
type Store interface {
	// CreateTodo inserts todo and assigns the generated id to it.
	CreateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id int64) error
	GetTodoByID(ctx context.Context, id int64) (*model.Todo, error)
	GetTodos(ctx context.Context, filter TodoFilter) ([]*model.Todo, error)
	GetTodoCount(ctx context.Context, filter TodoFilter) (int, error)
	Close() error
}
