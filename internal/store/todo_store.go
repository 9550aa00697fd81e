package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/todo-tracker/internal/model"
)

// todoRow is the database shape of a todo.
type todoRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	Completed   bool           `db:"completed"`
	Priority    model.Priority `db:"priority"`
	Status      model.Status   `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   *time.Time     `db:"updated_at"`
}

func (r todoRow) toModel() *model.Todo {
	return model.RestoreTodo(model.TodoSnapshot{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

const todoColumns = "id, title, description, completed, priority, status, created_at, updated_at"

// CreateTodo inserts a new todo and assigns the generated id to it.
func (s *SQLStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if strings.TrimSpace(todo.Title()) == "" {
		return fmt.Errorf("todo title must not be empty")
	}
	if todo.ID() != 0 {
		return fmt.Errorf("todo already has id %d", todo.ID())
	}

	snap := todo.Snapshot()
	query := s.db.Rebind(`
		INSERT INTO todos (
			title, description, completed, priority, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		snap.Title, snap.Description, snap.Completed,
		string(snap.Priority), string(snap.Status),
		snap.CreatedAt.UTC(), utcPtr(snap.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}

	return todo.AssignID(id)
}

// UpdateTodo writes every field of an existing todo.
func (s *SQLStore) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	if strings.TrimSpace(todo.Title()) == "" {
		return fmt.Errorf("todo title must not be empty")
	}

	snap := todo.Snapshot()
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE todos SET
			title = ?, description = ?, completed = ?,
			priority = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		snap.Title, snap.Description, snap.Completed,
		string(snap.Priority), string(snap.Status), utcPtr(snap.UpdatedAt),
		snap.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", snap.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %d %w", snap.ID, ErrNotFound)
	}
	return nil
}

// DeleteTodo removes a todo by id. Deletion is permanent.
func (s *SQLStore) DeleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %d %w", id, ErrNotFound)
	}
	return nil
}

// GetTodoByID retrieves a single todo by id.
func (s *SQLStore) GetTodoByID(ctx context.Context, id int64) (*model.Todo, error) {
	var row todoRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+todoColumns+" FROM todos WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	return row.toModel(), nil
}

// GetTodos retrieves todos matching the filter. It never returns a nil
// slice, so an empty result encodes as [].
func (s *SQLStore) GetTodos(ctx context.Context, filter TodoFilter) ([]*model.Todo, error) {
	query, args := buildTodoQuery(s.dialect, "SELECT "+todoColumns, filter, true)

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	todos := make([]*model.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.toModel())
	}
	return todos, nil
}

// GetTodoCount returns the count of todos matching the filter, ignoring
// sorting and pagination.
func (s *SQLStore) GetTodoCount(ctx context.Context, filter TodoFilter) (int, error) {
	query, args := buildTodoQuery(s.dialect, "SELECT COUNT(*)", filter, false)

	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("counting todos: %w", err)
	}
	return count, nil
}

var allowedSorts = map[string]bool{
	"id":         true,
	"title":      true,
	"priority":   true,
	"status":     true,
	"completed":  true,
	"created_at": true,
	"updated_at": true,
}

// buildTodoQuery constructs the SQL query and args for a TodoFilter using
// '?' placeholders; callers rebind for the active dialect.
func buildTodoQuery(d dialect, selectClause string, filter TodoFilter, paginate bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"(LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)")
		q := "%" + strings.ToLower(*filter.Query) + "%"
		args = append(args, q, q)
	}

	query := selectClause + " FROM todos"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if !paginate {
		return query, args
	}

	sortBy := "id"
	if allowedSorts[filter.SortBy] {
		sortBy = filter.SortBy
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)
	if sortBy != "id" {
		query += ", id ASC"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 && d == dialectSQLite {
		// SQLite only accepts OFFSET after a LIMIT clause.
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
