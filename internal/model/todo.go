package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Now is the clock used to stamp todo timestamps. Tests may replace it.
var Now = time.Now

// Todo is a persisted task record. Fields are only reachable through
// getters and setters so that every mutation refreshes UpdatedAt.
type Todo struct {
	id          int64
	title       string
	description *string
	completed   bool
	priority    Priority
	status      Status
	createdAt   time.Time
	updatedAt   *time.Time
}

// TodoOption sets a field at construction time without counting as a
// mutation.
type TodoOption func(*Todo)

// WithDescription sets the initial description.
func WithDescription(description *string) TodoOption {
	return func(t *Todo) { t.description = description }
}

// WithCompleted sets the initial completion flag.
func WithCompleted(completed bool) TodoOption {
	return func(t *Todo) { t.completed = completed }
}

// WithPriority sets the initial priority.
func WithPriority(p Priority) TodoOption {
	return func(t *Todo) { t.priority = p }
}

// WithStatus sets the initial status.
func WithStatus(s Status) TodoOption {
	return func(t *Todo) { t.status = s }
}

// NewTodo creates an unsaved todo with default priority, status and
// completion, stamping CreatedAt. UpdatedAt stays nil.
func NewTodo(title string, opts ...TodoOption) *Todo {
	t := &Todo{
		title:     title,
		priority:  PriorityMedium,
		status:    StatusPending,
		createdAt: Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TodoSnapshot is the flat, exported view of a Todo used by persistence.
type TodoSnapshot struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// RestoreTodo rebuilds a todo from its persisted state.
func RestoreTodo(s TodoSnapshot) *Todo {
	return &Todo{
		id:          s.ID,
		title:       s.Title,
		description: s.Description,
		completed:   s.Completed,
		priority:    s.Priority,
		status:      s.Status,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Snapshot returns the todo's current state.
func (t *Todo) Snapshot() TodoSnapshot {
	return TodoSnapshot{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		Completed:   t.completed,
		Priority:    t.priority,
		Status:      t.status,
		CreatedAt:   t.createdAt,
		UpdatedAt:   t.updatedAt,
	}
}

// AssignID records the identity generated by the persistence layer. An id
// can only be assigned once.
func (t *Todo) AssignID(id int64) error {
	if t.id != 0 {
		return fmt.Errorf("todo already has id %d", t.id)
	}
	t.id = id
	return nil
}

func (t *Todo) ID() int64             { return t.id }
func (t *Todo) Title() string         { return t.title }
func (t *Todo) Description() *string  { return t.description }
func (t *Todo) Completed() bool       { return t.completed }
func (t *Todo) Priority() Priority    { return t.priority }
func (t *Todo) Status() Status        { return t.status }
func (t *Todo) CreatedAt() time.Time  { return t.createdAt }
func (t *Todo) UpdatedAt() *time.Time { return t.updatedAt }

// SetTitle replaces the title.
func (t *Todo) SetTitle(title string) *Todo {
	t.title = title
	t.touch()
	return t
}

// SetDescription replaces the description; nil clears it.
func (t *Todo) SetDescription(description *string) *Todo {
	t.description = description
	t.touch()
	return t
}

// SetCompleted sets the completion flag.
func (t *Todo) SetCompleted(completed bool) *Todo {
	t.completed = completed
	t.touch()
	return t
}

// SetPriority sets the priority.
func (t *Todo) SetPriority(p Priority) *Todo {
	t.priority = p
	t.touch()
	return t
}

// SetStatus sets the status.
func (t *Todo) SetStatus(s Status) *Todo {
	t.status = s
	t.touch()
	return t
}

func (t *Todo) touch() {
	now := Now()
	// UpdatedAt must sort strictly after CreatedAt even on a coarse clock.
	// Microseconds survive a round trip through postgres timestamps.
	if !now.After(t.createdAt) {
		now = t.createdAt.Add(time.Microsecond)
	}
	t.updatedAt = &now
}

type todoJSON struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// MarshalJSON renders the API representation of the todo.
func (t *Todo) MarshalJSON() ([]byte, error) {
	return json.Marshal(todoJSON(t.Snapshot()))
}

// UnmarshalJSON decodes the API representation of a todo.
func (t *Todo) UnmarshalJSON(data []byte) error {
	var raw todoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = *RestoreTodo(TodoSnapshot(raw))
	return nil
}
