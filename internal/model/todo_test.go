package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func useFixedClock(t *testing.T, start time.Time, step time.Duration) {
	t.Helper()
	current := start
	orig := Now
	Now = func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
	t.Cleanup(func() { Now = orig })
}

func TestNewTodoDefaults(t *testing.T) {
	todo := NewTodo("Minimal Todo")

	if todo.ID() != 0 {
		t.Fatalf("expected unassigned id, got %d", todo.ID())
	}
	if todo.Title() != "Minimal Todo" {
		t.Fatalf("expected title %q, got %q", "Minimal Todo", todo.Title())
	}
	if todo.Completed() {
		t.Fatal("expected completed to default to false")
	}
	if todo.Priority() != PriorityMedium {
		t.Fatalf("expected priority medium, got %q", todo.Priority())
	}
	if todo.Status() != StatusPending {
		t.Fatalf("expected status pending, got %q", todo.Status())
	}
	if todo.Description() != nil {
		t.Fatalf("expected nil description, got %q", *todo.Description())
	}
	if todo.CreatedAt().IsZero() {
		t.Fatal("expected createdAt to be stamped")
	}
	if todo.UpdatedAt() != nil {
		t.Fatalf("expected nil updatedAt, got %v", todo.UpdatedAt())
	}
}

func TestNewTodoOptionsDoNotStampUpdatedAt(t *testing.T) {
	desc := "details"
	todo := NewTodo("Title",
		WithDescription(&desc),
		WithCompleted(true),
		WithPriority(PriorityHigh),
		WithStatus(StatusActive),
	)

	if todo.UpdatedAt() != nil {
		t.Fatal("construction options must not count as mutations")
	}
	if *todo.Description() != desc || !todo.Completed() ||
		todo.Priority() != PriorityHigh || todo.Status() != StatusActive {
		t.Fatalf("options not applied: %+v", todo.Snapshot())
	}
}

func TestSettersStampUpdatedAt(t *testing.T) {
	desc := "desc"
	setters := map[string]func(*Todo){
		"title":       func(td *Todo) { td.SetTitle("New") },
		"description": func(td *Todo) { td.SetDescription(&desc) },
		"completed":   func(td *Todo) { td.SetCompleted(true) },
		"priority":    func(td *Todo) { td.SetPriority(PriorityLow) },
		"status":      func(td *Todo) { td.SetStatus(StatusInactive) },
	}

	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			useFixedClock(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), time.Second)
			todo := NewTodo("Title")
			set(todo)

			updated := todo.UpdatedAt()
			if updated == nil {
				t.Fatal("expected updatedAt to be set")
			}
			if !updated.After(todo.CreatedAt()) {
				t.Fatalf("expected updatedAt %v after createdAt %v", updated, todo.CreatedAt())
			}
		})
	}
}

func TestSetterStampsStrictlyAfterCreatedAtOnFrozenClock(t *testing.T) {
	useFixedClock(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 0)

	todo := NewTodo("Title").SetCompleted(true)

	if !todo.UpdatedAt().After(todo.CreatedAt()) {
		t.Fatalf("expected updatedAt strictly after createdAt, got %v and %v",
			todo.UpdatedAt(), todo.CreatedAt())
	}
}

func TestFluentSetters(t *testing.T) {
	desc := "Test Description"
	todo := NewTodo("x").
		SetTitle("Test Title").
		SetDescription(&desc).
		SetCompleted(true).
		SetPriority(PriorityHigh).
		SetStatus(StatusActive)

	if todo.Title() != "Test Title" || *todo.Description() != desc ||
		!todo.Completed() || todo.Priority() != PriorityHigh || todo.Status() != StatusActive {
		t.Fatalf("unexpected state after fluent setters: %+v", todo.Snapshot())
	}
}

func TestAssignIDOnlyOnce(t *testing.T) {
	todo := NewTodo("Title")
	if err := todo.AssignID(7); err != nil {
		t.Fatalf("assign id: %v", err)
	}
	if err := todo.AssignID(8); err == nil {
		t.Fatal("expected reassigning id to fail")
	}
	if todo.ID() != 7 {
		t.Fatalf("expected id 7, got %d", todo.ID())
	}
}

func TestTodoJSONRoundTripKeepsNulls(t *testing.T) {
	useFixedClock(t, time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), time.Second)
	todo := NewTodo("Minimal Todo")
	if err := todo.AssignID(3); err != nil {
		t.Fatalf("assign id: %v", err)
	}

	data, err := json.Marshal(todo)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		`"id":3`, `"description":null`, `"updatedAt":null`,
		`"priority":"medium"`, `"status":"pending"`, `"completed":false`,
		`"createdAt":"2025-03-04T05:06:07Z"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}

	var decoded Todo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID() != 3 || decoded.UpdatedAt() != nil || !decoded.CreatedAt().Equal(todo.CreatedAt()) {
		t.Fatalf("unexpected decoded todo: %+v", decoded.Snapshot())
	}
}
