package todolist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

// TodoItem wraps a todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo *model.Todo
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Title() }

// Title returns the todo title for the list.
func (i TodoItem) Title() string { return i.Todo.Title() }

// Description returns the todo description or "".
func (i TodoItem) Description() string {
	if d := i.Todo.Description(); d != nil {
		return *d
	}
	return ""
}

// ItemDelegate implements list.ItemDelegate for single-line todo rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TodoItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(it.Todo, index == m.Index(), time.Now()))
}

var (
	cursorStyle    = lipgloss.NewStyle().Foreground(theme.ColorBlue).Bold(true)
	timestampStyle = lipgloss.NewStyle().Foreground(theme.ColorGray)
)

func renderRow(t *model.Todo, selected bool, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}

	check := "○"
	title := t.Title()
	if t.Completed() {
		check = "✓"
		title = theme.CompletedStyle.Render(title)
	}

	changed := t.CreatedAt()
	if u := t.UpdatedAt(); u != nil {
		changed = *u
	}

	return fmt.Sprintf(
		"%s%s #%d %s %s %s  %s",
		cursor,
		check,
		t.ID(),
		theme.PriorityStyle(t.Priority()).Render(priorityLabel(t.Priority())),
		theme.StatusStyle(t.Status()).Render(string(t.Status())),
		title,
		timestampStyle.Render(relativeTime(now, changed)),
	)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HI"
	case model.PriorityMedium:
		return "MD"
	case model.PriorityLow:
		return "LO"
	default:
		return "??"
	}
}
