package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

const titleMaxWidth = 50

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle       = lipgloss.NewStyle().Bold(true).Width(12)
	mutedStyle       = lipgloss.NewStyle().Foreground(theme.ColorGray)
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// printNotifications writes one line per notification, styled by type.
func printNotifications(w io.Writer, notifications []model.Notification) {
	for _, n := range notifications {
		style := theme.NotificationStyle(n.Type).UnsetBorderStyle().UnsetPadding()
		fmt.Fprintln(w, style.Render(theme.NotificationIcon(n.Type)+" "+n.Message))
	}
}

// formatTodoTable renders todos as aligned columns. total is the number of
// matches on the server; a negative total is not shown.
func formatTodoTable(todos []*model.Todo, total int) string {
	if len(todos) == 0 {
		return mutedStyle.Render("No todos found.") + "\n"
	}

	headers := []string{"ID", "DONE", "PRIORITY", "STATUS", "CREATED", "TITLE"}
	rows := make([][]string, len(todos))
	for i, t := range todos {
		done := " "
		title := truncate(t.Title(), titleMaxWidth)
		if t.Completed() {
			done = "✓"
			title = theme.CompletedStyle.Render(title)
		}
		rows[i] = []string{
			fmt.Sprintf("%d", t.ID()),
			done,
			theme.PriorityStyle(t.Priority()).Render(string(t.Priority())),
			theme.StatusStyle(t.Status()).UnsetPadding().Render(string(t.Status())),
			t.CreatedAt().Local().Format("2006-01-02 15:04"),
			title,
		}
	}

	var b strings.Builder
	b.WriteString(formatColumns(headers, rows))
	if total >= 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d todos", len(todos), total)))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatColumns pads every cell to its column width. Widths are measured
// without ANSI styling.
func formatColumns(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i, cell := range cells {
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i == len(cells)-1 {
				b.WriteByte('\n')
				continue
			}
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
	}

	writeRow(headers, &tableHeaderStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

// formatTodoDetail renders every field of t, one per line.
func formatTodoDetail(t *model.Todo) string {
	description := mutedStyle.Render("(none)")
	if d := t.Description(); d != nil {
		description = *d
	}
	updated := mutedStyle.Render("never")
	if u := t.UpdatedAt(); u != nil {
		updated = u.Local().Format(time.RFC3339)
	}

	fields := [][2]string{
		{"ID", fmt.Sprintf("%d", t.ID())},
		{"Title", t.Title()},
		{"Description", description},
		{"Completed", fmt.Sprintf("%t", t.Completed())},
		{"Priority", theme.PriorityStyle(t.Priority()).Render(string(t.Priority()))},
		{"Status", theme.StatusStyle(t.Status()).UnsetPadding().Render(string(t.Status()))},
		{"Created", t.CreatedAt().Local().Format(time.RFC3339)},
		{"Updated", updated},
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(labelStyle.Render(f[0]))
		b.WriteString(f[1])
		b.WriteByte('\n')
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
