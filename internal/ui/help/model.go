package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/keys"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders every keybinding grouped by category, followed by the
// order in which p and s cycle through values.
func (m Model) View() string {
	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		heading.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		heading.Render("Value Cycles"),
		cycleLine("priority", priorityLabels()),
		cycleLine("status", statusLabels()),
	)

	return theme.BorderStyle.
		Padding(1, 2).
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

func cycleLine(name string, labels []string) string {
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10).Render(name)
	arrow := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(" → ")
	return label + strings.Join(labels, arrow)
}

func priorityLabels() []string {
	var out []string
	for _, p := range model.ValidPriorities() {
		out = append(out, theme.PriorityStyle(p).Render(string(p)))
	}
	return out
}

func statusLabels() []string {
	var out []string
	for _, st := range model.ValidStatuses() {
		out = append(out, theme.StatusStyle(st).UnsetPadding().Render(string(st)))
	}
	return out
}

// ShortView renders the compact one-line help.
func (m Model) ShortView() string {
	short := m.help
	short.ShowAll = false
	return short.View(m.keys)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
