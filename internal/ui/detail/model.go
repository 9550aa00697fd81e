package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/keys"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// LoadedMsg carries a freshly fetched todo, or the error that prevented it.
type LoadedMsg struct {
	Todo *model.Todo
	Err  error
}

// Action names a change requested from the detail view.
type Action int

const (
	ActionEdit Action = iota
	ActionToggleDone
	ActionDelete
)

// ActionMsg signals the parent to apply an action to the shown todo.
type ActionMsg struct {
	Action Action
	Todo   *model.Todo
}

// Model is the todo detail view component.
type Model struct {
	todo     *model.Todo
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err == nil {
			m.SetTodo(msg.Todo)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }
		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)
		case key.Matches(msg, m.keys.ToggleDone):
			return m, m.action(ActionToggleDone)
		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	if m.todo == nil {
		return nil
	}
	todo := m.todo
	return func() tea.Msg {
		return ActionMsg{Action: a, Todo: todo}
	}
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading todo...")
	}
	if m.todo == nil {
		return placeholder.Render("No todo selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.todo == nil {
		return ""
	}
	t := m.todo

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := titleStyle.Render(fmt.Sprintf("#%d %s", t.ID(), t.Title()))
	if t.Completed() {
		title = theme.CompletedStyle.Bold(true).Render(fmt.Sprintf("#%d %s", t.ID(), t.Title()))
	}
	sections = append(sections, title)

	done := "open"
	if t.Completed() {
		done = "done"
	}
	badges := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(t.Status()).Render(string(t.Status())), "  ",
		theme.PriorityStyle(t.Priority()).Render(strings.ToUpper(string(t.Priority()))), "  ",
		lipgloss.NewStyle().Foreground(theme.ColorGray).Render(done),
	)
	sections = append(sections, badges, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, metaStyle.Render("Created:")+valStyle.Render(t.CreatedAt().Local().Format("2006-01-02 15:04:05")))
	if u := t.UpdatedAt(); u != nil {
		sections = append(sections, metaStyle.Render("Updated:")+valStyle.Render(u.Local().Format("2006-01-02 15:04:05")))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Italic(true).
		Render("No description")
	if d := t.Description(); d != nil && *d != "" {
		body = lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(*d)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Todo returns the todo being displayed, if any.
func (m Model) Todo() *model.Todo {
	return m.todo
}

// SetTodo updates the todo being displayed and re-renders the content.
func (m *Model) SetTodo(t *model.Todo) {
	m.todo = t
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
