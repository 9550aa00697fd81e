package todolist

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/keys"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
)

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"id",
	"priority",
	"status",
	"title",
	"updated",
}

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:    0,
	model.PriorityMedium:  1,
	model.PriorityLow:     2,
	model.PriorityUnknown: 3,
}

// Model is the todo list view. It holds the last fetched todos and
// narrows and orders them locally.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	todos       []*model.Todo
	query       string
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	loaded      bool
	width       int
	height      int
}

// New creates a new todo list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Todos"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search todos..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetTodos replaces the loaded todos and re-renders the visible rows,
// keeping the cursor on the same todo when it is still visible.
func (m *Model) SetTodos(todos []*model.Todo) tea.Cmd {
	m.todos = todos
	m.loaded = true
	return m.refreshItems()
}

// Todos returns the todos currently visible, in display order.
func (m Model) Todos() []*model.Todo {
	items := m.list.Items()
	out := make([]*model.Todo, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(TodoItem); ok {
			out = append(out, ti.Todo)
		}
	}
	return out
}

// SelectedTodo returns the todo under the cursor.
func (m Model) SelectedTodo() (*model.Todo, bool) {
	it, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return nil, false
	}
	return it.Todo, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SortMode returns the active sort key.
func (m Model) SortMode() string {
	return sortModes[m.sortIndex]
}

// FilterSummary describes the active search and sort, or "" for defaults.
func (m Model) FilterSummary() string {
	var parts []string
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.query))
	}
	if m.sortIndex != 0 {
		parts = append(parts, "sort: "+m.SortMode())
	}
	return strings.Join(parts, " | ")
}

// Update handles messages for the todo list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.searchInput.Blur()
		return m, m.refreshItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.query = ""
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		return m, m.refreshItems()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) refreshItems() tea.Cmd {
	var selectedID int64
	if t, ok := m.SelectedTodo(); ok {
		selectedID = t.ID()
	}

	visible := visibleTodos(m.todos, m.query, m.SortMode())
	items := make([]list.Item, len(visible))
	cursor := 0
	for i, t := range visible {
		items[i] = TodoItem{Todo: t}
		if t.ID() == selectedID {
			cursor = i
		}
	}

	cmd := m.list.SetItems(items)
	m.list.Select(cursor)
	return cmd
}

// visibleTodos filters todos by a case-insensitive title or description
// match and orders them by mode. Ties fall back to id order.
func visibleTodos(todos []*model.Todo, query, mode string) []*model.Todo {
	q := strings.ToLower(query)
	out := make([]*model.Todo, 0, len(todos))
	for _, t := range todos {
		if q == "" || matches(t, q) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b *model.Todo) int {
		var c int
		switch mode {
		case "priority":
			c = cmp.Compare(priorityRank[a.Priority()], priorityRank[b.Priority()])
		case "status":
			c = cmp.Compare(a.Status(), b.Status())
		case "title":
			c = cmp.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
		case "updated":
			// Most recently changed first.
			c = lastChange(b).Compare(lastChange(a))
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

func matches(t *model.Todo, q string) bool {
	if strings.Contains(strings.ToLower(t.Title()), q) {
		return true
	}
	d := t.Description()
	return d != nil && strings.Contains(strings.ToLower(*d), q)
}

func lastChange(t *model.Todo) time.Time {
	if u := t.UpdatedAt(); u != nil {
		return *u
	}
	return t.CreatedAt()
}

// View renders the todo list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no todos are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.loaded:
		return style.Render("Loading todos...")
	case m.query != "":
		return style.Render("No matching todos.\nPress / and clear the search.")
	default:
		return style.Render("No todos yet.\n\nPress n to create one.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
