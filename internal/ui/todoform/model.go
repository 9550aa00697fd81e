package todoform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-tracker/internal/client"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/theme"
	"github.com/nhle/todo-tracker/internal/validation"
)

// TodoCreatedMsg is dispatched when the create form is submitted.
type TodoCreatedMsg struct {
	Request client.CreateTodoRequest
}

// TodoUpdatedMsg is dispatched when the edit form is submitted. Request
// only carries the fields the user changed.
type TodoUpdatedMsg struct {
	ID      int64
	Request client.UpdateTodoRequest
}

// TodoFormCancelMsg is dispatched when the user cancels the form.
type TodoFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	status      model.Status
	completed   bool
}

// Model is the Bubble Tea model for the todo create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	original formBindings
	editMode bool
	editID   int64
	width    int
	height   int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     defaultBindings(),
		width:  width,
		height: height,
	}
}

func defaultBindings() *formBindings {
	return &formBindings{
		priority: model.PriorityMedium,
		status:   model.StatusPending,
	}
}

// StartCreate initializes the form for creating a new todo.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	*m.fb = *defaultBindings()
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with the current values of todo.
func (m *Model) StartEdit(todo *model.Todo) tea.Cmd {
	m.editMode = true
	m.editID = todo.ID()
	m.fb.title = todo.Title()
	m.fb.description = ""
	if d := todo.Description(); d != nil {
		m.fb.description = *d
	}
	m.fb.priority = todo.Priority()
	m.fb.status = todo.Status()
	m.fb.completed = todo.Completed()
	m.original = *m.fb
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return TodoFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.editMode {
		titleText = fmt.Sprintf("Edit Todo #%d", m.editID)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			CharLimit(validation.TitleMaxLength).
			Value(&m.fb.title).
			Validate(validateTitle),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(enumOptions(model.ValidPriorities())...).
			Value(&m.fb.priority),
		huh.NewSelect[model.Status]().
			Title("Status").
			Options(enumOptions(model.ValidStatuses())...).
			Value(&m.fb.status),
	}
	if m.editMode {
		fields = append(fields, huh.NewConfirm().
			Title("Completed").
			Value(&m.fb.completed))
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func enumOptions[T ~string](values []T) []huh.Option[T] {
	opts := make([]huh.Option[T], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(string(v), v)
	}
	return opts
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	if m.editMode {
		id := m.editID
		req := updateRequest(m.original, fb)
		return func() tea.Msg { return TodoUpdatedMsg{ID: id, Request: req} }
	}
	req := createRequest(fb)
	return func() tea.Msg { return TodoCreatedMsg{Request: req} }
}

func createRequest(fb formBindings) client.CreateTodoRequest {
	req := client.CreateTodoRequest{
		Title:    strings.TrimSpace(fb.title),
		Priority: &fb.priority,
		Status:   &fb.status,
	}
	if d := strings.TrimSpace(fb.description); d != "" {
		req.Description = &d
	}
	return req
}

// updateRequest diffs the edited values against the ones the form opened
// with. A description cleared in the form is removed.
func updateRequest(before, after formBindings) client.UpdateTodoRequest {
	var req client.UpdateTodoRequest
	if title := strings.TrimSpace(after.title); title != before.title {
		req.Title = &title
	}
	switch d := strings.TrimSpace(after.description); {
	case d == before.description:
	case d == "":
		req.ClearDescription = true
	default:
		req.Description = &d
	}
	if after.priority != before.priority {
		req.Priority = &after.priority
	}
	if after.status != before.status {
		req.Status = &after.status
	}
	if after.completed != before.completed {
		req.Completed = &after.completed
	}
	return req
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
