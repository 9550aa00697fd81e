package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todo-tracker/internal/client"
	"github.com/nhle/todo-tracker/internal/keys"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/notify"
	appsync "github.com/nhle/todo-tracker/internal/sync"
	"github.com/nhle/todo-tracker/internal/ui"
	"github.com/nhle/todo-tracker/internal/ui/detail"
	helpview "github.com/nhle/todo-tracker/internal/ui/help"
	"github.com/nhle/todo-tracker/internal/ui/todoform"
	"github.com/nhle/todo-tracker/internal/ui/todolist"
)

// TodoAPI is the subset of the API client the UI drives.
type TodoAPI interface {
	ListTodos(ctx context.Context) ([]*model.Todo, error)
	GetTodo(ctx context.Context, id int64) (*model.Todo, error)
	CreateTodo(ctx context.Context, req client.CreateTodoRequest) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id int64, req client.UpdateTodoRequest) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

// noticesMsg carries the latest notification list to the UI.
type noticesMsg []model.Notification

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewHelp
)

// Model is the root Bubble Tea model. It routes input between the list,
// the detail view, the form and the help overlay, and renders
// notifications as toasts.
type Model struct {
	currentView    ViewState
	layout         ui.Layout
	api            TodoAPI
	notices        *notify.Store
	noticeCh       <-chan []model.Notification
	cancelNotices  func()
	toasts         []model.Notification
	keys           *keys.KeyMap
	todoList       todolist.Model
	detailView     detail.Model
	todoForm       todoform.Model
	helpView       helpview.Model
	poller         *appsync.Poller
	syncFailed     bool
	formFromDetail bool
	ready          bool
}

// New creates the root model. The todo list is refreshed from api every
// pollInterval and whenever a change is saved.
func New(api TodoAPI, notices *notify.Store, pollInterval time.Duration) Model {
	k := keys.DefaultKeyMap()
	ch, cancel := notices.Subscribe()

	return Model{
		currentView:   ViewList,
		api:           api,
		notices:       notices,
		noticeCh:      ch,
		cancelNotices: cancel,
		keys:          k,
		todoList:      todolist.New(k, 80, 24),
		detailView:    detail.New(k, 80, 24),
		todoForm:      todoform.New(80, 24),
		helpView:      helpview.New(k, 80, 24),
		poller:        appsync.New(api, pollInterval),
	}
}

// Init starts polling and listens for notification changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.poller.Start(),
		m.waitForNotices(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.todoList.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.todoForm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		cmd := m.handleSync(msg)
		return m, tea.Batch(cmd, m.poller.WaitForNextResult())

	case noticesMsg:
		m.toasts = msg
		return m, m.waitForNotices()

	case detail.LoadedMsg:
		if msg.Err != nil {
			m.notices.HandleError(msg.Err)
			m.currentView = ViewList
			return m, nil
		}
		m.detailView, _ = m.detailView.Update(msg)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		cmd := m.handleDetailAction(msg)
		return m, cmd

	case todoform.TodoCreatedMsg:
		m.currentView = ViewList
		return m, m.createTodo(msg.Request)

	case todoform.TodoUpdatedMsg:
		m.currentView = m.formReturnView()
		return m, m.updateTodo(msg.ID, msg.Request, "Todo updated")

	case todoform.TodoFormCancelMsg:
		m.currentView = m.formReturnView()
		return m, nil

	case todoResultMsg:
		m.handleResult(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.currentView {
		case ViewForm:
			if key.Matches(msg, m.keys.Back) {
				m.currentView = m.formReturnView()
				return m, nil
			}
			return m.updateActiveView(msg)
		case ViewDetail:
			if key.Matches(msg, m.keys.Quit) {
				return m, m.quit()
			}
		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back) {
				m.currentView = ViewList
				return m, nil
			}
		case ViewList:
			if !m.todoList.Searching() {
				if cmd, handled := m.handleListKeys(msg); handled {
					return m, cmd
				}
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleListKeys runs the list-view shortcuts. It reports false for keys
// that should fall through to the list itself.
func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(), true

	case key.Matches(msg, m.keys.Help):
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
		return nil, true

	case key.Matches(msg, m.keys.DismissNotices):
		m.notices.Clear()
		return nil, true

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewForm
		return m.todoForm.StartCreate(), true
	}

	todo, ok := m.todoList.SelectedTodo()
	if !ok {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		m.currentView = ViewDetail
		m.formFromDetail = false
		m.detailView.SetTodo(todo)
		m.detailView.SetLoading(true)
		return m.loadTodo(todo.ID()), true

	case key.Matches(msg, m.keys.Edit):
		m.currentView = ViewForm
		m.formFromDetail = false
		return m.todoForm.StartEdit(todo), true

	case key.Matches(msg, m.keys.ToggleDone):
		return m.toggleDone(todo), true

	case key.Matches(msg, m.keys.CyclePriority):
		p := nextPriority(todo.Priority())
		return m.updateTodo(todo.ID(), client.UpdateTodoRequest{Priority: &p},
			fmt.Sprintf("Priority set to %s", p)), true

	case key.Matches(msg, m.keys.CycleStatus):
		s := nextStatus(todo.Status())
		return m.updateTodo(todo.ID(), client.UpdateTodoRequest{Status: &s},
			fmt.Sprintf("Status set to %s", s)), true

	case key.Matches(msg, m.keys.Delete):
		return m.deleteTodo(todo.ID()), true
	}

	return nil, false
}

// handleSync applies a poll result. A failing API raises one error
// notification until a later poll succeeds.
func (m *Model) handleSync(msg appsync.SyncResultMsg) tea.Cmd {
	if msg.Error != nil {
		if !m.syncFailed {
			m.notices.HandleAPIError(msg.Error, "")
		}
		m.syncFailed = true
		return nil
	}
	if m.syncFailed {
		m.notices.Info("Connection restored")
	}
	m.syncFailed = false
	cmd := m.todoList.SetTodos(msg.Todos)
	m.syncDetail(msg.Todos)
	return cmd
}

// syncDetail keeps the detail view in step with the latest poll. A todo
// that disappeared sends the user back to the list.
func (m *Model) syncDetail(todos []*model.Todo) {
	shown := m.detailView.Todo()
	if shown == nil || m.currentView != ViewDetail {
		return
	}
	for _, t := range todos {
		if t.ID() == shown.ID() {
			m.detailView.SetTodo(t)
			return
		}
	}
	m.currentView = ViewList
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.todoList, cmd = m.todoList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewForm:
		m.todoForm, cmd = m.todoForm.Update(msg)
	}

	return m, cmd
}

func (m Model) waitForNotices() tea.Cmd {
	ch := m.noticeCh
	return func() tea.Msg {
		items, ok := <-ch
		if !ok {
			return nil
		}
		return noticesMsg(items)
	}
}

func (m Model) quit() tea.Cmd {
	m.poller.Stop()
	m.cancelNotices()
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := fmt.Sprintf("Todo Tracker (%d)", len(m.todoList.Todos()))
	header := m.layout.RenderHeader(title, m.syncStatus())
	toasts := m.layout.RenderNotifications(m.toasts)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), toasts, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.todoForm.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.todoList.View()
	}
}

// syncStatus returns a short string describing the last refresh.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	switch st.State {
	case appsync.SyncRunning:
		return "syncing"
	case appsync.SyncError:
		return "⚠ api unreachable"
	}
	if st.LastSync.IsZero() {
		return "not synced"
	}
	return "synced " + st.LastSync.Format("15:04:05")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewDetail:
		return "e edit | x toggle done | d delete | esc back"
	default:
		if m.todoList.Searching() {
			return "enter apply | esc clear"
		}
		if summary := m.todoList.FilterSummary(); summary != "" {
			return summary + " | " + m.helpView.ShortView()
		}
		return m.helpView.ShortView()
	}
}

// formReturnView is the view shown after the form closes.
func (m Model) formReturnView() ViewState {
	if m.formFromDetail {
		return ViewDetail
	}
	return ViewList
}

func nextPriority(p model.Priority) model.Priority {
	return next(model.ValidPriorities(), p)
}

func nextStatus(s model.Status) model.Status {
	return next(model.ValidStatuses(), s)
}

// next returns the value after cur in values, wrapping around. An unknown
// cur yields the first value.
func next[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
