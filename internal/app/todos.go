package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todo-tracker/internal/client"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/ui/detail"
)

// requestTimeout bounds a single create, update or delete call.
const requestTimeout = 15 * time.Second

// todoResultMsg is sent after a create, update or delete call returns.
type todoResultMsg struct {
	success string
	err     error
}

// loadTodo fetches the current state of id for the detail view.
func (m *Model) loadTodo(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todo, err := api.GetTodo(ctx, id)
		return detail.LoadedMsg{Todo: todo, Err: err}
	}
}

// handleDetailAction applies an action requested from the detail view.
func (m *Model) handleDetailAction(msg detail.ActionMsg) tea.Cmd {
	todo := msg.Todo
	switch msg.Action {
	case detail.ActionEdit:
		m.currentView = ViewForm
		m.formFromDetail = true
		return m.todoForm.StartEdit(todo)

	case detail.ActionToggleDone:
		return m.toggleDone(todo)

	case detail.ActionDelete:
		m.currentView = ViewList
		return m.deleteTodo(todo.ID())
	}
	return nil
}

// createTodo sends req to the API.
func (m *Model) createTodo(req client.CreateTodoRequest) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		todo, err := api.CreateTodo(ctx, req)
		if err != nil {
			return todoResultMsg{err: err}
		}
		return todoResultMsg{success: fmt.Sprintf("Todo #%d created", todo.ID())}
	}
}

// updateTodo sends a partial update for id. success is shown when the
// call succeeds.
func (m *Model) updateTodo(id int64, req client.UpdateTodoRequest, success string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if _, err := api.UpdateTodo(ctx, id, req); err != nil {
			return todoResultMsg{err: err}
		}
		return todoResultMsg{success: success}
	}
}

// toggleDone flips the completed flag of todo.
func (m *Model) toggleDone(todo *model.Todo) tea.Cmd {
	done := !todo.Completed()
	note := "Todo reopened"
	if done {
		note = "Todo completed"
	}
	return m.updateTodo(todo.ID(), client.UpdateTodoRequest{Completed: &done}, note)
}

// deleteTodo removes id through the API.
func (m *Model) deleteTodo(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := api.DeleteTodo(ctx, id); err != nil {
			return todoResultMsg{err: err}
		}
		return todoResultMsg{success: fmt.Sprintf("Todo #%d deleted", id)}
	}
}

// handleResult turns a call result into a notification and refreshes the
// list after a successful change.
func (m *Model) handleResult(msg todoResultMsg) {
	if msg.err != nil {
		m.notices.HandleError(msg.err)
		return
	}
	m.notices.Success(msg.success)
	m.poller.Refresh()
}
