package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/store"
	"github.com/nhle/todo-tracker/internal/validation"
)

// createTodoRequest is the POST body. Pointers distinguish absent fields.
type createTodoRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Priority    *model.Priority `json:"priority"`
	Status      *model.Status   `json:"status"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	todos, err := s.store.GetTodos(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.store.GetTodoCount(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	todo, err := s.store.GetTodoByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readValidated(w, r, validation.ModeCreate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createTodoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, decodeError(err))
		return
	}

	var opts []model.TodoOption
	if req.Description != nil {
		opts = append(opts, model.WithDescription(req.Description))
	}
	if req.Completed != nil {
		opts = append(opts, model.WithCompleted(*req.Completed))
	}
	if req.Priority != nil {
		opts = append(opts, model.WithPriority(*req.Priority))
	}
	if req.Status != nil {
		opts = append(opts, model.WithStatus(*req.Status))
	}

	todo := model.NewTodo(req.Title, opts...)
	if err := s.store.CreateTodo(r.Context(), todo); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/todos/"+strconv.FormatInt(todo.ID(), 10))
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	// The record is resolved before the body is looked at, so a missing id
	// is a 404 whatever the payload.
	todo, err := s.store.GetTodoByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := s.readValidated(w, r, validation.ModePatch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	changed, err := applyPatch(todo, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if changed {
		if err := s.store.UpdateTodo(r.Context(), todo); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	if err := s.store.DeleteTodo(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readValidated reads the request body and checks it against the schema
// for mode, returning the raw body on success.
func (s *Server) readValidated(w http.ResponseWriter, r *http.Request, mode validation.Mode) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &badRequestError{detail: "Request body too large"}
		}
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, decodeError(err)
	}
	if err := s.validator.Validate(doc, mode); err != nil {
		return nil, err
	}
	return body, nil
}

// applyPatch runs the setter for every field present in body and reports
// whether any ran. An explicit null description clears it.
func applyPatch(todo *model.Todo, body []byte) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false, decodeError(err)
	}

	changed := false
	if raw, ok := fields["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return false, decodeError(err)
		}
		todo.SetTitle(title)
		changed = true
	}
	if raw, ok := fields["description"]; ok {
		var description *string
		if err := json.Unmarshal(raw, &description); err != nil {
			return false, decodeError(err)
		}
		todo.SetDescription(description)
		changed = true
	}
	if raw, ok := fields["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return false, decodeError(err)
		}
		todo.SetCompleted(completed)
		changed = true
	}
	if raw, ok := fields["priority"]; ok {
		var priority model.Priority
		if err := json.Unmarshal(raw, &priority); err != nil {
			return false, decodeError(err)
		}
		todo.SetPriority(priority)
		changed = true
	}
	if raw, ok := fields["status"]; ok {
		var status model.Status
		if err := json.Unmarshal(raw, &status); err != nil {
			return false, decodeError(err)
		}
		todo.SetStatus(status)
		changed = true
	}
	return changed, nil
}

// decodeError keeps enum failures intact for the interceptor and turns every
// other JSON failure into a 400.
func decodeError(err error) error {
	var enumErr *model.EnumError
	if errors.As(err, &enumErr) {
		return err
	}
	return &badRequestError{detail: "Syntax error: " + err.Error()}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseFilter reads list query parameters: status, priority, completed, q,
// sort, order, limit and offset.
func parseFilter(r *http.Request) (store.TodoFilter, error) {
	q := r.URL.Query()
	var filter store.TodoFilter

	if v := q.Get("status"); v != "" {
		status, err := model.ParseStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority, err := model.ParsePriority(v)
		if err != nil {
			return filter, err
		}
		filter.Priority = &priority
	}
	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &badRequestError{detail: "completed must be a boolean"}
		}
		filter.Completed = &completed
	}
	if v := q.Get("q"); v != "" {
		filter.Query = &v
	}
	filter.SortBy = q.Get("sort")
	filter.SortDesc = q.Get("order") == "desc"

	var err error
	if filter.Limit, err = nonNegative(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = nonNegative(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func nonNegative(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &badRequestError{detail: name + " must be a non-negative integer"}
	}
	return n, nil
}
