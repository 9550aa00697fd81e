package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nhle/todo-tracker/internal/model"
)

// ListOptions narrows a list call. Zero values are not sent. Status and
// Priority are passed through verbatim so the server reports unknown values.
type ListOptions struct {
	Status    string
	Priority  string
	Completed *bool
	Query     string
	Sort      string
	Desc      bool
	Limit     int
	Offset    int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.Priority != "" {
		v.Set("priority", o.Priority)
	}
	if o.Completed != nil {
		v.Set("completed", strconv.FormatBool(*o.Completed))
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Desc {
		v.Set("order", "desc")
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	return v
}

// TodoPage is one filtered page of todos. Total counts every match,
// ignoring Limit and Offset; it is -1 when the server does not report it.
type TodoPage struct {
	Todos []*model.Todo
	Total int
}

// SearchTodos lists the todos matching opts.
func (c *Client) SearchTodos(ctx context.Context, opts ListOptions) (TodoPage, error) {
	path := "/todos"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}

	var raw json.RawMessage
	header, err := c.do(ctx, http.MethodGet, path, nil, &raw, "Failed to fetch todos")
	if err != nil {
		return TodoPage{}, err
	}
	todos, err := decodeTodoList(raw)
	if err != nil {
		return TodoPage{}, err
	}

	total := -1
	if n, err := strconv.Atoi(header.Get("X-Total-Count")); err == nil {
		total = n
	}
	return TodoPage{Todos: todos, Total: total}, nil
}
