// Package client is a thin HTTP client for the todo REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/todo-tracker/internal/model"
)

// DefaultBaseURL points at the API root of a locally running server.
const DefaultBaseURL = "http://localhost:8000/api"

// Client issues list/get/create/update/delete calls against the API. It does
// not retry, cache or deduplicate requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the API rooted at baseURL
// (e.g., http://localhost:8000/api). An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTodos returns every todo. Both a plain array and a wrapped member list
// are accepted.
func (c *Client) ListTodos(ctx context.Context) ([]*model.Todo, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/todos", nil, &raw, "Failed to fetch todos"); err != nil {
		return nil, err
	}
	return decodeTodoList(raw)
}

// GetTodo returns a single todo.
func (c *Client) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	var todo model.Todo
	fallback := fmt.Sprintf("Failed to fetch todo with id %d", id)
	if _, err := c.do(ctx, http.MethodGet, todoPath(id), nil, &todo, fallback); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo creates a todo and returns the stored representation.
func (c *Client) CreateTodo(ctx context.Context, req CreateTodoRequest) (*model.Todo, error) {
	var todo model.Todo
	if _, err := c.do(ctx, http.MethodPost, "/todos", req, &todo, "Failed to create todo"); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update and returns the merged representation.
func (c *Client) UpdateTodo(ctx context.Context, id int64, req UpdateTodoRequest) (*model.Todo, error) {
	var todo model.Todo
	if _, err := c.do(ctx, http.MethodPatch, todoPath(id), req, &todo, "Failed to update todo"); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo permanently removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	fallback := fmt.Sprintf("Failed to delete todo with id %d", id)
	_, err := c.do(ctx, http.MethodDelete, todoPath(id), nil, nil, fallback)
	return err
}

func todoPath(id int64) string {
	return fmt.Sprintf("/todos/%d", id)
}

// do builds the request, sends it, and decodes a 2xx JSON response into
// result. Non-2xx responses become *APIError using fallback when the body
// carries no detail. The response headers are returned on success.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	fallback string,
) (http.Header, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody, fallback)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return resp.Header, nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return nil, fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	return resp.Header, nil
}

func decodeTodoList(raw json.RawMessage) ([]*model.Todo, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var todos []*model.Todo
		if err := json.Unmarshal(trimmed, &todos); err != nil {
			return nil, fmt.Errorf("decoding todo list: %w", err)
		}
		return nonNil(todos), nil
	}

	var wrapped struct {
		HydraMember []*model.Todo `json:"hydra:member"`
		Member      []*model.Todo `json:"member"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding todo list: %w", err)
	}
	if wrapped.HydraMember != nil {
		return wrapped.HydraMember, nil
	}
	return nonNil(wrapped.Member), nil
}

func nonNil(todos []*model.Todo) []*model.Todo {
	if todos == nil {
		return []*model.Todo{}
	}
	return todos
}
