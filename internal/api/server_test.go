package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nhle/todo-tracker/internal/logging"
	"github.com/nhle/todo-tracker/internal/validation"
	"github.com/nhle/todo-tracker/tests/testutil"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	server, err := NewServer(ServerOptions{
		Store:     testutil.NewTestStore(t),
		Logger:    logging.Discard(),
		Validator: validation.MustNew(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func createID(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/todos", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return strconv.FormatFloat(decodeBody(t, rec)["id"].(float64), 'f', 0, 64)
}

func TestListTodosEmptyArray(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestCreateTodoWithValidData(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/todos",
		`{"title":"Test Todo API","description":"Test Description","priority":"high","status":"active","completed":false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	data := decodeBody(t, rec)
	if data["id"] == nil || data["createdAt"] == nil {
		t.Fatalf("expected generated id and createdAt, got %v", data)
	}
	if data["title"] != "Test Todo API" || data["description"] != "Test Description" ||
		data["priority"] != "high" || data["status"] != "active" || data["completed"] != false {
		t.Fatalf("unexpected body %v", data)
	}
	if _, ok := data["updatedAt"]; !ok || data["updatedAt"] != nil {
		t.Fatalf("expected null updatedAt, got %v", data["updatedAt"])
	}
}

func TestCreateTodoWithMinimalData(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/todos", `{"title":"Minimal Todo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	data := decodeBody(t, rec)
	if data["priority"] != "medium" || data["status"] != "pending" || data["completed"] != false {
		t.Fatalf("unexpected defaults %v", data)
	}
	if data["description"] != nil || data["updatedAt"] != nil {
		t.Fatalf("expected null description and updatedAt, got %v", data)
	}
}

func TestCreateTodoIgnoresClientID(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/todos", `{"title":"Mine","id":4242}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if decodeBody(t, rec)["id"] == float64(4242) {
		t.Fatal("client supplied id must not be used")
	}
}

func TestCreateTodoTitleViolations(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", `{"title":"","description":"Test Description"}`, validation.MessageTitleBlank},
		{"whitespace", `{"title":"   "}`, validation.MessageTitleBlank},
		{"too long", `{"title":"` + strings.Repeat("a", 256) + `","description":"Test Description"}`, validation.MessageTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/todos", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json; charset=utf-8" {
				t.Fatalf("unexpected content type %q", ct)
			}

			var problem Problem
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if len(problem.Violations) != 1 {
				t.Fatalf("expected exactly one violation, got %+v", problem.Violations)
			}
			if problem.Violations[0].PropertyPath != "title" || problem.Violations[0].Message != tt.message {
				t.Fatalf("unexpected violation %+v", problem.Violations[0])
			}
			if problem.Status != http.StatusUnprocessableEntity || problem.Type == "" || problem.Title == "" {
				t.Fatalf("incomplete problem body %+v", problem)
			}
		})
	}
}

func TestCreateTodoInvalidEnums(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		field  string
		value  string
		valid  []string
		prefix string
	}{
		{
			name:   "priority",
			body:   `{"title":"Test Todo","priority":"invalid_priority"}`,
			field:  "priority",
			value:  "invalid_priority",
			valid:  []string{"low", "medium", "high", "unknown"},
			prefix: "Invalid value for priority. Allowed values are: low, medium, high, unknown",
		},
		{
			name:   "status",
			body:   `{"title":"Test Todo","status":"invalid_status"}`,
			field:  "status",
			value:  "invalid_status",
			valid:  []string{"active", "inactive", "pending"},
			prefix: "Invalid value for status. Allowed values are: active, inactive, pending",
		},
		{
			name:   "enum wins over blank title",
			body:   `{"title":"","status":"invalid_status"}`,
			field:  "status",
			value:  "invalid_status",
			valid:  []string{"active", "inactive", "pending"},
			prefix: "Invalid value for status.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/todos", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			var diag EnumDiagnostic
			if err := json.Unmarshal(rec.Body.Bytes(), &diag); err != nil {
				t.Fatalf("decode diagnostic: %v", err)
			}
			if diag.Title != "Invalid Enum Value" || diag.Status != 422 || diag.Type == "" {
				t.Fatalf("unexpected diagnostic header %+v", diag)
			}
			if diag.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, diag.Field)
			}
			if diag.ProvidedValue == nil || *diag.ProvidedValue != tt.value {
				t.Fatalf("expected provided value %q, got %v", tt.value, diag.ProvidedValue)
			}
			if !reflect.DeepEqual(diag.ValidValues, tt.valid) {
				t.Fatalf("expected valid values %v, got %v", tt.valid, diag.ValidValues)
			}
			if !strings.Contains(diag.Message, tt.prefix) {
				t.Fatalf("expected message containing %q, got %q", tt.prefix, diag.Message)
			}
		})
	}
}

func TestCreateTodoMalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{`{"title":`, `"just a string"`} {
		rec := do(t, h, http.MethodPost, "/api/todos", body)
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: expected a client error, got %d", body, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodPost, "/api/todos", `{"title":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for truncated JSON, got %d", rec.Code)
	}
}

func TestGetSingleTodo(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"Todo to Get","description":"Description for get test"}`)

	rec := do(t, h, http.MethodGet, "/api/todos/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeBody(t, rec)
	if data["title"] != "Todo to Get" || data["description"] != "Description for get test" {
		t.Fatalf("unexpected body %v", data)
	}
}

func TestPatchTodo(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"Original Todo","description":"keep me"}`)

	rec := do(t, h, http.MethodPatch, "/api/todos/"+id, `{"title":"Updated Todo","completed":true,"priority":"high"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)
	if data["title"] != "Updated Todo" || data["completed"] != true || data["priority"] != "high" {
		t.Fatalf("unexpected merged body %v", data)
	}
	if data["description"] != "keep me" || data["status"] != "pending" {
		t.Fatalf("untouched fields must survive a patch, got %v", data)
	}
	if data["updatedAt"] == nil {
		t.Fatal("expected updatedAt to be set")
	}

	created, _ := time.Parse(time.RFC3339Nano, data["createdAt"].(string))
	updated, _ := time.Parse(time.RFC3339Nano, data["updatedAt"].(string))
	if !updated.After(created) {
		t.Fatalf("expected updatedAt %v after createdAt %v", updated, created)
	}

	rec = do(t, h, http.MethodGet, "/api/todos/"+id, "")
	if decodeBody(t, rec)["title"] != "Updated Todo" {
		t.Fatal("patch was not persisted")
	}
}

func TestPatchTodoClearsDescription(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"T","description":"gone soon"}`)

	rec := do(t, h, http.MethodPatch, "/api/todos/"+id, `{"description":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeBody(t, rec); data["description"] != nil || data["updatedAt"] == nil {
		t.Fatalf("expected cleared description and stamped updatedAt, got %v", data)
	}
}

func TestPatchEmptyBodyLeavesUpdatedAtNull(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"T"}`)

	rec := do(t, h, http.MethodPatch, "/api/todos/"+id, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["updatedAt"] != nil {
		t.Fatal("an empty patch must not stamp updatedAt")
	}
}

func TestPatchValidation(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"T"}`)

	rec := do(t, h, http.MethodPatch, "/api/todos/"+id, `{"title":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank title, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPatch, "/api/todos/"+id, `{"priority":"urgent"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid priority, got %d", rec.Code)
	}
	var diag EnumDiagnostic
	if err := json.Unmarshal(rec.Body.Bytes(), &diag); err != nil || diag.Field != "priority" {
		t.Fatalf("expected enum diagnostic for priority, got %s", rec.Body.String())
	}
}

func TestDeleteTodoThenGetIsNotFound(t *testing.T) {
	h := newTestHandler(t)
	id := createID(t, h, `{"title":"Todo to Delete"}`)

	rec := do(t, h, http.MethodDelete, "/api/todos/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}

	if rec := do(t, h, http.MethodGet, "/api/todos/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestMissingTodoIsNotFound(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/todos/99999", ""},
		{http.MethodPatch, "/api/todos/99999", `{"title":"Updated Non-existent Todo"}`},
		{http.MethodPatch, "/api/todos/99999", `{"priority":"bogus"}`},
		{http.MethodDelete, "/api/todos/99999", ""},
		{http.MethodGet, "/api/todos/abc", ""},
		{http.MethodDelete, "/api/todos/-1", ""},
		{http.MethodGet, "/api/unknown", ""},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestListTodosFiltersAndCount(t *testing.T) {
	h := newTestHandler(t)
	createID(t, h, `{"title":"Alpha","status":"active"}`)
	createID(t, h, `{"title":"Beta","priority":"low"}`)
	createID(t, h, `{"title":"Gamma","status":"active","completed":true}`)

	rec := do(t, h, http.MethodGet, "/api/todos?status=active&limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Total-Count"); got != "2" {
		t.Fatalf("expected total count 2, got %q", got)
	}
	var todos []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &todos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(todos) != 1 || todos[0]["title"] != "Alpha" {
		t.Fatalf("unexpected page %v", todos)
	}

	rec = do(t, h, http.MethodGet, "/api/todos?sort=title&order=desc", "")
	todos = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &todos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(todos) != 3 || todos[0]["title"] != "Gamma" {
		t.Fatalf("unexpected order %v", todos)
	}

	if rec := do(t, h, http.MethodGet, "/api/todos?status=bogus", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an invalid status filter, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/todos?limit=-3", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a negative limit, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodOptions, "/api/todos", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on preflight")
	}
}

func TestRecoverHandler(t *testing.T) {
	s := &Server{logger: logging.Discard()}
	h := s.recoverHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestNewServerRequiresStore(t *testing.T) {
	if _, err := NewServer(ServerOptions{}); err == nil {
		t.Fatal("expected an error without a store")
	}
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	server, err := NewServer(ServerOptions{Store: testutil.NewTestStore(t), Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.ServeListener(ctx, listener, time.Second) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/api/todos")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
