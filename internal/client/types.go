package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nhle/todo-tracker/internal/model"
)

// CreateTodoRequest is the body of a create call. Only Title is required.
type CreateTodoRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
}

// UpdateTodoRequest is the body of a partial update. Nil fields are left
// unchanged. ClearDescription sends "description": null, removing the
// description; it takes precedence over Description.
type UpdateTodoRequest struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Completed        *bool           `json:"completed,omitempty"`
	Priority         *model.Priority `json:"priority,omitempty"`
	Status           *model.Status   `json:"status,omitempty"`
	ClearDescription bool            `json:"-"`
}

// MarshalJSON renders the patch body.
func (r UpdateTodoRequest) MarshalJSON() ([]byte, error) {
	type plain UpdateTodoRequest
	body, err := json.Marshal(plain(r))
	if err != nil || !r.ClearDescription {
		return body, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["description"] = json.RawMessage("null")
	return json.Marshal(fields)
}

// Violation is a single field-level failure reported by the API.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode  int
	Message     string
	Field       string
	ValidValues []string
	Violations  []Violation
}

func (e *APIError) Error() string {
	return e.Message
}

// Detail returns the server supplied explanation, which is the error message.
func (e *APIError) Detail() string {
	return e.Message
}

// IsValidation reports whether the API rejected individual fields.
func (e *APIError) IsValidation() bool {
	return len(e.Violations) > 0
}

// EnumHint returns the offending field and its allowed values when the API
// rejected an enumerated value.
func (e *APIError) EnumHint() (string, []string) {
	return e.Field, e.ValidValues
}

// errorBody covers both the problem body and the enum diagnostic.
type errorBody struct {
	Detail      string      `json:"detail"`
	Field       string      `json:"field"`
	ValidValues []string    `json:"validValues"`
	Violations  []Violation `json:"violations"`
}

func newAPIError(status int, body []byte, fallback string) *APIError {
	apiErr := &APIError{StatusCode: status, Message: fallback}

	var parsed errorBody
	if json.Unmarshal(body, &parsed) != nil {
		return apiErr
	}
	if strings.TrimSpace(parsed.Detail) != "" {
		apiErr.Message = parsed.Detail
	}
	apiErr.Field = parsed.Field
	apiErr.ValidValues = parsed.ValidValues
	apiErr.Violations = parsed.Violations
	return apiErr
}

// EnumMessage renders the allowed-values sentence for an enum rejection, or
// "" when the error is not one.
func (e *APIError) EnumMessage() string {
	if e.Field == "" || len(e.ValidValues) == 0 {
		return ""
	}
	return fmt.Sprintf("Invalid value for %s. Allowed values are: %s",
		e.Field, strings.Join(e.ValidValues, ", "))
}
