package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/todo-tracker/internal/model"
)

// DefaultErrorMessage is used when neither the error nor the caller supplies
// a message.
const DefaultErrorMessage = "An error occurred"

// ValidationErrorDuration is how long validation errors stay visible.
const ValidationErrorDuration = 3 * time.Second

type detailer interface {
	Detail() string
}

type enumHinter interface {
	EnumHint() (field string, validValues []string)
}

type validationFailure interface {
	IsValidation() bool
}

// MessageFor turns an error-like value into one human-readable sentence.
// For errors it prefers, in order: a field with its allowed values, a
// detail, and the error message. Maps decoded from JSON error bodies prefer
// message, then detail, then field and allowed values. A non-empty string is
// used as is. Anything else yields fallback.
func MessageFor(v any, fallback string) string {
	if fallback == "" {
		fallback = DefaultErrorMessage
	}

	switch e := v.(type) {
	case nil:
		return fallback
	case string:
		if e != "" {
			return e
		}
	case error:
		var h enumHinter
		if errors.As(e, &h) {
			if field, values := h.EnumHint(); field != "" && len(values) > 0 {
				return enumMessage(field, values)
			}
		}
		var d detailer
		if errors.As(e, &d) && d.Detail() != "" {
			return d.Detail()
		}
		if msg := e.Error(); msg != "" {
			return msg
		}
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
		if detail, ok := e["detail"].(string); ok && detail != "" {
			return detail
		}
		field, _ := e["field"].(string)
		if values := stringSlice(e["validValues"]); field != "" && len(values) > 0 {
			return enumMessage(field, values)
		}
	}
	return fallback
}

// HandleAPIError raises an error notification describing v.
func (s *Store) HandleAPIError(v any, fallback string) string {
	return s.Error(MessageFor(v, fallback))
}

// HandleError raises an error notification for err. Errors that report
// field-level validation failures use the shorter validation duration.
func (s *Store) HandleError(err error) string {
	var v validationFailure
	if errors.As(err, &v) && v.IsValidation() {
		return s.HandleValidationError(MessageFor(err, ""))
	}
	return s.HandleAPIError(err, "")
}

// HandleValidationError raises a short-lived error notification.
func (s *Store) HandleValidationError(message string) string {
	return s.Add(model.NotificationError, message, ValidationErrorDuration)
}

func enumMessage(field string, values []string) string {
	return fmt.Sprintf("Invalid value for %s. Allowed values are: %s", field, strings.Join(values, ", "))
}

func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, value := range values {
			if s, ok := value.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
