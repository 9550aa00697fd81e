package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/nhle/todo-tracker/internal/model"
)

const (
	enumDiagnosticTitle  = "Invalid Enum Value"
	enumDiagnosticDetail = "The provided value is not valid for this field."
	unknownField         = "unknown_field"
)

var (
	// Dots are only accepted between name segments so trailing sentence
	// punctuation stays out of the type name.
	enumTypePattern    = regexp.MustCompile(`type ([\\\w]+(?:\.[\\\w]+)*)`)
	quotedValuePattern = regexp.MustCompile(`"([^"]+)"`)
)

// EnumDiagnostic is the 422 body returned when priority or status holds a
// value outside its closed set.
type EnumDiagnostic struct {
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Status        int      `json:"status"`
	Detail        string   `json:"detail"`
	Field         string   `json:"field"`
	ProvidedValue *string  `json:"providedValue"`
	ValidValues   []string `json:"validValues"`
	Message       string   `json:"message"`
}

// interceptEnumError turns an invalid-enum failure into its diagnostic.
//
// A *model.EnumError anywhere in the chain is used directly. Any other error
// qualifies only if its message mentions a backed enumeration and names the
// type, in which case the type and the first quoted value are read from the
// message. Everything else is left for the caller to render.
func interceptEnumError(err error) (*EnumDiagnostic, bool) {
	if err == nil {
		return nil, false
	}

	var typeName string
	var provided *string

	var enumErr *model.EnumError
	if errors.As(err, &enumErr) {
		typeName = enumErr.Type
		provided = enumErr.Value
	} else {
		msg := err.Error()
		if !strings.Contains(msg, "backed enumeration") {
			return nil, false
		}
		m := enumTypePattern.FindStringSubmatch(msg)
		if m == nil {
			return nil, false
		}
		typeName = m[1]
		if q := quotedValuePattern.FindStringSubmatch(msg); q != nil {
			value := q[1]
			provided = &value
		}
	}

	return newEnumDiagnostic(typeName, provided), true
}

func newEnumDiagnostic(typeName string, provided *string) *EnumDiagnostic {
	field := unknownField
	validValues := []string{}

	if values, ok := model.EnumValues(typeName); ok {
		validValues = values
		switch {
		case strings.Contains(typeName, "Priority"):
			field = "priority"
		case strings.Contains(typeName, "Status"):
			field = "status"
		}
	}

	return &EnumDiagnostic{
		Type:          problemTypeValidation,
		Title:         enumDiagnosticTitle,
		Status:        http.StatusUnprocessableEntity,
		Detail:        enumDiagnosticDetail,
		Field:         field,
		ProvidedValue: provided,
		ValidValues:   validValues,
		Message: fmt.Sprintf("Invalid value for %s. Allowed values are: %s",
			field, strings.Join(validValues, ", ")),
	}
}
