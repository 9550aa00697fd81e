package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/nhle/todo-tracker/internal/model"
)

func TestInterceptEnumError(t *testing.T) {
	priorities := []string{"low", "medium", "high", "unknown"}
	statuses := []string{"active", "inactive", "pending"}
	bogus := "bogus"

	tests := []struct {
		name     string
		err      error
		handled  bool
		field    string
		provided *string
		valid    []string
	}{
		{
			name:     "typed error",
			err:      &model.EnumError{Type: "Priority", Value: &bogus},
			handled:  true,
			field:    "priority",
			provided: &bogus,
			valid:    priorities,
		},
		{
			name:     "wrapped typed error",
			err:      fmt.Errorf("decoding body: %w", &model.EnumError{Type: "Status", Value: &bogus}),
			handled:  true,
			field:    "status",
			provided: &bogus,
			valid:    statuses,
		},
		{
			name:     "foreign message with namespaced type",
			err:      errors.New(`"bogus" is not a valid backing value for backed enumeration type App\Enum\Priority`),
			handled:  true,
			field:    "priority",
			provided: &bogus,
			valid:    priorities,
		},
		{
			name:     "foreign message ending in a period",
			err:      errors.New(`"bogus" is not a valid backing value for backed enumeration type App\Enum\Priority.`),
			handled:  true,
			field:    "priority",
			provided: &bogus,
			valid:    priorities,
		},
		{
			name:     "dotted type ending in a period",
			err:      errors.New(`"bogus" is not a valid backing value for backed enumeration type model.Status.`),
			handled:  true,
			field:    "status",
			provided: &bogus,
			valid:    statuses,
		},
		{
			name:    "no quoted value",
			err:     errors.New("the data must belong to a backed enumeration of type App\\Enum\\Status"),
			handled: true,
			field:   "status",
			valid:   statuses,
		},
		{
			name:     "unresolvable type",
			err:      errors.New(`"bogus" is not a valid backing value for backed enumeration type App\Enum\Colour`),
			handled:  true,
			field:    "unknown_field",
			provided: &bogus,
			valid:    []string{},
		},
		{
			name: "backed enumeration without a type",
			err:  errors.New("value is not a backed enumeration"),
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag, ok := interceptEnumError(tt.err)
			if ok != tt.handled {
				t.Fatalf("expected handled=%v, got %v (%+v)", tt.handled, ok, diag)
			}
			if !ok {
				return
			}
			if diag.Status != http.StatusUnprocessableEntity || diag.Title != "Invalid Enum Value" {
				t.Fatalf("unexpected diagnostic header %+v", diag)
			}
			if diag.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, diag.Field)
			}
			if !reflect.DeepEqual(diag.ValidValues, tt.valid) {
				t.Fatalf("expected valid values %v, got %v", tt.valid, diag.ValidValues)
			}
			switch {
			case tt.provided == nil && diag.ProvidedValue != nil:
				t.Fatalf("expected no provided value, got %q", *diag.ProvidedValue)
			case tt.provided != nil && (diag.ProvidedValue == nil || *diag.ProvidedValue != *tt.provided):
				t.Fatalf("expected provided value %q, got %v", *tt.provided, diag.ProvidedValue)
			}
		})
	}
}

func TestCreateTodoNonStringEnum(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/todos", `{"title":"Test Todo","priority":5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["field"] != "priority" {
		t.Fatalf("expected field priority, got %v", body["field"])
	}
	provided, present := body["providedValue"]
	if !present || provided != nil {
		t.Fatalf("expected providedValue null, got %v (present=%v)", provided, present)
	}
	if body["message"] != "Invalid value for priority. Allowed values are: low, medium, high, unknown" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}
