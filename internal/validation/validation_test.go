package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nhle/todo-tracker/internal/model"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return doc
}

func TestValidateAcceptsValidBodies(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name string
		body string
		mode Mode
	}{
		{"title only", `{"title":"Minimal Todo"}`, ModeCreate},
		{"all fields", `{"title":"T","description":"d","completed":true,"priority":"high","status":"active"}`, ModeCreate},
		{"null description", `{"title":"T","description":null}`, ModeCreate},
		{"read-only fields ignored", `{"title":"T","id":9,"createdAt":"x"}`, ModeCreate},
		{"empty patch", `{}`, ModePatch},
		{"patch completed", `{"completed":true}`, ModePatch},
		{"title at limit", `{"title":"` + strings.Repeat("a", TitleMaxLength) + `"}`, ModeCreate},
		{"multibyte title at limit", `{"title":"` + strings.Repeat("ä", TitleMaxLength) + `"}`, ModeCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(decode(t, tt.body), tt.mode); err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
		})
	}
}

func TestValidateTitleViolations(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		body    string
		mode    Mode
		message string
	}{
		{"empty", `{"title":""}`, ModeCreate, MessageTitleBlank},
		{"whitespace", `{"title":"   "}`, ModeCreate, MessageTitleBlank},
		{"missing", `{"description":"no title"}`, ModeCreate, MessageTitleBlank},
		{"too long", `{"title":"` + strings.Repeat("a", TitleMaxLength+1) + `"}`, ModeCreate, MessageTitleTooLong},
		{"patch empty", `{"title":""}`, ModePatch, MessageTitleBlank},
		{"wrong type", `{"title":42}`, ModeCreate, "Dieser Wert sollte vom Typ string sein."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(decode(t, tt.body), tt.mode)
			var violations Violations
			if !errors.As(err, &violations) {
				t.Fatalf("expected Violations, got %v", err)
			}
			if len(violations) != 1 {
				t.Fatalf("expected exactly one violation, got %+v", violations)
			}
			if violations[0].PropertyPath != "title" {
				t.Fatalf("expected propertyPath title, got %q", violations[0].PropertyPath)
			}
			if violations[0].Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, violations[0].Message)
			}
		})
	}
}

func TestValidateReportsEachFieldOnce(t *testing.T) {
	v := MustNew()

	err := v.Validate(decode(t, `{"title":"","completed":"yes"}`), ModeCreate)
	var violations Violations
	if !errors.As(err, &violations) {
		t.Fatalf("expected Violations, got %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected two violations, got %+v", violations)
	}
	if violations[0].PropertyPath != "completed" || violations[1].PropertyPath != "title" {
		t.Fatalf("expected violations sorted by path, got %+v", violations)
	}
	if !strings.Contains(err.Error(), "title: "+MessageTitleBlank) {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestValidateEnumErrors(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name     string
		body     string
		wantType string
		wantVal  string
	}{
		{"priority", `{"title":"T","priority":"invalid_priority"}`, "Priority", "invalid_priority"},
		{"status", `{"title":"T","status":"invalid_status"}`, "Status", "invalid_status"},
		{"priority before status", `{"title":"T","priority":"x","status":"y"}`, "Priority", "x"},
		{"enum wins over blank title", `{"title":"","status":"nope"}`, "Status", "nope"},
		{"patch", `{"priority":"urgent"}`, "Priority", "urgent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(decode(t, tt.body), ModeCreate)
			var enumErr *model.EnumError
			if !errors.As(err, &enumErr) {
				t.Fatalf("expected *model.EnumError, got %v", err)
			}
			if enumErr.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, enumErr.Type)
			}
			if enumErr.Value == nil || *enumErr.Value != tt.wantVal {
				t.Fatalf("expected value %q, got %v", tt.wantVal, enumErr.Value)
			}
		})
	}
}

func TestValidateNonStringEnum(t *testing.T) {
	v := MustNew()

	err := v.Validate(decode(t, `{"title":"T","priority":3}`), ModeCreate)
	var enumErr *model.EnumError
	if !errors.As(err, &enumErr) {
		t.Fatalf("expected *model.EnumError, got %v", err)
	}
	if enumErr.Value != nil {
		t.Fatalf("expected no value for a non-string enum, got %q", *enumErr.Value)
	}
}

func TestValidateRejectsNonObject(t *testing.T) {
	v := MustNew()

	err := v.Validate(decode(t, `["title"]`), ModeCreate)
	var violations Violations
	if !errors.As(err, &violations) || len(violations) != 1 {
		t.Fatalf("expected a single violation, got %v", err)
	}
}
