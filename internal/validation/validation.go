// Package validation checks incoming todo request bodies against an explicit
// JSON schema before anything reaches the model or the store.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nhle/todo-tracker/internal/model"
)

// TitleMaxLength is the longest title accepted, in characters.
const TitleMaxLength = 255

// Violation messages.
const (
	MessageTitleBlank   = "Der Titel darf nicht leer sein."
	MessageTitleTooLong = "Der Titel darf höchstens 255 Zeichen lang sein."
)

// Mode selects which request shape is validated.
type Mode int

const (
	// ModeCreate requires a title.
	ModeCreate Mode = iota
	// ModePatch makes every field optional.
	ModePatch
)

// Violation is a single field-level validation failure.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// Violations is returned when a request body breaks one or more field
// constraints. It holds at most one violation per property path.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, len(v))
	for i, violation := range v {
		parts[i] = violation.PropertyPath + ": " + violation.Message
	}
	return strings.Join(parts, "\n")
}

// enumFields maps enumerated properties to their type names, in the order
// enum failures are reported.
var enumFields = []struct {
	property string
	typeName string
}{
	{"priority", "Priority"},
	{"status", "Status"},
}

const schemaBaseURL = "https://todo-tracker.local/schemas/"

// Validator holds the compiled request schemas.
type Validator struct {
	create *jsonschema.Schema
	patch  *jsonschema.Schema
}

// New compiles the todo request schemas.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	create, err := compileSchema(compiler, "todo-create.json", true)
	if err != nil {
		return nil, err
	}
	patch, err := compileSchema(compiler, "todo-patch.json", false)
	if err != nil {
		return nil, err
	}
	return &Validator{create: create, patch: patch}, nil
}

// MustNew is like New but panics if the schemas fail to compile.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func compileSchema(compiler *jsonschema.Compiler, name string, titleRequired bool) (*jsonschema.Schema, error) {
	doc, err := json.Marshal(todoSchema(titleRequired))
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	url := schemaBaseURL + name
	if err := compiler.AddResource(url, strings.NewReader(string(doc))); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// todoSchema builds the request schema. Enum members come straight from the
// model so the schema cannot drift from the Go types.
func todoSchema(titleRequired bool) map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":      "string",
				"minLength": 1,
				"maxLength": TitleMaxLength,
				"pattern":   `\S`,
			},
			"description": map[string]any{
				"type": []string{"string", "null"},
			},
			"completed": map[string]any{
				"type": "boolean",
			},
			"priority": map[string]any{
				"enum": model.ValidPriorities(),
			},
			"status": map[string]any{
				"enum": model.ValidStatuses(),
			},
		},
	}
	if titleRequired {
		schema["required"] = []string{"title"}
	}
	return schema
}

// Validate checks doc, a value produced by json.Unmarshal into an any.
//
// Enum failures win over everything else and are returned as
// *model.EnumError. Otherwise field failures are returned as Violations.
func (v *Validator) Validate(doc any, mode Mode) error {
	obj, ok := doc.(map[string]any)
	if !ok {
		return Violations{{PropertyPath: "", Message: "Dieser Wert sollte vom Typ object sein."}}
	}

	if err := checkEnums(obj); err != nil {
		return err
	}

	schema := v.create
	if mode == ModePatch {
		schema = v.patch
	}

	err := schema.Validate(obj)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating todo: %w", err)
	}

	byPath := make(map[string]string)
	for _, leaf := range leaves(ve) {
		keyword := leaf.KeywordLocation[strings.LastIndex(leaf.KeywordLocation, "/")+1:]
		if keyword == "required" {
			for _, missing := range missingRequired(obj, mode) {
				addViolation(byPath, missing, messageFor(missing, "required"))
			}
			continue
		}
		path := strings.TrimPrefix(leaf.InstanceLocation, "/")
		addViolation(byPath, path, messageFor(path, keyword))
	}

	if len(byPath) == 0 {
		return Violations{{PropertyPath: "", Message: ve.Message}}
	}

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	violations := make(Violations, 0, len(paths))
	for _, path := range paths {
		violations = append(violations, Violation{PropertyPath: path, Message: byPath[path]})
	}
	return violations
}

// checkEnums validates enumerated fields explicitly so that a bad value is
// raised as a typed error instead of a generic violation.
func checkEnums(obj map[string]any) error {
	for _, field := range enumFields {
		raw, present := obj[field.property]
		if !present {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return &model.EnumError{Type: field.typeName}
		}
		values, _ := model.EnumValues(field.typeName)
		if !contains(values, s) {
			return &model.EnumError{Type: field.typeName, Value: &s}
		}
	}
	return nil
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func missingRequired(obj map[string]any, mode Mode) []string {
	if mode != ModeCreate {
		return nil
	}
	if _, ok := obj["title"]; ok {
		return nil
	}
	return []string{"title"}
}

// addViolation keeps the first message seen for a path.
func addViolation(byPath map[string]string, path, message string) {
	if _, exists := byPath[path]; exists {
		return
	}
	byPath[path] = message
}

func messageFor(path, keyword string) string {
	switch {
	case path == "title" && keyword == "maxLength":
		return MessageTitleTooLong
	case path == "title" && (keyword == "required" || keyword == "minLength" || keyword == "pattern"):
		return MessageTitleBlank
	case path == "title" && keyword == "type":
		return "Dieser Wert sollte vom Typ string sein."
	case path == "completed" && keyword == "type":
		return "Dieser Wert sollte vom Typ bool sein."
	case path == "description" && keyword == "type":
		return "Dieser Wert sollte vom Typ string sein."
	default:
		return "Dieser Wert ist ungültig."
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
