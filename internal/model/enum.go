package model

import (
	"fmt"
	"strings"
)

// Priority is the closed set of urgency levels a todo can carry.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityUnknown Priority = "unknown"
)

// ValidPriorities returns all priority values in declaration order.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUnknown}
}

// IsValid reports whether p is one of ValidPriorities.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// ParsePriority converts s into a Priority, returning an *EnumError when s is
// not a member of the set.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", &EnumError{Type: "Priority", Value: &s}
	}
	return p, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Status is the closed set of lifecycle states a todo can be in.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// ValidStatuses returns all status values in declaration order.
func ValidStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusPending}
}

// IsValid reports whether s is one of ValidStatuses.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseStatus converts s into a Status, returning an *EnumError when s is not
// a member of the set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", &EnumError{Type: "Status", Value: &s}
	}
	return st, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EnumError reports a value that does not belong to a backed enumeration.
// Value is nil when the supplied data was not a string at all.
type EnumError struct {
	Type  string
	Value *string
}

func (e *EnumError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("the data must belong to a backed enumeration of type %s", e.Type)
	}
	return fmt.Sprintf("%q is not a valid backing value for backed enumeration type %s", *e.Value, e.Type)
}

// EnumValues resolves an enumeration type name to its valid values. Qualified
// names such as "model.Priority" or `App\Enum\Status` resolve by their last
// segment.
func EnumValues(typeName string) ([]string, bool) {
	name := typeName
	if i := strings.LastIndexAny(name, `.\/`); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "Priority":
		return stringValues(ValidPriorities()), true
	case "Status":
		return stringValues(ValidStatuses()), true
	default:
		return nil, false
	}
}

func stringValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
