package model

import "time"

// NotificationType classifies a user-facing notification.
type NotificationType string

const (
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// DefaultDuration returns how long a notification of type t stays visible
// when no explicit duration is given.
func DefaultDuration(t NotificationType) time.Duration {
	switch t {
	case NotificationError:
		return 5 * time.Second
	case NotificationSuccess:
		return 3 * time.Second
	default:
		return 4 * time.Second
	}
}

// Notification is a transient message surfaced to the user, typically after
// an API call fails or succeeds. It is never persisted.
type Notification struct {
	// ID is generated at creation from the current time plus random bits.
	ID string `json:"id"`

	Type    NotificationType `json:"type"`
	Message string           `json:"message"`

	// Duration is how long the notification stays before it is removed
	// automatically. Zero keeps it until removed explicitly.
	Duration time.Duration `json:"duration"`

	// Closable reports whether the user may dismiss it by hand.
	Closable bool `json:"closable"`

	CreatedAt time.Time `json:"created_at"`
}
