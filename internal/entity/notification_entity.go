package entity

import "time"

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
	NotificationError   NotificationLevel = "error"
)

type NotificationSource string

const (
	NotificationSourceFiles   NotificationSource = "files"
	NotificationSourceSession NotificationSource = "session"
)

// Notification is a transient, human readable status line.
type Notification struct {
	Level      NotificationLevel  `json:"level"`
	Source     NotificationSource `json:"source"`
	Message    string             `json:"message"`
	OccurredAt time.Time          `json:"occurred_at"`
}
