package models

import "time"

// NotificationVariant selects the toast style.
type NotificationVariant string

const (
	NotificationSuccess NotificationVariant = "success"
	NotificationError   NotificationVariant = "error"
	NotificationInfo    NotificationVariant = "info"
)

// Notification is a user-visible toast pushed over the websocket channel.
type Notification struct {
	ID          string              `json:"id"`
	UserID      string              `json:"-"`
	Variant     NotificationVariant `json:"variant"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Data        interface{}         `json:"data,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}
