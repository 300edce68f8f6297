package models

import "time"

// MessageStatus marks whether the recipient has opened a message.
type MessageStatus string

const (
	MessageStatusUnread MessageStatus = "unread"
	MessageStatusRead   MessageStatus = "read"
)

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	return s == MessageStatusUnread || s == MessageStatusRead
}

// Label is the badge text.
func (s MessageStatus) Label() string {
	switch s {
	case MessageStatusUnread:
		return "Não lida"
	case MessageStatusRead:
		return "Lida"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s MessageStatus) PluralLabel() string {
	switch s {
	case MessageStatusUnread:
		return "não lidas"
	case MessageStatusRead:
		return "lidas"
	}
	return string(s)
}

// Message is an internal inbox message.
type Message struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"senderId"`
	SenderName  string        `json:"senderName,omitempty"`
	RecipientID string        `json:"recipientId"`
	Subject     string        `json:"subject"`
	Content     string        `json:"content"`
	ThreadID    string        `json:"threadId,omitempty"`
	Status      MessageStatus `json:"status"`
	SentAt      time.Time     `json:"sentAt"`
	ReadAt      *time.Time    `json:"readAt,omitempty"`
}
