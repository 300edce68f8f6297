package dto

import "strings"

// SendMessageForm composes an inbox message.
type SendMessageForm struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Content     string `json:"content" validate:"required,max=5000"`
	ThreadID    string `json:"threadId,omitempty"`
}

// Normalize trims every field.
func (f *SendMessageForm) Normalize() {
	f.RecipientID = strings.TrimSpace(f.RecipientID)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Content = strings.TrimSpace(f.Content)
	f.ThreadID = strings.TrimSpace(f.ThreadID)
}

// MessagePayload is the body sent to the backend.
type MessagePayload struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	ThreadID    string `json:"threadId,omitempty"`
}
