package dto

import (
	"strings"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

// ChatForm is one user turn.
type ChatForm struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// Normalize trims the message.
func (f *ChatForm) Normalize() {
	f.Message = strings.TrimSpace(f.Message)
}

// ChatExchange is the pair appended by one turn.
type ChatExchange struct {
	Question models.ChatMessage `json:"question"`
	Answer   models.ChatMessage `json:"answer"`
}

// ContentRequestForm asks the assistant for course material.
type ContentRequestForm struct {
	Kind     string `json:"kind" validate:"required,oneof=lesson quiz summary description"`
	Topic    string `json:"topic" validate:"required,min=3,max=500"`
	CourseID string `json:"courseId,omitempty"`
	Audience string `json:"audience,omitempty" validate:"max=200"`
}

// Normalize trims every field and lower-cases the kind.
func (f *ContentRequestForm) Normalize() {
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	f.Topic = strings.TrimSpace(f.Topic)
	f.CourseID = strings.TrimSpace(f.CourseID)
	f.Audience = strings.TrimSpace(f.Audience)
}

// ContentJob acknowledges a queued generation.
type ContentJob struct {
	JobID string `json:"jobId"`
	Kind  string `json:"kind"`
}

// GeneratedContent is delivered through a notification when a job finishes.
type GeneratedContent struct {
	JobID    string `json:"jobId"`
	Kind     string `json:"kind"`
	Topic    string `json:"topic"`
	CourseID string `json:"courseId,omitempty"`
	Content  string `json:"content"`
}
