package dto

import "strings"

// RejectForm captures the feedback attached to a rejection.
type RejectForm struct {
	Comments string `json:"comments" validate:"required,min=10,max=1000"`
}

// Normalize trims the comment before its length is checked.
func (f *RejectForm) Normalize() {
	f.Comments = strings.TrimSpace(f.Comments)
}

// ReviewPayload is the body of approve/reject calls.
type ReviewPayload struct {
	Comments string `json:"comments,omitempty"`
}
