package models

import "time"

// DocumentStatus is the review state of a student document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusApproved, DocumentStatusRejected:
		return true
	}
	return false
}

// Label is the badge text.
func (s DocumentStatus) Label() string {
	switch s {
	case DocumentStatusPending:
		return "Pendente"
	case DocumentStatusApproved:
		return "Aprovado"
	case DocumentStatusRejected:
		return "Recusado"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s DocumentStatus) PluralLabel() string {
	switch s {
	case DocumentStatusPending:
		return "pendentes"
	case DocumentStatusApproved:
		return "aprovados"
	case DocumentStatusRejected:
		return "recusados"
	}
	return string(s)
}

// StudentDocument is a file a student submitted for review.
type StudentDocument struct {
	ID           string         `json:"id"`
	StudentID    string         `json:"studentId"`
	StudentName  string         `json:"studentName,omitempty"`
	Title        string         `json:"title"`
	DocumentType string         `json:"documentType"`
	UploadDate   time.Time      `json:"uploadDate"`
	FileSize     int64          `json:"fileSize"`
	Status       DocumentStatus `json:"status"`
	Comments     string         `json:"comments,omitempty"`
	DownloadURL  string         `json:"downloadUrl,omitempty"`
}
