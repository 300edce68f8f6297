package models

import "time"

// CertificationStatus is the review state of a certification request.
// Approved and rejected are terminal.
type CertificationStatus string

const (
	CertificationStatusPending  CertificationStatus = "pending"
	CertificationStatusApproved CertificationStatus = "approved"
	CertificationStatusRejected CertificationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s CertificationStatus) Valid() bool {
	switch s {
	case CertificationStatusPending, CertificationStatusApproved, CertificationStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further review is possible.
func (s CertificationStatus) Terminal() bool {
	return s == CertificationStatusApproved || s == CertificationStatusRejected
}

// Label is the badge text.
func (s CertificationStatus) Label() string {
	switch s {
	case CertificationStatusPending:
		return "Pendente"
	case CertificationStatusApproved:
		return "Aprovada"
	case CertificationStatusRejected:
		return "Rejeitada"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s CertificationStatus) PluralLabel() string {
	switch s {
	case CertificationStatusPending:
		return "pendentes"
	case CertificationStatusApproved:
		return "aprovadas"
	case CertificationStatusRejected:
		return "rejeitadas"
	}
	return string(s)
}

// CertificationDocument is a file attached to a certification request.
type CertificationDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CertificationRequest is a partner's request to certify a student.
type CertificationRequest struct {
	ID          string                  `json:"id"`
	StudentName string                  `json:"studentName"`
	PartnerName string                  `json:"partnerName"`
	CourseName  string                  `json:"courseName"`
	RequestDate time.Time               `json:"requestDate"`
	Status      CertificationStatus     `json:"status"`
	Documents   []CertificationDocument `json:"documents"`
	Comments    string                  `json:"comments,omitempty"`
}
