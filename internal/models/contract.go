package models

import "time"

// ContractStatus tracks enrollment contracts. Signing is one-way.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusExpired   ContractStatus = "expired"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusPending, ContractStatusSigned, ContractStatusExpired, ContractStatusCancelled:
		return true
	}
	return false
}

// Label is the badge text.
func (s ContractStatus) Label() string {
	switch s {
	case ContractStatusPending:
		return "Aguardando assinatura"
	case ContractStatusSigned:
		return "Assinado"
	case ContractStatusExpired:
		return "Expirado"
	case ContractStatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s ContractStatus) PluralLabel() string {
	switch s {
	case ContractStatusPending:
		return "pendentes"
	case ContractStatusSigned:
		return "assinados"
	case ContractStatusExpired:
		return "expirados"
	case ContractStatusCancelled:
		return "cancelados"
	}
	return string(s)
}

// Contract is an enrollment agreement between a student and a course.
type Contract struct {
	ID             string         `json:"id"`
	ContractNumber string         `json:"contractNumber"`
	CourseID       string         `json:"courseId"`
	CourseName     string         `json:"courseName,omitempty"`
	StudentID      string         `json:"studentId"`
	StudentName    string         `json:"studentName,omitempty"`
	TotalValue     int64          `json:"totalValue"`
	Installments   int            `json:"installments"`
	Status         ContractStatus `json:"status"`
	ContractText   string         `json:"contractText,omitempty"`
	SignedAt       *time.Time     `json:"signedAt,omitempty"`
}
