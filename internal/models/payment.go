package models

import "time"

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusCancelled:
		return true
	}
	return false
}

// Payable reports whether a manual "mark as paid" is still allowed.
func (s PaymentStatus) Payable() bool {
	return s == PaymentStatusPending || s == PaymentStatusOverdue
}

// Label is the badge text.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "Pendente"
	case PaymentStatusPaid:
		return "Pago"
	case PaymentStatusOverdue:
		return "Atrasado"
	case PaymentStatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s PaymentStatus) PluralLabel() string {
	switch s {
	case PaymentStatusPending:
		return "pendentes"
	case PaymentStatusPaid:
		return "pagos"
	case PaymentStatusOverdue:
		return "atrasados"
	case PaymentStatusCancelled:
		return "cancelados"
	}
	return string(s)
}

// Payment is a charge owed by a student for a course. Amount is in cents.
type Payment struct {
	ID          string        `json:"id"`
	PartnerID   string        `json:"partnerId"`
	StudentID   string        `json:"studentId"`
	StudentName string        `json:"studentName,omitempty"`
	CourseID    string        `json:"courseId"`
	CourseName  string        `json:"courseName,omitempty"`
	Amount      int64         `json:"amount"`
	Status      PaymentStatus `json:"status"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
	PaymentURL  string        `json:"paymentUrl,omitempty"`
	ReceiptURL  string        `json:"receiptUrl,omitempty"`
}

// PaymentSummary aggregates totals per status, in cents.
type PaymentSummary struct {
	TotalReceived int64 `json:"totalReceived"`
	TotalPending  int64 `json:"totalPending"`
	TotalOverdue  int64 `json:"totalOverdue"`
	Count         int   `json:"count"`
}
