package models

import "time"

// Audit outcomes.
const (
	AuditOutcomeSuccess  = "SUCCESS"
	AuditOutcomeFailure  = "FAILURE"
	AuditOutcomeRejected = "REJECTED"
)

// AuditLog records the outcome of one mutation issued through the gateway.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Portal     string    `db:"portal" json:"portal"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Message    string    `db:"message" json:"message"`
	RequestID  string    `db:"request_id" json:"request_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
