package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

// AuditFilter narrows audit listings.
type AuditFilter struct {
	UserID   string
	Resource string
	Outcome  string
	Limit    int
}

// AuditRepository persists mutation outcomes.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record stores an audit entry.
func (r *AuditRepository) Record(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, portal, action, resource, resource_id, outcome, message, request_id, created_at) VALUES (:id, :user_id, :portal, :action, :resource, :resource_id, :outcome, :message, :request_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("user_id", filter.UserID)
	add("resource", filter.Resource)
	add("outcome", filter.Outcome)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, portal, action, resource, resource_id, outcome, message, request_id, created_at FROM audit_logs`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
