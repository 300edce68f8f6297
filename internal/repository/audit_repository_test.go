package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryRecord(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "admin-1"
	entry := &models.AuditLog{
		UserID:    &userID,
		Portal:    "admin",
		Action:    "payment.mark_paid",
		Resource:  "payment",
		Outcome:   models.AuditOutcomeSuccess,
		RequestID: "req-1",
	}
	require.NoError(t, repo.Record(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryList(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "portal", "action", "resource", "resource_id", "outcome", "message", "request_id", "created_at"}).
		AddRow("a1", "admin-1", "admin", "document.reject", "document", "d1", "SUCCESS", "Documento recusado", "req-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs WHERE resource = $1 AND outcome = $2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("document", "SUCCESS", 50).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), AuditFilter{Resource: "document", Outcome: "SUCCESS"})

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "document.reject", logs[0].Action)
	require.NotNil(t, logs[0].ResourceID)
	assert.Equal(t, "d1", *logs[0].ResourceID)
	require.NoError(t, mock.ExpectationsWereMet())
}
