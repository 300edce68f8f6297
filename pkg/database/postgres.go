package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/lms-portal-gateway/pkg/config"
)

const auditSchema = `CREATE TABLE IF NOT EXISTS audit_logs (
	id          UUID PRIMARY KEY,
	user_id     TEXT,
	portal      TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	resource    TEXT NOT NULL,
	resource_id TEXT,
	outcome     TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs (resource, resource_id);`

// NewPostgres returns a configured PostgreSQL client for the audit trail.
// It returns nil when auditing is disabled.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the audit tables when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}
