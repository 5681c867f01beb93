package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studylane/examboard-api/internal/models"
)

// AuditRepository appends security audit records. The trail is insert-only;
// nothing in the service ever reads it back.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one audit record.
func (r *AuditRepository) Append(ctx context.Context, record *models.SecurityAuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO security_audit_log (id, user_id, action, reason, requested_department_id, user_department_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Action,
		record.Reason,
		record.RequestedDepartmentID,
		record.UserDepartmentID,
		record.CreatedAt,
	); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
