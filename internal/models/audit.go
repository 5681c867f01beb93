package models

import "time"

// Audit actions recorded by the access guard.
const (
	AuditActionLeaderboardDenied = "LEADERBOARD_ACCESS_DENIED"
)

// SecurityAuditRecord is an append-only trail entry for denied access.
// Writing it is best-effort; a failure never aborts the primary request.
type SecurityAuditRecord struct {
	ID                    string    `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"user_id"`
	Action                string    `db:"action" json:"action"`
	Reason                string    `db:"reason" json:"reason"`
	RequestedDepartmentID *string   `db:"requested_department_id" json:"requested_department_id,omitempty"`
	UserDepartmentID      *string   `db:"user_department_id" json:"user_department_id,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
