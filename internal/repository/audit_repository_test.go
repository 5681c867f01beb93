package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/studylane/examboard-api/internal/models"
)

func TestAuditRepositoryAppendFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO security_audit_log")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reqDept := "cs"
	userDept := "math"
	record := &models.SecurityAuditRecord{
		UserID:                "student-1",
		Action:                models.AuditActionLeaderboardDenied,
		Reason:                "department mismatch",
		RequestedDepartmentID: &reqDept,
		UserDepartmentID:      &userDept,
	}
	require.NoError(t, repo.Append(context.Background(), record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
