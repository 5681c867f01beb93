package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
)

type mockProfileReader struct {
	profiles map[string]*models.User
}

func (m *mockProfileReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.profiles[id], nil
}

type mockAuditAppender struct {
	records []*models.SecurityAuditRecord
}

func (m *mockAuditAppender) Append(ctx context.Context, record *models.SecurityAuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

func newGuardForTest() (*AccessGuard, *mockProfileReader, *mockAuditAppender) {
	profiles := &mockProfileReader{profiles: map[string]*models.User{
		"student-a": {ID: "student-a", Role: models.RoleStudent, DepartmentID: ptrString("dept-a")},
		"admin":     {ID: "admin", Role: models.RoleAdmin},
		"root":      {ID: "root", Role: models.RoleSuperAdmin},
	}}
	audits := &mockAuditAppender{}
	return NewAccessGuard(profiles, audits, zap.NewNop()), profiles, audits
}

func TestAccessGuardRejectsAnonymousCaller(t *testing.T) {
	guard, _, _ := newGuardForTest()
	_, err := guard.Authorize(context.Background(), "", "dept-a")
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrUnauthenticated))
}

func TestAccessGuardRejectsUnknownProfile(t *testing.T) {
	guard, _, _ := newGuardForTest()
	_, err := guard.Authorize(context.Background(), "ghost", "dept-a")
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrNotFound))
}

func TestAccessGuardStudentOwnDepartment(t *testing.T) {
	guard, _, audits := newGuardForTest()
	caller, err := guard.Authorize(context.Background(), "student-a", "dept-a")
	require.NoError(t, err)
	assert.Equal(t, "student-a", caller.ID)
	assert.Empty(t, audits.records)
}

func TestAccessGuardStudentCrossDepartmentDeniedWithAudit(t *testing.T) {
	guard, _, audits := newGuardForTest()
	_, err := guard.Authorize(context.Background(), "student-a", "dept-b")
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrPermissionDenied))

	require.Len(t, audits.records, 1)
	record := audits.records[0]
	assert.Equal(t, "student-a", record.UserID)
	assert.Equal(t, models.AuditActionLeaderboardDenied, record.Action)
	require.NotNil(t, record.RequestedDepartmentID)
	assert.Equal(t, "dept-b", *record.RequestedDepartmentID)
	require.NotNil(t, record.UserDepartmentID)
	assert.Equal(t, "dept-a", *record.UserDepartmentID)
}

func TestAccessGuardAdminsCrossDepartments(t *testing.T) {
	guard, _, audits := newGuardForTest()
	for _, callerID := range []string{"admin", "root"} {
		_, err := guard.Authorize(context.Background(), callerID, "dept-b")
		require.NoError(t, err)
	}
	assert.Empty(t, audits.records)
}

func TestAccessGuardRequireAdmin(t *testing.T) {
	guard, _, audits := newGuardForTest()

	_, err := guard.RequireAdmin(context.Background(), "admin")
	require.NoError(t, err)

	_, err = guard.RequireAdmin(context.Background(), "student-a")
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrPermissionDenied))
	assert.Len(t, audits.records, 1)
}
