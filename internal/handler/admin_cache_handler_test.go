package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/studylane/examboard-api/internal/dto"
	"github.com/studylane/examboard-api/internal/middleware"
	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
)

type adminCacheServiceMock struct {
	lastDept     string
	lastCallerID string
	refreshErr   error
	resetErr     error
}

func (m *adminCacheServiceMock) AdminRefreshCache(ctx context.Context, callerID, departmentID string) (*dto.AdminRefreshResponse, error) {
	m.lastCallerID = callerID
	m.lastDept = departmentID
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &dto.AdminRefreshResponse{Success: true}, nil
}

func (m *adminCacheServiceMock) AdminResetCache(ctx context.Context, callerID, departmentID string) (*dto.AdminResetResponse, error) {
	m.lastCallerID = callerID
	m.lastDept = departmentID
	if m.resetErr != nil {
		return nil, m.resetErr
	}
	return &dto.AdminResetResponse{Success: true}, nil
}

func (m *adminCacheServiceMock) AdminCacheStatus(ctx context.Context, callerID string) (*dto.CacheStatusResponse, error) {
	m.lastCallerID = callerID
	return &dto.CacheStatusResponse{}, nil
}

func newAdminContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	return c, w
}

func TestAdminCacheHandlerRefreshAll(t *testing.T) {
	mock := &adminCacheServiceMock{}
	handler := NewAdminCacheHandler(mock)

	c, w := newAdminContext(t, http.MethodPost, "/admin/cache/refresh")
	handler.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "admin-1", mock.lastCallerID)
	require.Empty(t, mock.lastDept)
}

func TestAdminCacheHandlerRefreshSingleDepartment(t *testing.T) {
	mock := &adminCacheServiceMock{}
	handler := NewAdminCacheHandler(mock)

	c, w := newAdminContext(t, http.MethodPost, "/admin/cache/refresh?departmentId=cs")
	handler.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cs", mock.lastDept)
}

func TestAdminCacheHandlerRefreshUnknownDepartment(t *testing.T) {
	mock := &adminCacheServiceMock{refreshErr: appErrors.Clone(appErrors.ErrNotFound, "department not found")}
	handler := NewAdminCacheHandler(mock)

	c, w := newAdminContext(t, http.MethodPost, "/admin/cache/refresh?departmentId=ghost")
	handler.Refresh(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCacheHandlerReset(t *testing.T) {
	mock := &adminCacheServiceMock{}
	handler := NewAdminCacheHandler(mock)

	c, w := newAdminContext(t, http.MethodDelete, "/admin/cache/cs")
	c.Params = gin.Params{{Key: "departmentId", Value: "cs"}}
	handler.Reset(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cs", mock.lastDept)
}

func TestAdminCacheHandlerStatus(t *testing.T) {
	mock := &adminCacheServiceMock{}
	handler := NewAdminCacheHandler(mock)

	c, w := newAdminContext(t, http.MethodGet, "/admin/cache/status")
	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "admin-1", mock.lastCallerID)
}
