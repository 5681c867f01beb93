package handler

import (
	"context"
	"encoding/json"
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

type leaderboardServiceMock struct {
	lastQuery    dto.LeaderboardQuery
	lastDept     string
	lastCallerID string
	page         *dto.DepartmentLeaderboardResponse
	global       *dto.GlobalLeaderboardResponse
	err          error
}

func (m *leaderboardServiceMock) GetDepartmentLeaderboard(ctx context.Context, callerID, departmentID string, query dto.LeaderboardQuery) (*dto.DepartmentLeaderboardResponse, error) {
	m.lastCallerID = callerID
	m.lastDept = departmentID
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *leaderboardServiceMock) GetGlobalDepartmentLeaderboard(ctx context.Context, callerID string) (*dto.GlobalLeaderboardResponse, error) {
	m.lastCallerID = callerID
	if m.err != nil {
		return nil, m.err
	}
	return m.global, nil
}

func newLeaderboardContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	return c, w
}

func TestLeaderboardHandlerDepartmentDefaults(t *testing.T) {
	mock := &leaderboardServiceMock{page: &dto.DepartmentLeaderboardResponse{DepartmentID: "cs", TotalStudents: 3}}
	handler := NewLeaderboardHandler(mock)

	c, w := newLeaderboardContext(t, "/departments/cs/leaderboard")
	c.Params = gin.Params{{Key: "departmentId", Value: "cs"}}

	handler.Department(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "student-1", mock.lastCallerID)
	require.Equal(t, "cs", mock.lastDept)
	require.Equal(t, 50, mock.lastQuery.Limit)
	require.Equal(t, 0, mock.lastQuery.Offset)
	require.False(t, mock.lastQuery.ForceRefresh)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body, "data")
	require.Contains(t, body, "meta")
}

func TestLeaderboardHandlerDepartmentQueryParams(t *testing.T) {
	mock := &leaderboardServiceMock{page: &dto.DepartmentLeaderboardResponse{}}
	handler := NewLeaderboardHandler(mock)

	c, w := newLeaderboardContext(t, "/departments/cs/leaderboard?limit=25&offset=10&forceRefresh=true")
	c.Params = gin.Params{{Key: "departmentId", Value: "cs"}}

	handler.Department(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 25, mock.lastQuery.Limit)
	require.Equal(t, 10, mock.lastQuery.Offset)
	require.True(t, mock.lastQuery.ForceRefresh)
}

func TestLeaderboardHandlerDepartmentMalformedQuery(t *testing.T) {
	handler := NewLeaderboardHandler(&leaderboardServiceMock{})

	for _, target := range []string{
		"/departments/cs/leaderboard?limit=abc",
		"/departments/cs/leaderboard?offset=abc",
		"/departments/cs/leaderboard?forceRefresh=maybe",
	} {
		c, w := newLeaderboardContext(t, target)
		c.Params = gin.Params{{Key: "departmentId", Value: "cs"}}
		handler.Department(c)
		require.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestLeaderboardHandlerDepartmentServiceError(t *testing.T) {
	mock := &leaderboardServiceMock{err: appErrors.Clone(appErrors.ErrPermissionDenied, "wrong department")}
	handler := NewLeaderboardHandler(mock)

	c, w := newLeaderboardContext(t, "/departments/ee/leaderboard")
	c.Params = gin.Params{{Key: "departmentId", Value: "ee"}}

	handler.Department(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeaderboardHandlerGlobal(t *testing.T) {
	mock := &leaderboardServiceMock{global: &dto.GlobalLeaderboardResponse{TotalDepartments: 2}}
	handler := NewLeaderboardHandler(mock)

	c, w := newLeaderboardContext(t, "/leaderboard/departments")
	handler.Global(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "student-1", mock.lastCallerID)
}
