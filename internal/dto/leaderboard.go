package dto

import (
	"time"

	"github.com/studylane/examboard-api/internal/models"
)

// LeaderboardQuery carries validated pagination options for a department
// leaderboard request. Out-of-range values are rejected, never clamped.
type LeaderboardQuery struct {
	ForceRefresh bool `json:"force_refresh"`
	Limit        int  `json:"limit" validate:"min=1,max=100"`
	Offset       int  `json:"offset" validate:"min=0"`
}

// DepartmentLeaderboardResponse is a paginated slice over the full ranking.
type DepartmentLeaderboardResponse struct {
	DepartmentID  string                    `json:"department_id"`
	Entries       []models.StudentAggregate `json:"entries"`
	TotalStudents int                       `json:"total_students"`
	LastUpdated   time.Time                 `json:"last_updated"`
	HasMore       bool                      `json:"has_more"`
	NextCursor    *int                      `json:"next_cursor,omitempty"`
	FromCache     bool                      `json:"from_cache"`
}

// GlobalLeaderboardResponse ranks all departments; always freshly computed.
type GlobalLeaderboardResponse struct {
	Rankings         []models.DepartmentAggregate `json:"rankings"`
	TotalDepartments int                          `json:"total_departments"`
	LastUpdated      time.Time                    `json:"last_updated"`
}

// DepartmentRefreshResult reports one department's outcome of a bulk refresh.
type DepartmentRefreshResult struct {
	DepartmentID string `json:"department_id"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// AdminRefreshResponse reports a forced cache refresh.
type AdminRefreshResponse struct {
	Success              bool                      `json:"success"`
	Message              string                    `json:"message"`
	PerDepartmentResults []DepartmentRefreshResult `json:"per_department_results,omitempty"`
}

// AdminResetResponse reports a forced cache invalidation.
type AdminResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CacheStatusResponse is the admin cache health report.
type CacheStatusResponse struct {
	TotalDepartments  int                     `json:"total_departments"`
	TotalStudents     int                     `json:"total_students"`
	TotalExamAttempts int                     `json:"total_exam_attempts"`
	Cache             models.CacheHealth      `json:"cache"`
	CacheDetails      []models.CacheRowDetail `json:"cache_details"`
}

// AttemptState mirrors the attempt fields the submission hook cares about.
type AttemptState struct {
	ID         string   `json:"id" validate:"required"`
	ExamID     string   `json:"exam_id"`
	StudentID  string   `json:"student_id" validate:"required"`
	Submitted  bool     `json:"submitted"`
	TotalScore *float64 `json:"total_score,omitempty"`
	MaxScore   *float64 `json:"max_score,omitempty"`
}

// AttemptEventRequest is the before/after payload delivered by the
// exam-submission collaborator whenever an attempt record changes.
type AttemptEventRequest struct {
	Previous *AttemptState `json:"previous,omitempty"`
	Current  AttemptState  `json:"current" validate:"required"`
}
