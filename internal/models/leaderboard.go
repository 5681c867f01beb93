package models

import "time"

// StudentAggregate is one ranked leaderboard row. It is derived on every
// recomputation and never mutated in place.
type StudentAggregate struct {
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	DepartmentID string  `json:"department_id"`
	TotalPoints  float64 `json:"total_points"`
	AverageScore float64 `json:"average_score"`
	ExamCount    int     `json:"exam_count"`
	RankPosition int     `json:"rank_position"`
}

// DepartmentAggregate ranks a department by its students' performance. The
// average is the mean of each active student's own average, not a pooled
// average over raw points.
type DepartmentAggregate struct {
	DepartmentID         string  `json:"department_id"`
	DepartmentName       string  `json:"department_name"`
	TotalDepartmentScore float64 `json:"total_department_score"`
	AverageScore         float64 `json:"average_score"`
	ActiveStudentCount   int     `json:"active_student_count"`
	RankPosition         int     `json:"rank_position"`
}

// LeaderboardCacheEntry is the per-department cache row. The row is replaced
// wholesale on every recomputation; logical expiry lives in ExpiresAt rather
// than in the store so the sweep can observe expired rows.
type LeaderboardCacheEntry struct {
	DepartmentID  string             `json:"department_id"`
	Entries       []StudentAggregate `json:"entries"`
	TotalStudents int                `json:"total_students"`
	LastUpdated   time.Time          `json:"last_updated"`
	ExpiresAt     time.Time          `json:"expires_at"`
}

// Expired reports whether the entry is stale at the given instant. The
// boundary counts as expired.
func (e LeaderboardCacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// CacheHealth summarises the state of all cache rows.
type CacheHealth struct {
	Total               int `json:"total"`
	Valid               int `json:"valid"`
	Expired             int `json:"expired"`
	TotalCachedStudents int `json:"total_cached_students"`
}

// CacheRowDetail describes one cache row for the admin status report.
type CacheRowDetail struct {
	DepartmentID  string    `json:"department_id"`
	TotalStudents int       `json:"total_students"`
	LastUpdated   time.Time `json:"last_updated"`
	ExpiresAt     time.Time `json:"expires_at"`
	Expired       bool      `json:"expired"`
}
