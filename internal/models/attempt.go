package models

import "time"

// ExamAttempt is a graded exam attempt as recorded by the exam-taking
// collaborator. Scores are nullable until grading completes.
type ExamAttempt struct {
	ID          string     `db:"id" json:"id"`
	ExamID      string     `db:"exam_id" json:"exam_id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	Submitted   bool       `db:"submitted" json:"submitted"`
	TotalScore  *float64   `db:"total_score" json:"total_score,omitempty"`
	MaxScore    *float64   `db:"max_score" json:"max_score,omitempty"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Eligible reports whether the attempt counts toward leaderboard aggregates:
// submitted, with a non-negative score and a positive maximum.
func (a ExamAttempt) Eligible() bool {
	return a.Submitted &&
		a.TotalScore != nil && *a.TotalScore >= 0 &&
		a.MaxScore != nil && *a.MaxScore > 0
}
