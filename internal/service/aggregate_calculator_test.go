package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studylane/examboard-api/internal/models"
)

func ptrFloat(v float64) *float64 {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func student(id, name, deptID string) models.User {
	return models.User{ID: id, FullName: name, Role: models.RoleStudent, DepartmentID: ptrString(deptID)}
}

func attempt(studentID string, score, max float64) models.ExamAttempt {
	return models.ExamAttempt{
		ID:         "att-" + studentID,
		ExamID:     "exam",
		StudentID:  studentID,
		Submitted:  true,
		TotalScore: ptrFloat(score),
		MaxScore:   ptrFloat(max),
	}
}

func TestComputeStudentAggregatesTotalPointsDriveOrder(t *testing.T) {
	roster := []models.User{
		student("alice", "Alice", "cs"),
		student("bob", "Bob", "cs"),
	}
	attempts := []models.ExamAttempt{
		attempt("alice", 90, 100),
		attempt("alice", 80, 100),
		attempt("bob", 100, 100),
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	require.Len(t, aggregates, 2)

	// Alice has the lower average but the higher total; totals win.
	assert.Equal(t, "alice", aggregates[0].StudentID)
	assert.Equal(t, 170.0, aggregates[0].TotalPoints)
	assert.Equal(t, 85.0, aggregates[0].AverageScore)
	assert.Equal(t, 2, aggregates[0].ExamCount)
	assert.Equal(t, 1, aggregates[0].RankPosition)

	assert.Equal(t, "bob", aggregates[1].StudentID)
	assert.Equal(t, 100.0, aggregates[1].TotalPoints)
	assert.Equal(t, 100.0, aggregates[1].AverageScore)
	assert.Equal(t, 2, aggregates[1].RankPosition)
}

func TestComputeStudentAggregatesAverageBreaksTies(t *testing.T) {
	roster := []models.User{
		student("few", "Few Exams", "cs"),
		student("many", "Many Exams", "cs"),
	}
	attempts := []models.ExamAttempt{
		attempt("few", 100, 100),
		attempt("many", 60, 100),
		attempt("many", 40, 100),
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	require.Len(t, aggregates, 2)
	assert.Equal(t, "few", aggregates[0].StudentID)
	assert.Equal(t, 100.0, aggregates[0].AverageScore)
	assert.Equal(t, "many", aggregates[1].StudentID)
	assert.Equal(t, 50.0, aggregates[1].AverageScore)
}

func TestComputeStudentAggregatesEligibility(t *testing.T) {
	roster := []models.User{
		student("s1", "Student One", "cs"),
		student("s2", "Student Two", "cs"),
	}
	attempts := []models.ExamAttempt{
		attempt("s1", 50, 100),
		{StudentID: "s1", Submitted: false, TotalScore: ptrFloat(99), MaxScore: ptrFloat(100)},
		{StudentID: "s1", Submitted: true, TotalScore: nil, MaxScore: ptrFloat(100)},
		{StudentID: "s1", Submitted: true, TotalScore: ptrFloat(10), MaxScore: nil},
		{StudentID: "s1", Submitted: true, TotalScore: ptrFloat(10), MaxScore: ptrFloat(0)},
		{StudentID: "s1", Submitted: true, TotalScore: ptrFloat(-5), MaxScore: ptrFloat(100)},
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	require.Len(t, aggregates, 1)

	// Only the single eligible attempt counts; s2 never appears at all.
	assert.Equal(t, "s1", aggregates[0].StudentID)
	assert.Equal(t, 50.0, aggregates[0].TotalPoints)
	assert.Equal(t, 1, aggregates[0].ExamCount)
}

func TestComputeStudentAggregatesDenseRanks(t *testing.T) {
	roster := []models.User{
		student("a", "A", "cs"),
		student("b", "B", "cs"),
		student("c", "C", "cs"),
	}
	attempts := []models.ExamAttempt{
		attempt("a", 80, 100),
		attempt("b", 80, 100),
		attempt("c", 80, 100),
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	require.Len(t, aggregates, 3)
	seen := map[int]bool{}
	for _, agg := range aggregates {
		seen[agg.RankPosition] = true
	}
	// Identical scores still occupy distinct consecutive positions.
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)
}

func TestComputeStudentAggregatesRoundsAtFinalStep(t *testing.T) {
	roster := []models.User{student("s", "Student", "cs")}
	attempts := []models.ExamAttempt{
		attempt("s", 33.333, 100),
		attempt("s", 33.333, 100),
		attempt("s", 33.333, 100),
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	require.Len(t, aggregates, 1)
	assert.Equal(t, 100.0, aggregates[0].TotalPoints)
	assert.Equal(t, 33.33, aggregates[0].AverageScore)
}

func TestComputeStudentAggregatesDeterministic(t *testing.T) {
	roster := []models.User{
		student("a", "A", "cs"),
		student("b", "B", "cs"),
		student("c", "C", "cs"),
	}
	attempts := []models.ExamAttempt{
		attempt("a", 70.125, 100),
		attempt("b", 91.5, 100),
		attempt("c", 70.125, 100),
		attempt("c", 12, 50),
	}

	first := ComputeStudentAggregates(roster, attempts)
	second := ComputeStudentAggregates(roster, attempts)
	assert.Equal(t, first, second)
}

func TestComputeDepartmentAggregatesTwoStageAverage(t *testing.T) {
	departments := []models.Department{
		{ID: "x", Name: "Dept X"},
		{ID: "empty", Name: "Empty Dept"},
	}
	roster := []models.User{
		student("s1", "S1", "x"),
		student("s2", "S2", "x"),
	}
	// s1 averages 80 over one exam, s2 averages 100 over three exams. A
	// pooled average would be 95; the two-stage average is 90.
	attempts := []models.ExamAttempt{
		attempt("s1", 80, 100),
		attempt("s2", 100, 100),
		attempt("s2", 100, 100),
		attempt("s2", 100, 100),
	}

	aggregates := ComputeDepartmentAggregates(departments, roster, attempts)
	require.Len(t, aggregates, 1)
	assert.Equal(t, "x", aggregates[0].DepartmentID)
	assert.Equal(t, 90.0, aggregates[0].AverageScore)
	assert.Equal(t, 380.0, aggregates[0].TotalDepartmentScore)
	assert.Equal(t, 2, aggregates[0].ActiveStudentCount)
	assert.Equal(t, 1, aggregates[0].RankPosition)
}

func TestComputeDepartmentAggregatesOrderingAndTieBreak(t *testing.T) {
	departments := []models.Department{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}
	roster := []models.User{
		student("sa", "SA", "a"),
		student("sb1", "SB1", "b"),
		student("sb2", "SB2", "b"),
		student("sc", "SC", "c"),
	}
	attempts := []models.ExamAttempt{
		attempt("sa", 90, 100),
		attempt("sb1", 90, 100),
		attempt("sb2", 90, 100),
		attempt("sc", 70, 100),
	}

	aggregates := ComputeDepartmentAggregates(departments, roster, attempts)
	require.Len(t, aggregates, 3)

	// A and B share average 90; B's higher total wins the tie-break.
	assert.Equal(t, "b", aggregates[0].DepartmentID)
	assert.Equal(t, 1, aggregates[0].RankPosition)
	assert.Equal(t, "a", aggregates[1].DepartmentID)
	assert.Equal(t, 2, aggregates[1].RankPosition)
	assert.Equal(t, "c", aggregates[2].DepartmentID)
	assert.Equal(t, 3, aggregates[2].RankPosition)
}
