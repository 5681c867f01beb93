package service

import (
	"math"
	"sort"

	"github.com/studylane/examboard-api/internal/models"
)

// The aggregate calculator turns a roster and its graded attempts into a
// fully ordered leaderboard. It is pure: no I/O, fresh output on every call.

type studentAccumulator struct {
	studentID    string
	studentName  string
	departmentID string
	totalPoints  float64
	examCount    int
}

// ComputeStudentAggregates ranks the given students by their submitted
// attempts. Students with no eligible attempt are excluded entirely. Ordering
// is descending total points, ties broken by descending average; remaining
// ties keep roster order (stable, not contractual). Ranks are dense and
// 1-based, with no shared positions.
func ComputeStudentAggregates(roster []models.User, attempts []models.ExamAttempt) []models.StudentAggregate {
	accumulators := make(map[string]*studentAccumulator, len(roster))
	order := make([]string, 0, len(roster))
	for _, member := range roster {
		if member.Role != models.RoleStudent {
			continue
		}
		deptID := ""
		if member.DepartmentID != nil {
			deptID = *member.DepartmentID
		}
		accumulators[member.ID] = &studentAccumulator{
			studentID:    member.ID,
			studentName:  member.FullName,
			departmentID: deptID,
		}
		order = append(order, member.ID)
	}

	for _, attempt := range attempts {
		if !attempt.Eligible() {
			continue
		}
		acc, ok := accumulators[attempt.StudentID]
		if !ok {
			continue
		}
		acc.totalPoints += *attempt.TotalScore
		acc.examCount++
	}

	aggregates := make([]models.StudentAggregate, 0, len(order))
	for _, studentID := range order {
		acc := accumulators[studentID]
		if acc.examCount == 0 {
			continue
		}
		aggregates = append(aggregates, models.StudentAggregate{
			StudentID:    acc.studentID,
			StudentName:  acc.studentName,
			DepartmentID: acc.departmentID,
			TotalPoints:  round2(acc.totalPoints),
			AverageScore: round2(acc.totalPoints / float64(acc.examCount)),
			ExamCount:    acc.examCount,
		})
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].TotalPoints != aggregates[j].TotalPoints {
			return aggregates[i].TotalPoints > aggregates[j].TotalPoints
		}
		return aggregates[i].AverageScore > aggregates[j].AverageScore
	})

	for i := range aggregates {
		aggregates[i].RankPosition = i + 1
	}

	return aggregates
}

// ComputeDepartmentAggregates ranks departments by the mean of their active
// students' individual averages (two-stage average). Departments with no
// active student are excluded. Ordering is descending average, ties broken by
// descending total score; ranks are dense and 1-based.
func ComputeDepartmentAggregates(departments []models.Department, roster []models.User, attempts []models.ExamAttempt) []models.DepartmentAggregate {
	students := ComputeStudentAggregates(roster, attempts)

	type deptAccumulator struct {
		totalScore  float64
		averageSum  float64
		activeCount int
	}
	byDept := make(map[string]*deptAccumulator, len(departments))
	for _, student := range students {
		acc, ok := byDept[student.DepartmentID]
		if !ok {
			acc = &deptAccumulator{}
			byDept[student.DepartmentID] = acc
		}
		acc.totalScore += student.TotalPoints
		acc.averageSum += student.AverageScore
		acc.activeCount++
	}

	aggregates := make([]models.DepartmentAggregate, 0, len(departments))
	for _, dept := range departments {
		acc, ok := byDept[dept.ID]
		if !ok || acc.activeCount == 0 {
			continue
		}
		aggregates = append(aggregates, models.DepartmentAggregate{
			DepartmentID:         dept.ID,
			DepartmentName:       dept.Name,
			TotalDepartmentScore: round2(acc.totalScore),
			AverageScore:         round2(acc.averageSum / float64(acc.activeCount)),
			ActiveStudentCount:   acc.activeCount,
		})
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].AverageScore != aggregates[j].AverageScore {
			return aggregates[i].AverageScore > aggregates[j].AverageScore
		}
		return aggregates[i].TotalDepartmentScore > aggregates[j].TotalDepartmentScore
	})

	for i := range aggregates {
		aggregates[i].RankPosition = i + 1
	}

	return aggregates
}

// round2 rounds to two decimals, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
