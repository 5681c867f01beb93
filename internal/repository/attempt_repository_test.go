package repository

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attemptColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "exam_id", "student_id", "submitted", "total_score", "max_score", "submitted_at", "created_at"})
}

func TestAttemptRepositoryBatchesStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttemptRepository(db)

	// 23 ids must produce three queries of 10, 10 and 3 ids.
	ids := make([]string, 23)
	for i := range ids {
		ids[i] = fmt.Sprintf("student-%02d", i)
	}

	// sqlmock matches expectations in order, so set them up sequentially.
	now := time.Now()
	for batch := 0; batch < 3; batch++ {
		size := 10
		if batch == 2 {
			size = 3
		}
		rows := attemptColumns()
		args := make([]driver.Value, 0, size)
		for i := 0; i < size; i++ {
			id := ids[batch*10+i]
			args = append(args, id)
			rows.AddRow("att-"+id, "exam-1", id, true, 80.0, 100.0, now, now)
		}
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, exam_id, student_id, submitted, total_score, max_score, submitted_at, created_at")).
			WithArgs(args...).
			WillReturnRows(rows)
	}

	attempts, err := repo.ListSubmittedByStudents(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, attempts, 23)

	// The concatenated result covers every requested student exactly once.
	seen := make(map[string]bool, len(attempts))
	for _, attempt := range attempts {
		seen[attempt.StudentID] = true
	}
	for _, id := range ids {
		require.True(t, seen[id], "missing attempts for %s", id)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositorySingleBatchUnderLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttemptRepository(db)
	now := time.Now()
	rows := attemptColumns().
		AddRow("att-1", "exam-1", "student-1", true, 90.0, 100.0, now, now).
		AddRow("att-2", "exam-2", "student-1", true, 70.0, 100.0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE submitted = TRUE AND student_id IN ($1, $2)")).
		WithArgs("student-1", "student-2").
		WillReturnRows(rows)

	attempts, err := repo.ListSubmittedByStudents(context.Background(), []string{"student-1", "student-2"})
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryEmptyRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttemptRepository(db)
	attempts, err := repo.ListSubmittedByStudents(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepositoryCountSubmitted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttemptRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_attempts WHERE submitted = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.CountSubmitted(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
