package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/studylane/examboard-api/internal/models"
)

// attemptQueryBatchSize bounds the size of student-id IN lists. The attempt
// store rejects membership filters above this size, so exceeding it would
// silently drop students from the ranking.
const attemptQueryBatchSize = 10

// AttemptRepository reads graded exam attempts.
type AttemptRepository struct {
	db *sqlx.DB
}

// NewAttemptRepository constructs an AttemptRepository.
func NewAttemptRepository(db *sqlx.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// ListSubmittedByStudents returns submitted attempts for the given students,
// issuing one query per batch of at most attemptQueryBatchSize ids and
// concatenating the results.
func (r *AttemptRepository) ListSubmittedByStudents(ctx context.Context, studentIDs []string) ([]models.ExamAttempt, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	var attempts []models.ExamAttempt
	for start := 0; start < len(studentIDs); start += attemptQueryBatchSize {
		end := start + attemptQueryBatchSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}
		batch := studentIDs[start:end]

		placeholders := make([]string, len(batch))
		args := make([]interface{}, len(batch))
		for i, id := range batch {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = id
		}

		query := fmt.Sprintf(`SELECT id, exam_id, student_id, submitted, total_score, max_score, submitted_at, created_at
        FROM exam_attempts WHERE submitted = TRUE AND student_id IN (%s)`, strings.Join(placeholders, ", "))

		var chunk []models.ExamAttempt
		if err := r.db.SelectContext(ctx, &chunk, query, args...); err != nil {
			return nil, fmt.Errorf("list attempts batch [%d:%d]: %w", start, end, err)
		}
		attempts = append(attempts, chunk...)
	}

	return attempts, nil
}

// CountSubmitted returns the total number of submitted attempts.
func (r *AttemptRepository) CountSubmitted(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exam_attempts WHERE submitted = TRUE"); err != nil {
		return 0, fmt.Errorf("count submitted attempts: %w", err)
	}
	return total, nil
}
