package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studylane/examboard-api/internal/models"
)

// UserRepository manages persistence for roster profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a profile by ID. Returns (nil, nil) when no row exists so
// callers can map absence to their own error kind.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, full_name, role, department_id, active, created_at, updated_at
        FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

// ListStudentsByDepartment returns all student profiles in a department.
func (r *UserRepository) ListStudentsByDepartment(ctx context.Context, departmentID string) ([]models.User, error) {
	query := `SELECT id, email, full_name, role, department_id, active, created_at, updated_at
        FROM users WHERE department_id = $1 AND role = $2 ORDER BY full_name ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, departmentID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list students for department %s: %w", departmentID, err)
	}
	return users, nil
}

// ListStudents returns all student profiles across every department.
func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, email, full_name, role, department_id, active, created_at, updated_at
        FROM users WHERE role = $1 ORDER BY full_name ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return users, nil
}

// CountStudents returns the total number of student profiles.
func (r *UserRepository) CountStudents(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users WHERE role = $1", models.RoleStudent); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
