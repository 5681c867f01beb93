package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studylane/examboard-api/internal/dto"
	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// RosterRepository reads student roster membership.
type RosterRepository interface {
	ListStudentsByDepartment(ctx context.Context, departmentID string) ([]models.User, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	CountStudents(ctx context.Context) (int, error)
}

// AttemptReader reads graded exam attempts.
type AttemptReader interface {
	ListSubmittedByStudents(ctx context.Context, studentIDs []string) ([]models.ExamAttempt, error)
	CountSubmitted(ctx context.Context) (int, error)
}

// DepartmentReader reads the department directory.
type DepartmentReader interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// LeaderboardService orchestrates ranking computation, caching, pagination
// and the background refresh paths.
type LeaderboardService struct {
	guard       *AccessGuard
	roster      RosterRepository
	attempts    AttemptReader
	departments DepartmentReader
	profiles    ProfileReader
	cache       *LeaderboardCacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// LeaderboardServiceParams groups constructor dependencies.
type LeaderboardServiceParams struct {
	Guard       *AccessGuard
	Roster      RosterRepository
	Attempts    AttemptReader
	Departments DepartmentReader
	Profiles    ProfileReader
	Cache       *LeaderboardCacheService
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(params LeaderboardServiceParams) *LeaderboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		guard:       params.Guard,
		roster:      params.Roster,
		attempts:    params.Attempts,
		departments: params.Departments,
		profiles:    params.Profiles,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// GetDepartmentLeaderboard returns a paginated slice of the department's
// ranking. Pagination applies only to the response: recomputation always
// covers the full roster and the cache always stores the unpaginated list.
func (s *LeaderboardService) GetDepartmentLeaderboard(ctx context.Context, callerID, departmentID string, query dto.LeaderboardQuery) (*dto.DepartmentLeaderboardResponse, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "departmentId is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "limit must be within [1,100] and offset non-negative")
	}

	if _, err := s.guard.Authorize(ctx, callerID, departmentID); err != nil {
		return nil, err
	}

	if !query.ForceRefresh {
		if entry, hit := s.cache.Read(ctx, departmentID); hit {
			return paginateEntry(entry, query, true), nil
		}
	}

	entry, err := s.recomputeDepartment(ctx, departmentID)
	if err != nil {
		return nil, s.internal(err, "failed to compute department leaderboard")
	}
	return paginateEntry(entry, query, false), nil
}

// GetGlobalDepartmentLeaderboard ranks all departments. Any authenticated
// profile may call it; results are always computed fresh.
func (s *LeaderboardService) GetGlobalDepartmentLeaderboard(ctx context.Context, callerID string) (*dto.GlobalLeaderboardResponse, error) {
	if _, err := s.guard.Identify(ctx, callerID); err != nil {
		return nil, err
	}

	start := s.now()
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list departments")
	}
	roster, err := s.roster.ListStudents(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to fetch roster")
	}
	attempts, err := s.attempts.ListSubmittedByStudents(ctx, studentIDs(roster))
	if err != nil {
		return nil, s.internal(err, "failed to fetch attempts")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("global_roster_attempts", time.Since(start))
	}

	rankings := ComputeDepartmentAggregates(departments, roster, attempts)
	if s.metrics != nil {
		s.metrics.ObserveRecompute("global", time.Since(start))
	}

	return &dto.GlobalLeaderboardResponse{
		Rankings:         rankings,
		TotalDepartments: len(rankings),
		LastUpdated:      s.now().UTC(),
	}, nil
}

// OnAttemptSubmitted invalidates the submitting student's department cache.
// It fires only on the not-submitted to submitted transition; a re-save of an
// already submitted attempt changes nothing. Failures are logged and the hook
// exits without effect so the originating submission never fails.
func (s *LeaderboardService) OnAttemptSubmitted(ctx context.Context, previous *dto.AttemptState, current dto.AttemptState) {
	if !current.Submitted {
		return
	}
	if previous != nil && previous.Submitted {
		return
	}

	student, err := s.profiles.FindByID(ctx, current.StudentID)
	if err != nil {
		s.logger.Warn("submission hook: failed to resolve student", zap.String("student_id", current.StudentID), zap.Error(err))
		return
	}
	if student == nil || student.DepartmentID == nil {
		s.logger.Warn("submission hook: student has no department", zap.String("student_id", current.StudentID))
		return
	}

	s.cache.Invalidate(ctx, *student.DepartmentID)
	s.logger.Info("leaderboard cache invalidated on submission",
		zap.String("department_id", *student.DepartmentID),
		zap.String("attempt_id", current.ID))
}

// RefreshStaleCaches recomputes every expired cache row. Departments are
// refreshed concurrently with independent error capture; one failure never
// aborts the rest.
func (s *LeaderboardService) RefreshStaleCaches(ctx context.Context) []dto.DepartmentRefreshResult {
	expired, err := s.cache.ListExpired(ctx)
	if err != nil {
		s.logger.Warn("sweep: failed to list cache rows", zap.Error(err))
		return nil
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make([]string, len(expired))
	for i, entry := range expired {
		ids[i] = entry.DepartmentID
	}
	results := s.refreshDepartments(ctx, ids)

	for _, result := range results {
		if !result.Success {
			s.logger.Warn("sweep: department refresh failed",
				zap.String("department_id", result.DepartmentID),
				zap.String("error", result.Error))
		}
	}
	s.logger.Info("stale cache sweep finished", zap.Int("refreshed", len(results)))
	return results
}

// StartSweep boots a goroutine that refreshes stale caches periodically.
func (s *LeaderboardService) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RefreshStaleCaches(ctx)
			}
		}
	}()
}

// AdminRefreshCache force-recomputes one department's cache, or every
// department's when departmentID is empty.
func (s *LeaderboardService) AdminRefreshCache(ctx context.Context, callerID, departmentID string) (*dto.AdminRefreshResponse, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if departmentID != "" {
		department, err := s.departments.FindByID(ctx, departmentID)
		if err != nil {
			return nil, s.internal(err, "failed to load department")
		}
		if department == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		if _, err := s.recomputeDepartment(ctx, departmentID); err != nil {
			return nil, s.internal(err, "failed to refresh department cache")
		}
		return &dto.AdminRefreshResponse{
			Success: true,
			Message: fmt.Sprintf("cache refreshed for department %s", departmentID),
		}, nil
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list departments")
	}
	ids := make([]string, len(departments))
	for i, dept := range departments {
		ids[i] = dept.ID
	}

	results := s.refreshDepartments(ctx, ids)
	success := true
	for _, result := range results {
		if !result.Success {
			success = false
			break
		}
	}

	message := fmt.Sprintf("refreshed %d department caches", len(results))
	if !success {
		message = "one or more department refreshes failed"
	}
	return &dto.AdminRefreshResponse{
		Success:              success,
		Message:              message,
		PerDepartmentResults: results,
	}, nil
}

// AdminResetCache force-invalidates one department's cache row.
func (s *LeaderboardService) AdminResetCache(ctx context.Context, callerID, departmentID string) (*dto.AdminResetResponse, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "departmentId is required")
	}

	department, err := s.departments.FindByID(ctx, departmentID)
	if err != nil {
		return nil, s.internal(err, "failed to load department")
	}
	if department == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}

	s.cache.Invalidate(ctx, departmentID)
	return &dto.AdminResetResponse{
		Success: true,
		Message: fmt.Sprintf("cache reset for department %s", departmentID),
	}, nil
}

// AdminCacheStatus reports aggregate cache health and store totals.
func (s *LeaderboardService) AdminCacheStatus(ctx context.Context, callerID string) (*dto.CacheStatusResponse, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to list departments")
	}
	totalStudents, err := s.roster.CountStudents(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count students")
	}
	totalAttempts, err := s.attempts.CountSubmitted(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count attempts")
	}
	health, details, err := s.cache.Status(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to inspect cache rows")
	}
	sort.Slice(details, func(i, j int) bool { return details[i].DepartmentID < details[j].DepartmentID })

	return &dto.CacheStatusResponse{
		TotalDepartments:  len(departments),
		TotalStudents:     totalStudents,
		TotalExamAttempts: totalAttempts,
		Cache:             health,
		CacheDetails:      details,
	}, nil
}

// recomputeDepartment computes the full ranking for one department and
// replaces its cache row. The computed entry is returned even if the cache
// write failed.
func (s *LeaderboardService) recomputeDepartment(ctx context.Context, departmentID string) (*models.LeaderboardCacheEntry, error) {
	start := s.now()
	roster, err := s.roster.ListStudentsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListSubmittedByStudents(ctx, studentIDs(roster))
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("department_roster_attempts", time.Since(start))
	}

	aggregates := ComputeStudentAggregates(roster, attempts)
	if s.metrics != nil {
		s.metrics.ObserveRecompute("department", time.Since(start))
	}

	return s.cache.Write(ctx, departmentID, aggregates, len(aggregates)), nil
}

// refreshDepartments recomputes the given departments concurrently and
// captures each outcome independently.
func (s *LeaderboardService) refreshDepartments(ctx context.Context, departmentIDs []string) []dto.DepartmentRefreshResult {
	results := make([]dto.DepartmentRefreshResult, len(departmentIDs))
	var wg sync.WaitGroup
	for i, departmentID := range departmentIDs {
		wg.Add(1)
		go func(i int, departmentID string) {
			defer wg.Done()
			result := dto.DepartmentRefreshResult{DepartmentID: departmentID, Success: true}
			if _, err := s.recomputeDepartment(ctx, departmentID); err != nil {
				result.Success = false
				result.Error = err.Error()
			}
			results[i] = result
		}(i, departmentID)
	}
	wg.Wait()
	return results
}

// internal wraps unclassified failures, leaving typed domain errors intact.
func (s *LeaderboardService) internal(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func studentIDs(roster []models.User) []string {
	ids := make([]string, 0, len(roster))
	for _, member := range roster {
		if member.Role != models.RoleStudent {
			continue
		}
		ids = append(ids, member.ID)
	}
	return ids
}

func paginateEntry(entry *models.LeaderboardCacheEntry, query dto.LeaderboardQuery, fromCache bool) *dto.DepartmentLeaderboardResponse {
	limit := query.Limit
	offset := query.Offset

	slice := []models.StudentAggregate{}
	if offset < len(entry.Entries) {
		end := offset + limit
		if end > len(entry.Entries) {
			end = len(entry.Entries)
		}
		slice = entry.Entries[offset:end]
	}

	hasMore := offset+limit < entry.TotalStudents
	var nextCursor *int
	if hasMore {
		cursor := offset + limit
		nextCursor = &cursor
	}

	return &dto.DepartmentLeaderboardResponse{
		DepartmentID:  entry.DepartmentID,
		Entries:       slice,
		TotalStudents: entry.TotalStudents,
		LastUpdated:   entry.LastUpdated,
		HasMore:       hasMore,
		NextCursor:    nextCursor,
		FromCache:     fromCache,
	}
}
