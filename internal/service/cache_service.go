package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
)

// LeaderboardCacheStore abstracts physical persistence of cache rows.
type LeaderboardCacheStore interface {
	Get(ctx context.Context, departmentID string) (*models.LeaderboardCacheEntry, error)
	Set(ctx context.Context, entry *models.LeaderboardCacheEntry) error
	Delete(ctx context.Context, departmentID string) error
	List(ctx context.Context) ([]models.LeaderboardCacheEntry, error)
}

// LeaderboardCacheService decides when a cache row is trustworthy. Storage
// failures degrade to cache misses: the cache is an optimisation, never a
// correctness requirement.
type LeaderboardCacheService struct {
	store   LeaderboardCacheStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewLeaderboardCacheService constructs the cache service.
func NewLeaderboardCacheService(store LeaderboardCacheStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *LeaderboardCacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardCacheService{store: store, metrics: metrics, ttl: ttl, logger: logger, now: time.Now}
}

// Read returns the department's cache row when present and still fresh. A row
// whose expiry instant has been reached counts as a miss even though the
// physical record may linger until the sweep rewrites it.
func (s *LeaderboardCacheService) Read(ctx context.Context, departmentID string) (*models.LeaderboardCacheEntry, bool) {
	start := s.now()
	entry, err := s.store.Get(ctx, departmentID)
	duration := time.Since(start)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("department_id", departmentID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, duration)
		}
		return nil, false
	}
	if entry.Expired(s.now()) {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, duration)
		}
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(true, duration)
	}
	return entry, true
}

// Write replaces the department's cache row with a fresh one. The entry is
// returned even when the write fails, so callers can serve the computed
// result regardless.
func (s *LeaderboardCacheService) Write(ctx context.Context, departmentID string, entries []models.StudentAggregate, totalStudents int) *models.LeaderboardCacheEntry {
	now := s.now().UTC()
	entry := &models.LeaderboardCacheEntry{
		DepartmentID:  departmentID,
		Entries:       entries,
		TotalStudents: totalStudents,
		LastUpdated:   now,
		ExpiresAt:     now.Add(s.ttl),
	}

	start := s.now()
	err := s.store.Set(ctx, entry)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("department_id", departmentID), zap.Error(err))
	}
	return entry
}

// Invalidate deletes the department's cache row. Failures are logged and
// swallowed.
func (s *LeaderboardCacheService) Invalidate(ctx context.Context, departmentID string) {
	if err := s.store.Delete(ctx, departmentID); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("department_id", departmentID), zap.Error(err))
	}
}

// ListExpired returns the rows whose expiry instant has been reached.
func (s *LeaderboardCacheService) ListExpired(ctx context.Context) ([]models.LeaderboardCacheEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var expired []models.LeaderboardCacheEntry
	for _, entry := range entries {
		if entry.Expired(now) {
			expired = append(expired, entry)
		}
	}
	return expired, nil
}

// Status summarises all cache rows for the admin health report.
func (s *LeaderboardCacheService) Status(ctx context.Context) (models.CacheHealth, []models.CacheRowDetail, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return models.CacheHealth{}, nil, err
	}

	now := s.now()
	health := models.CacheHealth{Total: len(entries)}
	details := make([]models.CacheRowDetail, 0, len(entries))
	for _, entry := range entries {
		expired := entry.Expired(now)
		if expired {
			health.Expired++
		} else {
			health.Valid++
			health.TotalCachedStudents += entry.TotalStudents
		}
		details = append(details, models.CacheRowDetail{
			DepartmentID:  entry.DepartmentID,
			TotalStudents: entry.TotalStudents,
			LastUpdated:   entry.LastUpdated,
			ExpiresAt:     entry.ExpiresAt,
			Expired:       expired,
		})
	}
	return health, details, nil
}
