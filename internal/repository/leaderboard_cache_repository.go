package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
)

const leaderboardKeyPrefix = "leaderboard:dept:"

// LeaderboardCacheRepository persists per-department ranking rows in Redis.
// Rows carry no physical TTL: logical expiry lives in the payload so the
// sweep can list rows that have gone stale.
type LeaderboardCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLeaderboardCacheRepository constructs a cache repository.
func NewLeaderboardCacheRepository(client *redis.Client, logger *zap.Logger) *LeaderboardCacheRepository {
	return &LeaderboardCacheRepository{client: client, logger: logger}
}

func leaderboardKey(departmentID string) string {
	return leaderboardKeyPrefix + departmentID
}

// Get retrieves the cache row for a department.
func (r *LeaderboardCacheRepository) Get(ctx context.Context, departmentID string) (*models.LeaderboardCacheEntry, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, leaderboardKey(departmentID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", departmentID, err)
	}

	var entry models.LeaderboardCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cache row for %s: %w", departmentID, err)
	}
	return &entry, nil
}

// Set replaces the department's cache row wholesale.
func (r *LeaderboardCacheRepository) Set(ctx context.Context, entry *models.LeaderboardCacheEntry) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache row for %s: %w", entry.DepartmentID, err)
	}

	if err := r.client.Set(ctx, leaderboardKey(entry.DepartmentID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", entry.DepartmentID, err)
	}
	return nil
}

// Delete removes the department's cache row.
func (r *LeaderboardCacheRepository) Delete(ctx context.Context, departmentID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, leaderboardKey(departmentID)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", departmentID, err)
	}
	return nil
}

// List returns every cache row. Rows that fail to decode are skipped with a
// warning rather than failing the whole listing.
func (r *LeaderboardCacheRepository) List(ctx context.Context) ([]models.LeaderboardCacheEntry, error) {
	if r.client == nil {
		return nil, nil
	}

	var entries []models.LeaderboardCacheEntry
	iter := r.client.Scan(ctx, 0, leaderboardKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("redis get %s: %w", key, err)
		}
		var entry models.LeaderboardCacheEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping undecodable cache row", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan leaderboard rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying Redis connection if present.
func (r *LeaderboardCacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
