package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
	"github.com/studylane/examboard-api/pkg/jobs"
)

// ProfileReader looks up roster profiles.
type ProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuditAppender persists security audit records.
type AuditAppender interface {
	Append(ctx context.Context, record *models.SecurityAuditRecord) error
}

// AuditJobType tags audit appends on the background queue.
const AuditJobType = "security_audit_append"

// AccessGuard is the sole enforcement point for department data isolation.
// Denials on cross-department access produce an audit record asynchronously;
// audit failures are logged, never propagated.
type AccessGuard struct {
	profiles ProfileReader
	audits   AuditAppender
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewAccessGuard constructs the guard. The queue is optional; without it
// audit records are written synchronously (still best-effort).
func NewAccessGuard(profiles ProfileReader, audits AuditAppender, logger *zap.Logger) *AccessGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGuard{profiles: profiles, audits: audits, logger: logger}
}

// StartAuditWorker boots the background audit writer.
func (g *AccessGuard) StartAuditWorker(ctx context.Context, cfg jobs.QueueConfig) {
	if cfg.Logger == nil {
		cfg.Logger = g.logger
	}
	g.queue = jobs.NewQueue("security_audit", g.handleAuditJob, cfg)
	g.queue.Start(ctx)
}

// StopAuditWorker drains and stops the background audit writer.
func (g *AccessGuard) StopAuditWorker() {
	if g.queue != nil {
		g.queue.Stop()
	}
}

// Authorize verifies the caller and their right to view the requested
// department. Rules, in order: the caller must be authenticated, must have a
// roster profile, and unless their role grants cross-department access must
// belong to the requested department.
func (g *AccessGuard) Authorize(ctx context.Context, callerID, departmentID string) (*models.User, error) {
	caller, err := g.identify(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if caller.Role.IsAdmin() {
		return caller, nil
	}

	if caller.DepartmentID == nil || *caller.DepartmentID != departmentID {
		g.recordDenial(caller, departmentID)
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "access to another department's leaderboard is not allowed")
	}

	return caller, nil
}

// Identify verifies the caller without any department check.
func (g *AccessGuard) Identify(ctx context.Context, callerID string) (*models.User, error) {
	return g.identify(ctx, callerID)
}

// RequireAdmin verifies the caller and demands an administrative role.
func (g *AccessGuard) RequireAdmin(ctx context.Context, callerID string) (*models.User, error) {
	caller, err := g.identify(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsAdmin() {
		g.recordDenial(caller, "")
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "administrative role required")
	}
	return caller, nil
}

func (g *AccessGuard) identify(ctx context.Context, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	caller, err := g.profiles.FindByID(ctx, callerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load caller profile")
	}
	if caller == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "caller profile not found")
	}
	return caller, nil
}

func (g *AccessGuard) recordDenial(caller *models.User, requestedDepartmentID string) {
	record := &models.SecurityAuditRecord{
		ID:               uuid.NewString(),
		UserID:           caller.ID,
		Action:           models.AuditActionLeaderboardDenied,
		Reason:           fmt.Sprintf("role %s denied access", caller.Role),
		UserDepartmentID: caller.DepartmentID,
	}
	if requestedDepartmentID != "" {
		record.RequestedDepartmentID = &requestedDepartmentID
	}

	if g.queue != nil {
		if err := g.queue.Enqueue(jobs.Job{ID: record.ID, Type: AuditJobType, Payload: record}); err != nil {
			g.logger.Warn("failed to enqueue audit record", zap.String("user_id", caller.ID), zap.Error(err))
		}
		return
	}

	// No worker running: write inline, still best-effort.
	if err := g.audits.Append(context.Background(), record); err != nil {
		g.logger.Warn("failed to append audit record", zap.String("user_id", caller.ID), zap.Error(err))
	}
}

func (g *AccessGuard) handleAuditJob(ctx context.Context, job jobs.Job) error {
	record, ok := job.Payload.(*models.SecurityAuditRecord)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	return g.audits.Append(ctx, record)
}
