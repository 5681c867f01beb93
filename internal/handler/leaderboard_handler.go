package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studylane/examboard-api/internal/dto"
	"github.com/studylane/examboard-api/internal/middleware"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
	"github.com/studylane/examboard-api/pkg/response"
)

type leaderboardService interface {
	GetDepartmentLeaderboard(ctx context.Context, callerID, departmentID string, query dto.LeaderboardQuery) (*dto.DepartmentLeaderboardResponse, error)
	GetGlobalDepartmentLeaderboard(ctx context.Context, callerID string) (*dto.GlobalLeaderboardResponse, error)
}

// LeaderboardHandler wires leaderboard reads to HTTP endpoints.
type LeaderboardHandler struct {
	service leaderboardService
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Department godoc
// @Summary Department leaderboard
// @Tags Leaderboard
// @Produce json
// @Param departmentId path string true "Department ID"
// @Param forceRefresh query boolean false "Bypass the cache"
// @Param limit query integer false "Page size (1-100, default 50)"
// @Param offset query integer false "Page offset (default 0)"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/leaderboard [get]
func (h *LeaderboardHandler) Department(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	departmentID := strings.TrimSpace(c.Param("departmentId"))
	query, err := parseLeaderboardQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	start := time.Now()
	page, err := h.service.GetDepartmentLeaderboard(c.Request.Context(), middleware.CallerID(c), departmentID, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, page.FromCache)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, page, meta)
}

// Global godoc
// @Summary Global department leaderboard
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard/departments [get]
func (h *LeaderboardHandler) Global(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	rankings, err := h.service.GetGlobalDepartmentLeaderboard(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rankings)
}

func parseLeaderboardQuery(c *gin.Context) (dto.LeaderboardQuery, error) {
	query := dto.LeaderboardQuery{Limit: 50, Offset: 0}

	if raw := strings.TrimSpace(c.Query("forceRefresh")); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrInvalidArgument, "forceRefresh must be a boolean")
		}
		query.ForceRefresh = force
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrInvalidArgument, "limit must be an integer")
		}
		query.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrInvalidArgument, "offset must be an integer")
		}
		query.Offset = offset
	}

	return query, nil
}
