package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studylane/examboard-api/internal/dto"
	"github.com/studylane/examboard-api/internal/middleware"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
	"github.com/studylane/examboard-api/pkg/response"
)

type adminCacheService interface {
	AdminRefreshCache(ctx context.Context, callerID, departmentID string) (*dto.AdminRefreshResponse, error)
	AdminResetCache(ctx context.Context, callerID, departmentID string) (*dto.AdminResetResponse, error)
	AdminCacheStatus(ctx context.Context, callerID string) (*dto.CacheStatusResponse, error)
}

// AdminCacheHandler exposes cache administration endpoints.
type AdminCacheHandler struct {
	service adminCacheService
}

// NewAdminCacheHandler constructs the handler.
func NewAdminCacheHandler(service adminCacheService) *AdminCacheHandler {
	return &AdminCacheHandler{service: service}
}

// Refresh godoc
// @Summary Force-refresh leaderboard caches
// @Tags Admin
// @Produce json
// @Param departmentId query string false "Department ID; every department when omitted"
// @Success 200 {object} response.Envelope
// @Router /admin/cache/refresh [post]
func (h *AdminCacheHandler) Refresh(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	departmentID := strings.TrimSpace(c.Query("departmentId"))
	result, err := h.service.AdminRefreshCache(c.Request.Context(), middleware.CallerID(c), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Reset godoc
// @Summary Force-invalidate one department's leaderboard cache
// @Tags Admin
// @Produce json
// @Param departmentId path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /admin/cache/{departmentId} [delete]
func (h *AdminCacheHandler) Reset(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	departmentID := strings.TrimSpace(c.Param("departmentId"))
	result, err := h.service.AdminResetCache(c.Request.Context(), middleware.CallerID(c), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Status godoc
// @Summary Leaderboard cache health report
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/cache/status [get]
func (h *AdminCacheHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	status, err := h.service.AdminCacheStatus(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
