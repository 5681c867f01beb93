package handler

import (
	"context"
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/studylane/examboard-api/internal/dto"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
	"github.com/studylane/examboard-api/pkg/response"
)

type attemptEventService interface {
	OnAttemptSubmitted(ctx context.Context, previous *dto.AttemptState, current dto.AttemptState)
}

// AttemptEventHandler receives attempt change notifications from the
// exam-submission collaborator. The route carries no user identity; a shared
// webhook token keeps it non-public.
type AttemptEventHandler struct {
	service      attemptEventService
	webhookToken string
}

// NewAttemptEventHandler constructs the handler.
func NewAttemptEventHandler(service attemptEventService, webhookToken string) *AttemptEventHandler {
	return &AttemptEventHandler{service: service, webhookToken: webhookToken}
}

// AttemptChanged godoc
// @Summary Attempt change notification hook
// @Tags Events
// @Accept json
// @Param payload body dto.AttemptEventRequest true "Before/after attempt state"
// @Success 204
// @Router /events/attempts [post]
func (h *AttemptEventHandler) AttemptChanged(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	if h.webhookToken != "" {
		provided := c.GetHeader("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.webhookToken)) != 1 {
			response.Error(c, appErrors.ErrUnauthenticated)
			return
		}
	}

	var event dto.AttemptEventRequest
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidArgument, "invalid event payload"))
		return
	}
	if event.Current.ID == "" || event.Current.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidArgument, "current attempt id and student id are required"))
		return
	}

	// Failures inside the hook are swallowed by the service; the
	// originating submission must never fail because of this call.
	h.service.OnAttemptSubmitted(c.Request.Context(), event.Previous, event.Current)
	response.NoContent(c)
}
