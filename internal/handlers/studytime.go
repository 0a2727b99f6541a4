package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
)

type StudyTimeHandler struct {
	log              *logger.Logger
	studyTimeService services.StudyTimeService
}

func NewStudyTimeHandler(log *logger.Logger, studyTimeService services.StudyTimeService) *StudyTimeHandler {
	return &StudyTimeHandler{
		log:              log.With("handler", "StudyTimeHandler"),
		studyTimeService: studyTimeService,
	}
}

// POST /api/study-time/sync
func (h *StudyTimeHandler) Sync(c *gin.Context) {
	var req struct {
		UserID          string `json:"user_id"`
		DateKey         string `json:"date_key"`
		Subject         string `json:"subject"`
		ClientSessionID string `json:"client_session_id"`
		TotalMS         int64  `json:"total_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	result, err := h.studyTimeService.Sync(c.Request.Context(), req.UserID, req.DateKey, req.Subject, req.ClientSessionID, req.TotalMS)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/study-time/summary
func (h *StudyTimeHandler) Summary(c *gin.Context) {
	summary, err := h.studyTimeService.SummaryMS(c.Request.Context(), c.Query("user_id"), c.Query("date_key"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}
