package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
)

type DashboardHandler struct {
	log              *logger.Logger
	dashboardService services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:              log.With("handler", "DashboardHandler"),
		dashboardService: dashboardService,
	}
}

// GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	streakDays := parseIntQuery(c, "streak_days", services.DefaultStreakDays)
	summary, err := h.dashboardService.Summary(c.Request.Context(), c.Query("user_id"), c.Query("date_key"), streakDays)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/summary
func (h *DashboardHandler) SubjectsSummary(c *gin.Context) {
	subjects, err := h.dashboardService.SubjectsSummary(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subjects)
}
