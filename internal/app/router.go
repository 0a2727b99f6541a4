package app

import (
	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		RequestMiddleware: m.Request,
		StudyTimeHandler:  h.StudyTime,
		DashboardHandler:  h.Dashboard,
		ProgressHandler:   h.Progress,
		TodoHandler:       h.Todo,
		ProjectHandler:    h.Project,
		SettingsHandler:   h.Settings,
		ReviewSetHandler:  h.ReviewSet,
	})
}
