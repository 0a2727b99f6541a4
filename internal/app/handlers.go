package app

import (
	"github.com/hokkyo/cpadash-backend/internal/handlers"
	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
)

type Handlers struct {
	StudyTime *handlers.StudyTimeHandler
	Dashboard *handlers.DashboardHandler
	Progress  *handlers.ProgressHandler
	Todo      *handlers.TodoHandler
	Project   *handlers.ProjectHandler
	Settings  *handlers.SettingsHandler
	ReviewSet *handlers.ReviewSetHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		StudyTime: handlers.NewStudyTimeHandler(log, s.StudyTime),
		Dashboard: handlers.NewDashboardHandler(log, s.Dashboard),
		Progress:  handlers.NewProgressHandler(log, s.Progress),
		Todo:      handlers.NewTodoHandler(log, s.Todo),
		Project:   handlers.NewProjectHandler(log, s.Project),
		Settings:  handlers.NewSettingsHandler(log, s.Settings),
		ReviewSet: handlers.NewReviewSetHandler(log, s.ReviewSet),
	}
}
