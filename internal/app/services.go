package app

import (
	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
)

type Services struct {
	StudyTime services.StudyTimeService
	Dashboard services.DashboardService
	Progress  services.ProgressService
	Todo      services.TodoService
	Project   services.ProjectService
	Settings  services.SettingsService
	ReviewSet services.ReviewSetService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	return Services{
		StudyTime: services.NewStudyTimeService(db, log, r.StudyTime),
		Dashboard: services.NewDashboardService(db, log, r.StudyTime, r.Progress, r.Setting, cfg.DisplayTZOffsetHours),
		Progress:  services.NewProgressService(db, log, r.Progress),
		Todo:      services.NewTodoService(db, log, r.Todo, r.Project),
		Project:   services.NewProjectService(db, log, r.Project, r.Todo),
		Settings:  services.NewSettingsService(db, log, r.Setting, r.Todo, r.Progress),
		ReviewSet: services.NewReviewSetService(db, log, r.ReviewSet, r.Setting, r.Todo, r.Project),
	}
}
