package app

import (
	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
)

type Repos struct {
	StudyTime repos.StudyTimeRepo
	Progress  repos.StudyProgressRepo
	Todo      repos.TodoRepo
	Project   repos.ProjectRepo
	Setting   repos.SettingRepo
	ReviewSet repos.ReviewSetRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		StudyTime: repos.NewStudyTimeRepo(db, log),
		Progress:  repos.NewStudyProgressRepo(db, log),
		Todo:      repos.NewTodoRepo(db, log),
		Project:   repos.NewProjectRepo(db, log),
		Setting:   repos.NewSettingRepo(db, log),
		ReviewSet: repos.NewReviewSetRepo(db, log),
	}
}
