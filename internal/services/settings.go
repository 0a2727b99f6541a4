package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (*types.Setting, error)
	GetAll(ctx context.Context) ([]*types.Setting, error)
	Upsert(ctx context.Context, key, value string) (*types.Setting, error)
	// RenameSubject propagates a subject rename across todos, progress records
	// and the review_timing setting payload. Returns the number of rows
	// touched in the first two.
	RenameSubject(ctx context.Context, oldName, newName string) (int64, error)
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	settingRepo  repos.SettingRepo
	todoRepo     repos.TodoRepo
	progressRepo repos.StudyProgressRepo
}

func NewSettingsService(db *gorm.DB, log *logger.Logger, settingRepo repos.SettingRepo, todoRepo repos.TodoRepo, progressRepo repos.StudyProgressRepo) SettingsService {
	return &settingsService{
		db:           db,
		log:          log.With("service", "SettingsService"),
		settingRepo:  settingRepo,
		todoRepo:     todoRepo,
		progressRepo: progressRepo,
	}
}

func (s *settingsService) Get(ctx context.Context, key string) (*types.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key is required", ErrValidation)
	}
	setting, err := s.settingRepo.GetByKey(ctx, nil, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, fmt.Errorf("%w: setting %q", ErrNotFound, key)
	}
	return setting, nil
}

func (s *settingsService) GetAll(ctx context.Context) ([]*types.Setting, error) {
	return s.settingRepo.GetAll(ctx, nil)
}

func (s *settingsService) Upsert(ctx context.Context, key, value string) (*types.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key is required", ErrValidation)
	}
	var out *types.Setting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		setting, err := s.settingRepo.Upsert(ctx, tx, key, value)
		if err != nil {
			return err
		}
		out = setting
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *settingsService) RenameSubject(ctx context.Context, oldName, newName string) (int64, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return 0, fmt.Errorf("%w: old_name and new_name are required", ErrValidation)
	}
	if oldName == newName {
		return 0, nil
	}

	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todoCount, err := s.todoRepo.RenameSubject(ctx, tx, oldName, newName)
		if err != nil {
			return err
		}
		progressCount, err := s.progressRepo.RenameSubject(ctx, tx, oldName, newName)
		if err != nil {
			return err
		}
		total = todoCount + progressCount

		if err := s.renameInReviewTiming(ctx, tx, oldName, newName); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Renamed subject", "rows", total)
	return total, nil
}

// renameInReviewTiming rewrites subject_name entries inside the review_timing
// settings payload. A malformed payload is logged and left alone; the row
// renames above still count.
func (s *settingsService) renameInReviewTiming(ctx context.Context, tx *gorm.DB, oldName, newName string) error {
	setting, err := s.settingRepo.GetByKey(ctx, tx, types.SettingKeyReviewTiming)
	if err != nil {
		return err
	}
	if setting == nil {
		return nil
	}
	rewritten, changed, err := types.RenameReviewTimingSubject(setting.Value, oldName, newName)
	if err != nil {
		s.log.Warn("Malformed review_timing setting, skipping rename", "error", err)
		return nil
	}
	if !changed {
		return nil
	}
	_, err = s.settingRepo.Upsert(ctx, tx, types.SettingKeyReviewTiming, rewritten)
	return err
}
