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

type ProgressCreateInput struct {
	Subject                string   `json:"subject"`
	Topic                  string   `json:"topic"`
	ProgressPercent        float64  `json:"progress_percent"`
	StudyHours             float64  `json:"study_hours"`
	Notes                  *string  `json:"notes"`
	ActualTime             *float64 `json:"actual_time"`
	TargetTime             *float64 `json:"target_time"`
	VarianceReason         *string  `json:"variance_reason"`
	TheoryCalculationRatio *float64 `json:"theory_calculation_ratio"`
}

// ProgressUpdateInput applies only the fields present in the request body.
type ProgressUpdateInput struct {
	Subject                *string  `json:"subject"`
	Topic                  *string  `json:"topic"`
	ProgressPercent        *float64 `json:"progress_percent"`
	StudyHours             *float64 `json:"study_hours"`
	Notes                  *string  `json:"notes"`
	ActualTime             *float64 `json:"actual_time"`
	TargetTime             *float64 `json:"target_time"`
	VarianceReason         *string  `json:"variance_reason"`
	TheoryCalculationRatio *float64 `json:"theory_calculation_ratio"`
}

type ProgressService interface {
	Create(ctx context.Context, input *ProgressCreateInput) (*types.StudyProgress, error)
	GetByID(ctx context.Context, id uint) (*types.StudyProgress, error)
	GetAll(ctx context.Context, skip, limit int) ([]*types.StudyProgress, error)
	GetBySubject(ctx context.Context, subject string) ([]*types.StudyProgress, error)
	Update(ctx context.Context, id uint, input *ProgressUpdateInput) (*types.StudyProgress, error)
	Delete(ctx context.Context, id uint) error
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.StudyProgressRepo
}

func NewProgressService(db *gorm.DB, log *logger.Logger, progressRepo repos.StudyProgressRepo) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		progressRepo: progressRepo,
	}
}

func (s *progressService) Create(ctx context.Context, input *ProgressCreateInput) (*types.StudyProgress, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(input.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	if input.ProgressPercent < 0 || input.ProgressPercent > 100 {
		return nil, fmt.Errorf("%w: progress_percent must be between 0 and 100", ErrValidation)
	}
	if input.StudyHours < 0 {
		return nil, fmt.Errorf("%w: study_hours must be >= 0", ErrValidation)
	}

	row := &types.StudyProgress{
		Subject:                input.Subject,
		Topic:                  input.Topic,
		ProgressPercent:        input.ProgressPercent,
		StudyHours:             input.StudyHours,
		Notes:                  input.Notes,
		ActualTime:             input.ActualTime,
		TargetTime:             input.TargetTime,
		VarianceReason:         input.VarianceReason,
		TheoryCalculationRatio: input.TheoryCalculationRatio,
	}
	if err := s.progressRepo.Create(ctx, nil, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *progressService) GetByID(ctx context.Context, id uint) (*types.StudyProgress, error) {
	row, err := s.progressRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: study progress %d", ErrNotFound, id)
	}
	return row, nil
}

func (s *progressService) GetAll(ctx context.Context, skip, limit int) ([]*types.StudyProgress, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.progressRepo.GetAll(ctx, nil, skip, limit)
}

func (s *progressService) GetBySubject(ctx context.Context, subject string) ([]*types.StudyProgress, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	return s.progressRepo.GetBySubject(ctx, nil, subject)
}

func (s *progressService) Update(ctx context.Context, id uint, input *ProgressUpdateInput) (*types.StudyProgress, error) {
	fields := map[string]interface{}{}
	if input.Subject != nil {
		if strings.TrimSpace(*input.Subject) == "" {
			return nil, fmt.Errorf("%w: subject must not be empty", ErrValidation)
		}
		fields["subject"] = *input.Subject
	}
	if input.Topic != nil {
		if strings.TrimSpace(*input.Topic) == "" {
			return nil, fmt.Errorf("%w: topic must not be empty", ErrValidation)
		}
		fields["topic"] = *input.Topic
	}
	if input.ProgressPercent != nil {
		if *input.ProgressPercent < 0 || *input.ProgressPercent > 100 {
			return nil, fmt.Errorf("%w: progress_percent must be between 0 and 100", ErrValidation)
		}
		fields["progress_percent"] = *input.ProgressPercent
	}
	if input.StudyHours != nil {
		if *input.StudyHours < 0 {
			return nil, fmt.Errorf("%w: study_hours must be >= 0", ErrValidation)
		}
		fields["study_hours"] = *input.StudyHours
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.ActualTime != nil {
		fields["actual_time"] = *input.ActualTime
	}
	if input.TargetTime != nil {
		fields["target_time"] = *input.TargetTime
	}
	if input.VarianceReason != nil {
		fields["variance_reason"] = *input.VarianceReason
	}
	if input.TheoryCalculationRatio != nil {
		fields["theory_calculation_ratio"] = *input.TheoryCalculationRatio
	}

	var out *types.StudyProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.progressRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: study progress %d", ErrNotFound, id)
		}
		if err := s.progressRepo.UpdateFields(ctx, tx, id, fields); err != nil {
			return err
		}
		updated, err := s.progressRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *progressService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.progressRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: study progress %d", ErrNotFound, id)
		}
		return s.progressRepo.Delete(ctx, tx, id)
	})
}
