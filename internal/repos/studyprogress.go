package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

// SubjectProgressRow carries the percent-based aggregates of one subject.
// Legacy time rows (topic = types.LegacyTimeEntryTopic) are excluded because
// their percent is meaningless.
type SubjectProgressRow struct {
	Subject     string  `gorm:"column:subject"`
	Count       int64   `gorm:"column:count"`
	AvgProgress float64 `gorm:"column:avg_progress"`
}

type StudyProgressRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.StudyProgress, error)
	GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.StudyProgress, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*types.StudyProgress, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.StudyProgress) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	AggregatesBySubject(ctx context.Context, tx *gorm.DB) ([]SubjectProgressRow, error)
	RenameSubject(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error)
}

type studyProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyProgressRepo(db *gorm.DB, baseLog *logger.Logger) StudyProgressRepo {
	return &studyProgressRepo{db: db, log: baseLog.With("repo", "StudyProgressRepo")}
}

func (r *studyProgressRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.StudyProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.StudyProgress
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *studyProgressRepo) GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.StudyProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StudyProgress
	if err := transaction.WithContext(ctx).
		Order("created_at desc").
		Offset(skip).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studyProgressRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*types.StudyProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StudyProgress
	if err := transaction.WithContext(ctx).
		Where("subject = ?", subject).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studyProgressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.StudyProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *studyProgressRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.StudyProgress{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *studyProgressRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.StudyProgress{}).Error
}

func (r *studyProgressRepo) AggregatesBySubject(ctx context.Context, tx *gorm.DB) ([]SubjectProgressRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []SubjectProgressRow
	err := transaction.WithContext(ctx).
		Model(&types.StudyProgress{}).
		Select("subject, COUNT(id) AS count, COALESCE(AVG(progress_percent), 0) AS avg_progress").
		Where("topic <> ?", types.LegacyTimeEntryTopic).
		Group("subject").
		Order("subject asc").
		Scan(&rows).Error
	return rows, err
}

func (r *studyProgressRepo) RenameSubject(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.StudyProgress{}).
		Where("subject = ?", oldName).
		Update("subject", newName)
	return result.RowsAffected, result.Error
}
