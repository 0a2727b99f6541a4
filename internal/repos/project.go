package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type ProjectRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Project, error)
	GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Project, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Project) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Project
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetAll lists projects by due date ascending with undated projects last,
// then newest first.
func (r *projectRepo) GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Project
	if err := transaction.WithContext(ctx).
		Order("due_date IS NULL").
		Order("due_date asc").
		Order("created_at desc").
		Offset(skip).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Project) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *projectRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Project{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *projectRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Project{}).Error
}
