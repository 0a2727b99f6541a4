package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type TodoRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Todo, error)
	GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Todo, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Todo) error
	CreateBatch(ctx context.Context, tx *gorm.DB, rows []*types.Todo) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	RenameSubject(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error)
	DetachProject(ctx context.Context, tx *gorm.DB, projectID uint) error
	CompleteByProject(ctx context.Context, tx *gorm.DB, projectID uint) (int64, error)
}

type todoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo {
	return &todoRepo{db: db, log: baseLog.With("repo", "TodoRepo")}
}

func (r *todoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Todo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Todo
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetAll lists incomplete todos first, newest first within each group.
func (r *todoRepo) GetAll(ctx context.Context, tx *gorm.DB, skip, limit int) ([]*types.Todo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Todo
	if err := transaction.WithContext(ctx).
		Order("completed asc").
		Order("created_at desc").
		Offset(skip).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *todoRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Todo) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *todoRepo) CreateBatch(ctx context.Context, tx *gorm.DB, rows []*types.Todo) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}

func (r *todoRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Todo{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *todoRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Todo{}).Error
}

func (r *todoRepo) RenameSubject(ctx context.Context, tx *gorm.DB, oldName, newName string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Todo{}).
		Where("subject = ?", oldName).
		Update("subject", newName)
	return result.RowsAffected, result.Error
}

func (r *todoRepo) DetachProject(ctx context.Context, tx *gorm.DB, projectID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Todo{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error
}

func (r *todoRepo) CompleteByProject(ctx context.Context, tx *gorm.DB, projectID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Todo{}).
		Where("project_id = ? AND completed = ?", projectID, false).
		Update("completed", true)
	return result.RowsAffected, result.Error
}
