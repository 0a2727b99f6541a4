package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type SettingRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Setting, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Setting, error)
	Upsert(ctx context.Context, tx *gorm.DB, key, value string) (*types.Setting, error)
}

type settingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingRepo(db *gorm.DB, baseLog *logger.Logger) SettingRepo {
	return &settingRepo{db: db, log: baseLog.With("repo", "SettingRepo")}
}

func (r *settingRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Setting, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var setting types.Setting
	err := transaction.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Setting, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Setting
	if err := transaction.WithContext(ctx).Order("key asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert is a read-then-write on the unique key; callers that need it atomic
// run it inside their own transaction.
func (r *settingRepo) Upsert(ctx context.Context, tx *gorm.DB, key, value string) (*types.Setting, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	existing, err := r.GetByKey(ctx, transaction, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Value = value
		if err := transaction.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	row := &types.Setting{Key: key, Value: value}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
