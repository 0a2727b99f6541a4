package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type ReviewSetRepo interface {
	TablesReady(ctx context.Context) bool
	CountLists(ctx context.Context, tx *gorm.DB) (int64, error)
	GetList(ctx context.Context, tx *gorm.DB, id uint) (*types.ReviewSetList, error)
	GetAllLists(ctx context.Context, tx *gorm.DB) ([]*types.ReviewSetList, error)
	CreateList(ctx context.Context, tx *gorm.DB, list *types.ReviewSetList) error
	UpdateListName(ctx context.Context, tx *gorm.DB, id uint, name string) error
	DeleteList(ctx context.Context, tx *gorm.DB, id uint) error
	GetItem(ctx context.Context, tx *gorm.DB, listID, itemID uint) (*types.ReviewSetItem, error)
	CreateItem(ctx context.Context, tx *gorm.DB, item *types.ReviewSetItem) error
	UpdateItemOffset(ctx context.Context, tx *gorm.DB, itemID uint, offsetDays int) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error
}

type reviewSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewSetRepo(db *gorm.DB, baseLog *logger.Logger) ReviewSetRepo {
	return &reviewSetRepo{db: db, log: baseLog.With("repo", "ReviewSetRepo")}
}

// TablesReady probes whether the migration that introduced review sets has
// run against this database. Old deployments without the tables fall back to
// the pre-migration feature entirely.
func (r *reviewSetRepo) TablesReady(ctx context.Context) bool {
	migrator := r.db.WithContext(ctx).Migrator()
	return migrator.HasTable(&types.ReviewSetList{}) && migrator.HasTable(&types.ReviewSetItem{})
}

func (r *reviewSetRepo) CountLists(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).Model(&types.ReviewSetList{}).Count(&count).Error
	return count, err
}

func (r *reviewSetRepo) GetList(ctx context.Context, tx *gorm.DB, id uint) (*types.ReviewSetList, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var list types.ReviewSetList
	err := transaction.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("review_set_items.created_at asc, review_set_items.id asc")
		}).
		Where("id = ?", id).
		First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *reviewSetRepo) GetAllLists(ctx context.Context, tx *gorm.DB) ([]*types.ReviewSetList, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReviewSetList
	if err := transaction.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("review_set_items.created_at asc, review_set_items.id asc")
		}).
		Order("id asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewSetRepo) CreateList(ctx context.Context, tx *gorm.DB, list *types.ReviewSetList) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(list).Error
}

func (r *reviewSetRepo) UpdateListName(ctx context.Context, tx *gorm.DB, id uint, name string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ReviewSetList{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// DeleteList removes the items explicitly before the list so cascade behavior
// does not depend on whether the backing engine enforces FK constraints.
func (r *reviewSetRepo) DeleteList(ctx context.Context, tx *gorm.DB, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("set_list_id = ?", id).
		Delete(&types.ReviewSetItem{}).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ReviewSetList{}).Error
}

func (r *reviewSetRepo) GetItem(ctx context.Context, tx *gorm.DB, listID, itemID uint) (*types.ReviewSetItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var item types.ReviewSetItem
	err := transaction.WithContext(ctx).
		Where("id = ? AND set_list_id = ?", itemID, listID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *reviewSetRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *types.ReviewSetItem) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(item).Error
}

func (r *reviewSetRepo) UpdateItemOffset(ctx context.Context, tx *gorm.DB, itemID uint, offsetDays int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ReviewSetItem{}).
		Where("id = ?", itemID).
		Update("offset_days", offsetDays).Error
}

func (r *reviewSetRepo) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&types.ReviewSetItem{}).Error
}
