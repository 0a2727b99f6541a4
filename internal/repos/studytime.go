package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

// DailyTotalRow is a per-day ledger roll-up.
type DailyTotalRow struct {
	DateKey string `gorm:"column:date_key"`
	TotalMS int64  `gorm:"column:total_ms"`
}

// SubjectDayTotalRow is a per-day, per-subject ledger roll-up.
type SubjectDayTotalRow struct {
	DateKey string `gorm:"column:date_key"`
	Subject string `gorm:"column:subject"`
	TotalMS int64  `gorm:"column:total_ms"`
}

// SubjectTotalRow is an all-time per-subject ledger roll-up.
type SubjectTotalRow struct {
	Subject string `gorm:"column:subject"`
	TotalMS int64  `gorm:"column:total_ms"`
}

type StudyTimeRepo interface {
	GetByIdentity(ctx context.Context, tx *gorm.DB, userID, dateKey, subject, clientSessionID string) (*types.StudyTimeSession, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.StudyTimeSession) error
	UpdateTotal(ctx context.Context, tx *gorm.DB, id uint, totalMS int64) error
	SumForDate(ctx context.Context, tx *gorm.DB, userID, dateKey string) (int64, error)
	SumForRange(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) (int64, error)
	DailyTotals(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) ([]DailyTotalRow, error)
	DailySubjectTotals(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) ([]SubjectDayTotalRow, error)
	SubjectTotals(ctx context.Context, tx *gorm.DB, userID string) ([]SubjectTotalRow, error)
}

type studyTimeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyTimeRepo(db *gorm.DB, baseLog *logger.Logger) StudyTimeRepo {
	return &studyTimeRepo{db: db, log: baseLog.With("repo", "StudyTimeRepo")}
}

func (r *studyTimeRepo) GetByIdentity(ctx context.Context, tx *gorm.DB, userID, dateKey, subject, clientSessionID string) (*types.StudyTimeSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.StudyTimeSession
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date_key = ? AND subject = ? AND client_session_id = ?",
			userID, dateKey, subject, clientSessionID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *studyTimeRepo) Create(ctx context.Context, tx *gorm.DB, row *types.StudyTimeSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *studyTimeRepo) UpdateTotal(ctx context.Context, tx *gorm.DB, id uint, totalMS int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Where("id = ?", id).
		Update("last_total_ms", totalMS).Error
}

func (r *studyTimeRepo) SumForDate(ctx context.Context, tx *gorm.DB, userID, dateKey string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	err := transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Select("COALESCE(SUM(last_total_ms), 0)").
		Where("user_id = ? AND date_key = ?", userID, dateKey).
		Scan(&total).Error
	return total, err
}

// SumForRange sums over the half-open [startKey, endKeyExclusive) string
// range. Date keys are yyyy-MM-dd, so lexicographic comparison is date order.
func (r *studyTimeRepo) SumForRange(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	err := transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Select("COALESCE(SUM(last_total_ms), 0)").
		Where("user_id = ? AND date_key >= ? AND date_key < ?", userID, startKey, endKeyExclusive).
		Scan(&total).Error
	return total, err
}

func (r *studyTimeRepo) DailyTotals(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) ([]DailyTotalRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []DailyTotalRow
	err := transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Select("date_key, SUM(last_total_ms) AS total_ms").
		Where("user_id = ? AND date_key >= ? AND date_key < ?", userID, startKey, endKeyExclusive).
		Group("date_key").
		Order("date_key asc").
		Scan(&rows).Error
	return rows, err
}

func (r *studyTimeRepo) DailySubjectTotals(ctx context.Context, tx *gorm.DB, userID, startKey, endKeyExclusive string) ([]SubjectDayTotalRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []SubjectDayTotalRow
	err := transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Select("date_key, subject, SUM(last_total_ms) AS total_ms").
		Where("user_id = ? AND date_key >= ? AND date_key < ?", userID, startKey, endKeyExclusive).
		Group("date_key").
		Group("subject").
		Order("date_key asc").
		Scan(&rows).Error
	return rows, err
}

func (r *studyTimeRepo) SubjectTotals(ctx context.Context, tx *gorm.DB, userID string) ([]SubjectTotalRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []SubjectTotalRow
	err := transaction.WithContext(ctx).
		Model(&types.StudyTimeSession{}).
		Select("subject, SUM(last_total_ms) AS total_ms").
		Where("user_id = ?", userID).
		Group("subject").
		Order("subject asc").
		Scan(&rows).Error
	return rows, err
}
