package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
	"github.com/hokkyo/cpadash-backend/internal/utils"
)

// SyncResult is the server-truth answer to one sync call.
type SyncResult struct {
	AppliedDeltaMS     int64 `json:"applied_delta_ms"`
	ServerTodayTotalMS int64 `json:"server_today_total_ms"`
	ServerWeekTotalMS  int64 `json:"server_week_total_ms"`
}

// TimeSummary is the today/week roll-up for one user and date.
type TimeSummary struct {
	DateKey      string `json:"date_key"`
	TodayTotalMS int64  `json:"today_total_ms"`
	WeekTotalMS  int64  `json:"week_total_ms"`
}

type StudyTimeService interface {
	// Sync applies one cumulative total report and returns the accepted delta
	// together with the server's today/week totals, all from one transaction.
	Sync(ctx context.Context, userID, dateKey, subject, clientSessionID string, totalMS int64) (*SyncResult, error)
	// SummaryMS returns (todayMS, weekMS) for the ISO week containing dateKey.
	SummaryMS(ctx context.Context, userID, dateKey string) (*TimeSummary, error)
}

type studyTimeService struct {
	db            *gorm.DB
	log           *logger.Logger
	studyTimeRepo repos.StudyTimeRepo
}

func NewStudyTimeService(db *gorm.DB, log *logger.Logger, studyTimeRepo repos.StudyTimeRepo) StudyTimeService {
	return &studyTimeService{
		db:            db,
		log:           log.With("service", "StudyTimeService"),
		studyTimeRepo: studyTimeRepo,
	}
}

func (s *studyTimeService) Sync(ctx context.Context, userID, dateKey, subject, clientSessionID string, totalMS int64) (*SyncResult, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(clientSessionID) == "" {
		return nil, fmt.Errorf("%w: client_session_id is required", ErrValidation)
	}
	if totalMS < 0 {
		return nil, fmt.Errorf("%w: total_ms must be >= 0", ErrValidation)
	}
	if _, err := utils.ParseDateKey(dateKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if userID == "" {
		userID = "default"
	}

	result, err := s.syncOnce(ctx, userID, dateKey, subject, clientSessionID, totalMS)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Two first-calls raced on creating the same identity. The losing
		// transaction rolled back; re-read and re-apply exactly once.
		s.log.Warn("Ledger identity creation raced, retrying once",
			"user_id", userID, "date_key", dateKey, "subject", subject, "session_id", clientSessionID)
		result, err = s.syncOnce(ctx, userID, dateKey, subject, clientSessionID, totalMS)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// syncOnce runs one atomic read-compute-write pass plus the summary reads.
func (s *studyTimeService) syncOnce(ctx context.Context, userID, dateKey, subject, clientSessionID string, totalMS int64) (*SyncResult, error) {
	var out SyncResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delta, err := s.applyDelta(ctx, tx, userID, dateKey, subject, clientSessionID, totalMS)
		if err != nil {
			return err
		}
		todayMS, weekMS, err := s.summaryMS(ctx, tx, userID, dateKey)
		if err != nil {
			return err
		}
		out = SyncResult{AppliedDeltaMS: delta, ServerTodayTotalMS: todayMS, ServerWeekTotalMS: weekMS}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// applyDelta is the idempotency boundary: the stored total only ever moves
// forward (last_total_ms = max(last_total_ms, totalMS)) and the returned
// delta is the milliseconds newly counted, so replays and out-of-order
// smaller totals are observable no-ops.
func (s *studyTimeService) applyDelta(ctx context.Context, tx *gorm.DB, userID, dateKey, subject, clientSessionID string, totalMS int64) (int64, error) {
	row, err := s.studyTimeRepo.GetByIdentity(ctx, tx, userID, dateKey, subject, clientSessionID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		row = &types.StudyTimeSession{
			UserID:          userID,
			DateKey:         dateKey,
			Subject:         subject,
			ClientSessionID: clientSessionID,
			LastTotalMS:     0,
		}
		if err := s.studyTimeRepo.Create(ctx, tx, row); err != nil {
			return 0, err
		}
	}

	delta := totalMS - row.LastTotalMS
	if delta < 0 {
		delta = 0
	}
	if totalMS > row.LastTotalMS {
		if err := s.studyTimeRepo.UpdateTotal(ctx, tx, row.ID, totalMS); err != nil {
			return 0, err
		}
	}
	return delta, nil
}

func (s *studyTimeService) SummaryMS(ctx context.Context, userID, dateKey string) (*TimeSummary, error) {
	if _, err := utils.ParseDateKey(dateKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if userID == "" {
		userID = "default"
	}

	var out TimeSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todayMS, weekMS, err := s.summaryMS(ctx, tx, userID, dateKey)
		if err != nil {
			return err
		}
		out = TimeSummary{DateKey: dateKey, TodayTotalMS: todayMS, WeekTotalMS: weekMS}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *studyTimeService) summaryMS(ctx context.Context, tx *gorm.DB, userID, dateKey string) (int64, int64, error) {
	todayMS, err := s.studyTimeRepo.SumForDate(ctx, tx, userID, dateKey)
	if err != nil {
		return 0, 0, err
	}
	weekStart, weekEnd, err := utils.WeekRangeKeys(dateKey)
	if err != nil {
		return 0, 0, err
	}
	weekMS, err := s.studyTimeRepo.SumForRange(ctx, tx, userID, weekStart, weekEnd)
	if err != nil {
		return 0, 0, err
	}
	return todayMS, weekMS, nil
}
