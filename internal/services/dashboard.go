package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
	"github.com/hokkyo/cpadash-backend/internal/utils"
)

const msPerHour = 3600000.0

// DefaultStreakDays is the trailing window used when the caller does not ask
// for a specific one.
const DefaultStreakDays = 14

type DailyHours struct {
	DateKey string  `json:"date_key"`
	Hours   float64 `json:"hours"`
}

type DailySubjectHours struct {
	DateKey  string             `json:"date_key"`
	Subjects map[string]float64 `json:"subjects"`
}

type StreakSummary struct {
	Current           int                `json:"current"`
	Longest           int                `json:"longest"`
	ActiveDates       []string           `json:"active_dates"`
	ActiveHoursByDate map[string]float64 `json:"active_hours_by_date"`
}

type SubjectSummary struct {
	Subject     string  `json:"subject"`
	Count       int64   `json:"count"`
	TotalHours  float64 `json:"total_hours"`
	AvgProgress float64 `json:"avg_progress"`
}

type DashboardSummary struct {
	UserID             string              `json:"user_id"`
	DateKey            string              `json:"date_key"`
	TodayHours         float64             `json:"today_hours"`
	WeekHours          float64             `json:"week_hours"`
	WeekDaily          []DailyHours        `json:"week_daily"`
	WeekDailyBySubject []DailySubjectHours `json:"week_daily_by_subject"`
	// SubjectOrder is the display order of the week grid's subject universe;
	// JSON objects cannot carry order themselves.
	SubjectOrder []string         `json:"subject_order"`
	Streak       StreakSummary    `json:"streak"`
	Subjects     []SubjectSummary `json:"subjects"`
}

type DashboardService interface {
	Summary(ctx context.Context, userID, dateKey string, streakDays int) (*DashboardSummary, error)
	// SubjectsSummary is the standalone per-subject roll-up behind
	// GET /api/summary.
	SubjectsSummary(ctx context.Context, userID string) ([]SubjectSummary, error)
}

type dashboardService struct {
	db              *gorm.DB
	log             *logger.Logger
	studyTimeRepo   repos.StudyTimeRepo
	progressRepo    repos.StudyProgressRepo
	settingRepo     repos.SettingRepo
	displayTZOffset int
}

func NewDashboardService(db *gorm.DB, log *logger.Logger, studyTimeRepo repos.StudyTimeRepo, progressRepo repos.StudyProgressRepo, settingRepo repos.SettingRepo, displayTZOffset int) DashboardService {
	return &dashboardService{
		db:              db,
		log:             log.With("service", "DashboardService"),
		studyTimeRepo:   studyTimeRepo,
		progressRepo:    progressRepo,
		settingRepo:     settingRepo,
		displayTZOffset: displayTZOffset,
	}
}

func (s *dashboardService) Summary(ctx context.Context, userID, dateKey string, streakDays int) (*DashboardSummary, error) {
	if userID == "" {
		userID = "default"
	}
	if dateKey == "" {
		// The ledger's date_key is the client's local calendar day; when the
		// caller omits it we anchor "today" in the configured fixed offset
		// rather than the server zone.
		dateKey = utils.TodayKey(s.displayTZOffset)
	} else if _, err := utils.ParseDateKey(dateKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if streakDays < 1 {
		streakDays = DefaultStreakDays
	}

	var out *DashboardSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		summary, err := s.buildSummary(ctx, tx, userID, dateKey, streakDays)
		if err != nil {
			return err
		}
		out = summary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) SubjectsSummary(ctx context.Context, userID string) ([]SubjectSummary, error) {
	if userID == "" {
		userID = "default"
	}
	var out []SubjectSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subjects, err := s.buildSubjects(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = subjects
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) buildSummary(ctx context.Context, tx *gorm.DB, userID, dateKey string, streakDays int) (*DashboardSummary, error) {
	weekStart, weekEnd, err := utils.WeekRangeKeys(dateKey)
	if err != nil {
		return nil, err
	}
	weekDays, err := utils.WeekDayKeys(dateKey)
	if err != nil {
		return nil, err
	}

	todayMS, err := s.studyTimeRepo.SumForDate(ctx, tx, userID, dateKey)
	if err != nil {
		return nil, err
	}
	weekMS, err := s.studyTimeRepo.SumForRange(ctx, tx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	dailyRows, err := s.studyTimeRepo.DailyTotals(ctx, tx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	dailyMS := make(map[string]int64, len(dailyRows))
	for _, row := range dailyRows {
		dailyMS[row.DateKey] = row.TotalMS
	}

	weekDaily := make([]DailyHours, 0, 7)
	for _, day := range weekDays {
		weekDaily = append(weekDaily, DailyHours{DateKey: day, Hours: float64(dailyMS[day]) / msPerHour})
	}

	subjectRows, err := s.studyTimeRepo.DailySubjectTotals(ctx, tx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	subjectOrder, err := s.weekSubjectUniverse(ctx, tx, subjectRows)
	if err != nil {
		return nil, err
	}

	bySubjectMS := make(map[string]map[string]int64, len(subjectRows))
	for _, row := range subjectRows {
		if bySubjectMS[row.DateKey] == nil {
			bySubjectMS[row.DateKey] = map[string]int64{}
		}
		bySubjectMS[row.DateKey][row.Subject] = row.TotalMS
	}
	weekDailyBySubject := make([]DailySubjectHours, 0, 7)
	for _, day := range weekDays {
		perSubject := make(map[string]float64, len(subjectOrder))
		for _, subject := range subjectOrder {
			perSubject[subject] = float64(bySubjectMS[day][subject]) / msPerHour
		}
		weekDailyBySubject = append(weekDailyBySubject, DailySubjectHours{DateKey: day, Subjects: perSubject})
	}

	streak, err := s.buildStreak(ctx, tx, userID, dateKey, streakDays)
	if err != nil {
		return nil, err
	}

	subjects, err := s.buildSubjects(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		UserID:             userID,
		DateKey:            dateKey,
		TodayHours:         float64(todayMS) / msPerHour,
		WeekHours:          float64(weekMS) / msPerHour,
		WeekDaily:          weekDaily,
		WeekDailyBySubject: weekDailyBySubject,
		SubjectOrder:       subjectOrder,
		Streak:             streak,
		Subjects:           subjects,
	}, nil
}

// weekSubjectUniverse resolves the subject universe and display order of the
// week grid: the subjects setting when present (visible entries in listed
// order), otherwise every subject observed in-week, sorted.
func (s *dashboardService) weekSubjectUniverse(ctx context.Context, tx *gorm.DB, subjectRows []repos.SubjectDayTotalRow) ([]string, error) {
	setting, err := s.settingRepo.GetByKey(ctx, tx, types.SettingKeySubjects)
	if err != nil {
		return nil, err
	}
	if setting != nil {
		prefs, err := types.ParseSubjectPrefs(setting.Value)
		if err != nil {
			s.log.Warn("Malformed subjects setting, falling back to observed subjects", "error", err)
		} else {
			order := make([]string, 0, len(prefs))
			for _, p := range prefs {
				if p.Visible {
					order = append(order, p.Name)
				}
			}
			return order, nil
		}
	}

	seen := map[string]struct{}{}
	order := make([]string, 0)
	for _, row := range subjectRows {
		if _, ok := seen[row.Subject]; ok {
			continue
		}
		seen[row.Subject] = struct{}{}
		order = append(order, row.Subject)
	}
	sort.Strings(order)
	return order, nil
}

// buildStreak scans the trailing streakDays window ending at dateKey. A day
// is active iff its summed hours > 0. Current walks backward from dateKey
// until the first inactive day; longest is the best run anywhere in the
// window.
func (s *dashboardService) buildStreak(ctx context.Context, tx *gorm.DB, userID, dateKey string, streakDays int) (StreakSummary, error) {
	windowKeys, err := utils.WindowKeys(dateKey, streakDays)
	if err != nil {
		return StreakSummary{}, err
	}
	endExclusive, err := utils.AddDaysToKey(dateKey, 1)
	if err != nil {
		return StreakSummary{}, err
	}
	rows, err := s.studyTimeRepo.DailyTotals(ctx, tx, userID, windowKeys[0], endExclusive)
	if err != nil {
		return StreakSummary{}, err
	}
	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.DateKey] = row.TotalMS
	}

	active := make([]bool, len(windowKeys))
	activeDates := make([]string, 0, len(windowKeys))
	activeHours := make(map[string]float64, len(windowKeys))
	for i, day := range windowKeys {
		ms := totals[day]
		if ms > 0 {
			active[i] = true
			activeDates = append(activeDates, day)
			activeHours[day] = float64(ms) / msPerHour
		}
	}

	current := 0
	for i := len(active) - 1; i >= 0; i-- {
		if !active[i] {
			break
		}
		current++
	}

	longest, run := 0, 0
	for _, isActive := range active {
		if isActive {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return StreakSummary{
		Current:           current,
		Longest:           longest,
		ActiveDates:       activeDates,
		ActiveHoursByDate: activeHours,
	}, nil
}

// buildSubjects merges the two independent representations of "how much was
// done per subject": total hours come exclusively from the ledger, while
// count and avg progress come from percent-bearing progress rows. Keeping the
// sources separate is what prevents the historical double counting between a
// percent table and a time ledger keyed by different day semantics.
func (s *dashboardService) buildSubjects(ctx context.Context, tx *gorm.DB, userID string) ([]SubjectSummary, error) {
	ledgerRows, err := s.studyTimeRepo.SubjectTotals(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	progressRows, err := s.progressRepo.AggregatesBySubject(ctx, tx)
	if err != nil {
		return nil, err
	}

	merged := map[string]*SubjectSummary{}
	for _, row := range ledgerRows {
		merged[row.Subject] = &SubjectSummary{
			Subject:    row.Subject,
			TotalHours: float64(row.TotalMS) / msPerHour,
		}
	}
	for _, row := range progressRows {
		entry := merged[row.Subject]
		if entry == nil {
			entry = &SubjectSummary{Subject: row.Subject}
			merged[row.Subject] = entry
		}
		entry.Count = row.Count
		entry.AvgProgress = row.AvgProgress
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]SubjectSummary, 0, len(names))
	for _, name := range names {
		out = append(out, *merged[name])
	}
	return out, nil
}
