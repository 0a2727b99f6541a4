package services

import (
	"context"
	"math"
	"testing"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

func newDashboardFixture(t *testing.T) (*gorm.DB, StudyTimeService, DashboardService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	studyTimeRepo := repos.NewStudyTimeRepo(db, log)
	progressRepo := repos.NewStudyProgressRepo(db, log)
	settingRepo := repos.NewSettingRepo(db, log)
	sync := NewStudyTimeService(db, log, studyTimeRepo)
	dash := NewDashboardService(db, log, studyTimeRepo, progressRepo, settingRepo, 9)
	return db, sync, dash
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDashboardWeekGridZeroFilled(t *testing.T) {
	_, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	// 3600000 ms = one hour on the Thursday.
	if _, err := sync.Sync(ctx, "u1", "2025-03-13", "簿記", "sess-1", 3600000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 14)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.WeekDaily) != 7 {
		t.Fatalf("week daily has %d entries, want 7", len(summary.WeekDaily))
	}
	if summary.WeekDaily[0].DateKey != "2025-03-10" || summary.WeekDaily[6].DateKey != "2025-03-16" {
		t.Fatalf("week spans %s..%s, want 2025-03-10..2025-03-16", summary.WeekDaily[0].DateKey, summary.WeekDaily[6].DateKey)
	}
	for _, day := range summary.WeekDaily {
		want := 0.0
		if day.DateKey == "2025-03-13" {
			want = 1.0
		}
		if !almostEqual(day.Hours, want) {
			t.Fatalf("hours on %s = %f, want %f", day.DateKey, day.Hours, want)
		}
	}
	if !almostEqual(summary.TodayHours, 1.0) {
		t.Fatalf("today hours = %f, want 1.0", summary.TodayHours)
	}
	if !almostEqual(summary.WeekHours, 1.0) {
		t.Fatalf("week hours = %f, want 1.0", summary.WeekHours)
	}
}

func TestDashboardWeekHoursConservation(t *testing.T) {
	_, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	syncs := []struct {
		dateKey string
		subject string
		session string
		totalMS int64
	}{
		{"2025-03-10", "簿記", "a", 1800000},
		{"2025-03-10", "財務諸表論", "b", 900000},
		{"2025-03-12", "簿記", "c", 3600000},
		{"2025-03-12", "簿記", "c", 3600000}, // replay
		{"2025-03-15", "監査論", "d", 450000},
	}
	for _, s := range syncs {
		if _, err := sync.Sync(ctx, "u1", s.dateKey, s.subject, s.session, s.totalMS); err != nil {
			t.Fatalf("sync %s/%s: %v", s.dateKey, s.session, err)
		}
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 14)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	var daily float64
	for _, day := range summary.WeekDaily {
		daily += day.Hours
	}
	if !almostEqual(daily, summary.WeekHours) {
		t.Fatalf("sum of daily hours %f != week hours %f", daily, summary.WeekHours)
	}

	var bySubject float64
	for _, day := range summary.WeekDailyBySubject {
		for _, hours := range day.Subjects {
			bySubject += hours
		}
	}
	if !almostEqual(bySubject, summary.WeekHours) {
		t.Fatalf("sum of per-subject hours %f != week hours %f", bySubject, summary.WeekHours)
	}

	want := (1800000.0 + 900000.0 + 3600000.0 + 450000.0) / msPerHour
	if !almostEqual(summary.WeekHours, want) {
		t.Fatalf("week hours = %f, want %f", summary.WeekHours, want)
	}
}

func TestDashboardStreak(t *testing.T) {
	_, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	// Active on d0, d2, d3 of a 4-day window ending 2025-03-13.
	for i, dateKey := range []string{"2025-03-10", "2025-03-12", "2025-03-13"} {
		if _, err := sync.Sync(ctx, "u1", dateKey, "簿記", string(rune('a'+i)), 3600000); err != nil {
			t.Fatalf("sync %s: %v", dateKey, err)
		}
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 4)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Streak.Current != 2 {
		t.Fatalf("current streak = %d, want 2", summary.Streak.Current)
	}
	if summary.Streak.Longest != 2 {
		t.Fatalf("longest streak = %d, want 2", summary.Streak.Longest)
	}
	wantDates := []string{"2025-03-10", "2025-03-12", "2025-03-13"}
	if len(summary.Streak.ActiveDates) != len(wantDates) {
		t.Fatalf("active dates = %v, want %v", summary.Streak.ActiveDates, wantDates)
	}
	for i, date := range wantDates {
		if summary.Streak.ActiveDates[i] != date {
			t.Fatalf("active dates = %v, want %v", summary.Streak.ActiveDates, wantDates)
		}
	}
	if !almostEqual(summary.Streak.ActiveHoursByDate["2025-03-13"], 1.0) {
		t.Fatalf("active hours on 2025-03-13 = %f, want 1.0", summary.Streak.ActiveHoursByDate["2025-03-13"])
	}
}

func TestDashboardStreakBrokenToday(t *testing.T) {
	_, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	if _, err := sync.Sync(ctx, "u1", "2025-03-12", "簿記", "a", 3600000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 4)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Streak.Current != 0 {
		t.Fatalf("current streak = %d, want 0", summary.Streak.Current)
	}
	if summary.Streak.Longest != 1 {
		t.Fatalf("longest streak = %d, want 1", summary.Streak.Longest)
	}
}

func TestDashboardSubjectOrderFromSetting(t *testing.T) {
	db, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	setting := &types.Setting{
		Key:   types.SettingKeySubjects,
		Value: `[{"name":"財務諸表論","visible":true},{"name":"簿記","visible":true},{"name":"監査論","visible":false}]`,
	}
	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("seed subjects setting: %v", err)
	}
	if _, err := sync.Sync(ctx, "u1", "2025-03-13", "簿記", "a", 3600000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 14)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := []string{"財務諸表論", "簿記"}
	if len(summary.SubjectOrder) != len(want) {
		t.Fatalf("subject order = %v, want %v", summary.SubjectOrder, want)
	}
	for i, name := range want {
		if summary.SubjectOrder[i] != name {
			t.Fatalf("subject order = %v, want %v", summary.SubjectOrder, want)
		}
	}
	for _, day := range summary.WeekDailyBySubject {
		if _, ok := day.Subjects["監査論"]; ok {
			t.Fatalf("hidden subject leaked into week grid on %s", day.DateKey)
		}
	}
}

func TestDashboardSubjectOrderFallsBackOnMalformedSetting(t *testing.T) {
	db, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	setting := &types.Setting{Key: types.SettingKeySubjects, Value: `not json at all`}
	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("seed subjects setting: %v", err)
	}
	if _, err := sync.Sync(ctx, "u1", "2025-03-13", "簿記", "a", 3600000); err != nil {
		t.Fatalf("sync: %v", err)
	}

	summary, err := dash.Summary(ctx, "u1", "2025-03-13", 14)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.SubjectOrder) != 1 || summary.SubjectOrder[0] != "簿記" {
		t.Fatalf("subject order = %v, want [簿記]", summary.SubjectOrder)
	}
}

func TestSubjectsSummaryMergesLedgerAndProgress(t *testing.T) {
	db, sync, dash := newDashboardFixture(t)
	ctx := context.Background()

	if _, err := sync.Sync(ctx, "u1", "2025-03-13", "簿記", "a", 7200000); err != nil {
		t.Fatalf("sync: %v", err)
	}
	rows := []*types.StudyProgress{
		{Subject: "簿記", Topic: "仕訳", ProgressPercent: 80},
		{Subject: "簿記", Topic: "決算", ProgressPercent: 40},
		{Subject: "監査論", Topic: "内部統制", ProgressPercent: 60},
		// Legacy time rows carry no meaningful percent and must not count.
		{Subject: "簿記", Topic: types.LegacyTimeEntryTopic, ProgressPercent: 0},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed progress: %v", err)
		}
	}

	subjects, err := dash.SubjectsSummary(ctx, "u1")
	if err != nil {
		t.Fatalf("subjects summary: %v", err)
	}
	bySubject := map[string]SubjectSummary{}
	for _, s := range subjects {
		bySubject[s.Subject] = s
	}

	boki := bySubject["簿記"]
	if boki.Count != 2 {
		t.Fatalf("簿記 count = %d, want 2 (legacy rows excluded)", boki.Count)
	}
	if !almostEqual(boki.AvgProgress, 60.0) {
		t.Fatalf("簿記 avg progress = %f, want 60", boki.AvgProgress)
	}
	if !almostEqual(boki.TotalHours, 2.0) {
		t.Fatalf("簿記 total hours = %f, want 2.0", boki.TotalHours)
	}

	kansa := bySubject["監査論"]
	if kansa.Count != 1 || !almostEqual(kansa.TotalHours, 0) {
		t.Fatalf("監査論 = %+v, want count 1 and zero hours", kansa)
	}
}

func TestDashboardRejectsBadDateKey(t *testing.T) {
	_, _, dash := newDashboardFixture(t)
	if _, err := dash.Summary(context.Background(), "u1", "13-03-2025", 14); err == nil {
		t.Fatal("expected error for malformed date key")
	}
}
