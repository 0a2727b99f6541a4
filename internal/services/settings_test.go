package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

func newSettingsFixture(t *testing.T) (*gorm.DB, SettingsService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewSettingsService(
		db,
		log,
		repos.NewSettingRepo(db, log),
		repos.NewTodoRepo(db, log),
		repos.NewStudyProgressRepo(db, log),
	)
	return db, svc
}

func TestSettingsUpsertAndGet(t *testing.T) {
	_, svc := newSettingsFixture(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, "theme", `"dark"`); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.Upsert(ctx, "theme", `"light"`); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	setting, err := svc.Get(ctx, "theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if setting.Value != `"light"` {
		t.Fatalf("value = %q, want %q", setting.Value, `"light"`)
	}

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank key err = %v, want ErrValidation", err)
	}
}

func TestRenameSubjectCascades(t *testing.T) {
	db, svc := newSettingsFixture(t)
	ctx := context.Background()

	old := "簿記"
	todos := []*types.Todo{
		{Title: "過去問", Subject: &old},
		{Title: "答練", Subject: &old},
	}
	for _, todo := range todos {
		if err := db.Create(todo).Error; err != nil {
			t.Fatalf("seed todo: %v", err)
		}
	}
	if err := db.Create(&types.StudyProgress{Subject: old, Topic: "仕訳", ProgressPercent: 50}).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	if err := db.Create(&types.Setting{
		Key:   types.SettingKeyReviewTiming,
		Value: `[{"subject_name":"簿記","review_days":[1,3]},{"subject_name":"監査論","review_days":[7]}]`,
	}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	count, err := svc.RenameSubject(ctx, "簿記", "簿記論")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if count != 3 {
		t.Fatalf("updated count = %d, want 3", count)
	}

	var renamedTodos int64
	if err := db.Model(&types.Todo{}).Where("subject = ?", "簿記論").Count(&renamedTodos).Error; err != nil {
		t.Fatalf("count todos: %v", err)
	}
	if renamedTodos != 2 {
		t.Fatalf("renamed todos = %d, want 2", renamedTodos)
	}

	var setting types.Setting
	if err := db.Where("key = ?", types.SettingKeyReviewTiming).First(&setting).Error; err != nil {
		t.Fatalf("read setting: %v", err)
	}
	timings, err := types.ParseReviewTimings(setting.Value)
	if err != nil {
		t.Fatalf("parse rewritten timing: %v", err)
	}
	names := map[string]bool{}
	for _, timing := range timings {
		names[timing.SubjectName] = true
	}
	if !names["簿記論"] || names["簿記"] {
		t.Fatalf("review_timing names = %v, want 簿記 renamed to 簿記論", names)
	}
	if !names["監査論"] {
		t.Fatalf("unrelated review_timing entry lost: %v", names)
	}
}

func TestRenameSubjectSwallowsMalformedReviewTiming(t *testing.T) {
	db, svc := newSettingsFixture(t)
	ctx := context.Background()

	old := "簿記"
	if err := db.Create(&types.Todo{Title: "過去問", Subject: &old}).Error; err != nil {
		t.Fatalf("seed todo: %v", err)
	}
	if err := db.Create(&types.Setting{Key: types.SettingKeyReviewTiming, Value: `broken{`}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}

	count, err := svc.RenameSubject(ctx, "簿記", "簿記論")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if count != 1 {
		t.Fatalf("updated count = %d, want 1", count)
	}

	var setting types.Setting
	if err := db.Where("key = ?", types.SettingKeyReviewTiming).First(&setting).Error; err != nil {
		t.Fatalf("read setting: %v", err)
	}
	if setting.Value != `broken{` {
		t.Fatalf("malformed payload was rewritten to %q", setting.Value)
	}
}

func TestRenameSubjectValidation(t *testing.T) {
	_, svc := newSettingsFixture(t)
	ctx := context.Background()

	if _, err := svc.RenameSubject(ctx, "", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank old name err = %v, want ErrValidation", err)
	}
	count, err := svc.RenameSubject(ctx, "同じ", "同じ")
	if err != nil {
		t.Fatalf("same-name rename: %v", err)
	}
	if count != 0 {
		t.Fatalf("same-name rename touched %d rows, want 0", count)
	}
}
