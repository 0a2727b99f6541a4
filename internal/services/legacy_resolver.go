package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

// legacyMode is the persistent two-state machine behind the migration
// cut-over. The only allowed transition is legacyActive -> newOnly; there is
// no back edge, so once a deployment runs on the new schema, legacy settings
// data can never resurface.
type legacyMode int

const (
	legacyActive legacyMode = iota
	newOnly
)

// legacyResolver reads and advances the cut-over state, persisted as the
// use_legacy_review_sets settings flag. Existing deployments without the flag
// are still on legacy data, so the absent value defaults to true.
type legacyResolver struct {
	settingRepo repos.SettingRepo
	log         *logger.Logger
}

func newLegacyResolver(settingRepo repos.SettingRepo, log *logger.Logger) *legacyResolver {
	return &legacyResolver{settingRepo: settingRepo, log: log}
}

func (r *legacyResolver) mode(ctx context.Context, tx *gorm.DB) (legacyMode, error) {
	setting, err := r.settingRepo.GetByKey(ctx, tx, types.SettingKeyUseLegacyReviewSets)
	if err != nil {
		return legacyActive, err
	}
	value := ""
	if setting != nil {
		value = setting.Value
	}
	if types.ParseBoolFlag(value, true) {
		return legacyActive, nil
	}
	return newOnly, nil
}

// promote advances the machine to newOnly. The write is idempotent, so
// concurrent promotions are harmless (the flag is re-derivable either way).
func (r *legacyResolver) promote(ctx context.Context, tx *gorm.DB) error {
	if _, err := r.settingRepo.Upsert(ctx, tx, types.SettingKeyUseLegacyReviewSets, "false"); err != nil {
		return err
	}
	r.log.Info("Legacy review sets disabled, running on new schema only")
	return nil
}
