package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/types"
	"github.com/hokkyo/cpadash-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "cpadash", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the sync retry depends on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.StudyTimeSession{},
		&types.StudyProgress{},
		&types.Todo{},
		&types.Project{},
		&types.Setting{},
		&types.ReviewSetList{},
		&types.ReviewSetItem{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// SeedDefaults inserts the settings rows a fresh database needs. Existing
// rows are never touched, so deployments that already cut over keep their
// flag.
func (s *PostgresService) SeedDefaults() error {
	var existing types.Setting
	err := s.db.Where("key = ?", types.SettingKeyUseLegacyReviewSets).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	s.log.Info("Seeding default settings...")
	return s.db.Create(&types.Setting{
		Key:   types.SettingKeyUseLegacyReviewSets,
		Value: "true",
	}).Error
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
