package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

// seededListSuffix marks lists synthesized from the legacy review_timing
// settings payload.
const seededListSuffix = "（legacy）"

// defaultReminderBaseTitle prefixes generated reminder titles when the caller
// does not supply one.
const defaultReminderBaseTitle = "復習"

type ReviewSetService interface {
	ListSets(ctx context.Context) ([]*types.ReviewSetList, error)
	GetSet(ctx context.Context, id uint) (*types.ReviewSetList, error)
	CreateSet(ctx context.Context, name string, offsets []int) (*types.ReviewSetList, error)
	UpdateSetName(ctx context.Context, id uint, name string) (*types.ReviewSetList, error)
	DeleteSet(ctx context.Context, id uint) error
	AddItem(ctx context.Context, listID uint, offsetDays int) (*types.ReviewSetItem, error)
	UpdateItem(ctx context.Context, listID, itemID uint, offsetDays int) (*types.ReviewSetItem, error)
	DeleteItem(ctx context.Context, listID, itemID uint) error
	// Generate materializes one dated reminder todo per item of the list,
	// relative to startDate (normalized to UTC midnight, defaulting to now).
	Generate(ctx context.Context, listID uint, subject, baseTitle string, startDate *time.Time, projectID *uint) ([]*types.Todo, error)
}

type reviewSetService struct {
	db            *gorm.DB
	log           *logger.Logger
	reviewSetRepo repos.ReviewSetRepo
	todoRepo      repos.TodoRepo
	projectRepo   repos.ProjectRepo
	resolver      *legacyResolver
}

func NewReviewSetService(db *gorm.DB, log *logger.Logger, reviewSetRepo repos.ReviewSetRepo, settingRepo repos.SettingRepo, todoRepo repos.TodoRepo, projectRepo repos.ProjectRepo) ReviewSetService {
	serviceLog := log.With("service", "ReviewSetService")
	return &reviewSetService{
		db:            db,
		log:           serviceLog,
		reviewSetRepo: reviewSetRepo,
		todoRepo:      todoRepo,
		projectRepo:   projectRepo,
		resolver:      newLegacyResolver(settingRepo, serviceLog),
	}
}

func (s *reviewSetService) ensureReady(ctx context.Context) error {
	if !s.reviewSetRepo.TablesReady(ctx) {
		return ErrNotReady
	}
	return nil
}

// ListSets is the list-read path: when the table is still empty and the
// deployment has not cut over, it first seeds lists from the legacy
// review_timing payload.
func (s *reviewSetService) ListSets(ctx context.Context) ([]*types.ReviewSetList, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	var out []*types.ReviewSetList
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.seedFromLegacy(ctx, tx); err != nil {
			return err
		}
		lists, err := s.reviewSetRepo.GetAllLists(ctx, tx)
		if err != nil {
			return err
		}
		out = lists
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// seedFromLegacy only ever runs while the live list count is exactly 0, so
// one successful seeding (or one real write) permanently disables it.
// Malformed legacy JSON degrades to "no seeding", never to a failed request.
func (s *reviewSetService) seedFromLegacy(ctx context.Context, tx *gorm.DB) error {
	count, err := s.reviewSetRepo.CountLists(ctx, tx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	mode, err := s.resolver.mode(ctx, tx)
	if err != nil {
		return err
	}
	if mode != legacyActive {
		return nil
	}

	setting, err := s.resolver.settingRepo.GetByKey(ctx, tx, types.SettingKeyReviewTiming)
	if err != nil {
		return err
	}
	if setting == nil {
		return nil
	}
	timings, err := types.ParseReviewTimings(setting.Value)
	if err != nil {
		s.log.Warn("Malformed review_timing setting, skipping legacy seeding", "error", err)
		return nil
	}

	seeded := 0
	for _, timing := range timings {
		items := make([]types.ReviewSetItem, 0, len(timing.ReviewDays))
		for _, day := range timing.ReviewDays {
			if day < 0 {
				continue
			}
			items = append(items, types.ReviewSetItem{OffsetDays: day})
		}
		if len(items) == 0 {
			continue
		}
		list := &types.ReviewSetList{
			Name:  timing.SubjectName + seededListSuffix,
			Items: items,
		}
		if err := s.reviewSetRepo.CreateList(ctx, tx, list); err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		s.log.Info("Seeded review set lists from legacy review_timing", "lists", seeded)
	}
	return nil
}

func (s *reviewSetService) GetSet(ctx context.Context, id uint) (*types.ReviewSetList, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	list, err := s.reviewSetRepo.GetList(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: review set list %d", ErrNotFound, id)
	}
	return list, nil
}

// CreateSet is the primary write path: the first genuinely new list flips the
// deployment to new-schema-only, permanently.
func (s *reviewSetService) CreateSet(ctx context.Context, name string, offsets []int) (*types.ReviewSetList, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	for _, offset := range offsets {
		if offset < 0 {
			return nil, fmt.Errorf("%w: offset_days must be >= 0", ErrValidation)
		}
	}

	items := make([]types.ReviewSetItem, 0, len(offsets))
	for _, offset := range offsets {
		items = append(items, types.ReviewSetItem{OffsetDays: offset})
	}
	list := &types.ReviewSetList{Name: name, Items: items}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewSetRepo.CreateList(ctx, tx, list); err != nil {
			return err
		}
		return s.resolver.promote(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return s.reviewSetRepo.GetList(ctx, nil, list.ID)
}

func (s *reviewSetService) UpdateSetName(ctx context.Context, id uint, name string) (*types.ReviewSetList, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.reviewSetRepo.GetList(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: review set list %d", ErrNotFound, id)
		}
		return s.reviewSetRepo.UpdateListName(ctx, tx, id, name)
	})
	if err != nil {
		return nil, err
	}
	return s.reviewSetRepo.GetList(ctx, nil, id)
}

// DeleteSet deletes a list and its items. When the last list goes away the
// legacy flag is forced off so seeded data cannot reappear on the next read.
func (s *reviewSetService) DeleteSet(ctx context.Context, id uint) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.reviewSetRepo.GetList(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: review set list %d", ErrNotFound, id)
		}
		if err := s.reviewSetRepo.DeleteList(ctx, tx, id); err != nil {
			return err
		}
		count, err := s.reviewSetRepo.CountLists(ctx, tx)
		if err != nil {
			return err
		}
		if count == 0 {
			return s.resolver.promote(ctx, tx)
		}
		return nil
	})
}

func (s *reviewSetService) AddItem(ctx context.Context, listID uint, offsetDays int) (*types.ReviewSetItem, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if offsetDays < 0 {
		return nil, fmt.Errorf("%w: offset_days must be >= 0", ErrValidation)
	}

	item := &types.ReviewSetItem{SetListID: listID, OffsetDays: offsetDays}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.reviewSetRepo.GetList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return fmt.Errorf("%w: review set list %d", ErrNotFound, listID)
		}
		return s.reviewSetRepo.CreateItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *reviewSetService) UpdateItem(ctx context.Context, listID, itemID uint, offsetDays int) (*types.ReviewSetItem, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if offsetDays < 0 {
		return nil, fmt.Errorf("%w: offset_days must be >= 0", ErrValidation)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.reviewSetRepo.GetItem(ctx, tx, listID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: review set item %d", ErrNotFound, itemID)
		}
		return s.reviewSetRepo.UpdateItemOffset(ctx, tx, itemID, offsetDays)
	})
	if err != nil {
		return nil, err
	}
	return s.reviewSetRepo.GetItem(ctx, nil, listID, itemID)
}

func (s *reviewSetService) DeleteItem(ctx context.Context, listID, itemID uint) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.reviewSetRepo.GetItem(ctx, tx, listID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: review set item %d", ErrNotFound, itemID)
		}
		return s.reviewSetRepo.DeleteItem(ctx, tx, itemID)
	})
}

func (s *reviewSetService) Generate(ctx context.Context, listID uint, subject, baseTitle string, startDate *time.Time, projectID *uint) ([]*types.Todo, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	baseTitle = strings.TrimSpace(baseTitle)
	if baseTitle == "" {
		baseTitle = defaultReminderBaseTitle
	}

	start := time.Now().UTC()
	if startDate != nil {
		start = startDate.UTC()
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	var out []*types.Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.reviewSetRepo.GetList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return fmt.Errorf("%w: review set list %d", ErrNotFound, listID)
		}
		if len(list.Items) == 0 {
			return ErrEmptySet
		}
		if projectID != nil {
			project, err := s.projectRepo.GetByID(ctx, tx, *projectID)
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("%w: project %d", ErrNotFound, *projectID)
			}
		}

		todos := make([]*types.Todo, 0, len(list.Items))
		for i, item := range list.Items {
			due := start.AddDate(0, 0, item.OffsetDays)
			subjectCopy := subject
			todos = append(todos, &types.Todo{
				Title:     fmt.Sprintf("%s_%s%d回目", baseTitle, subject, i+1),
				Subject:   &subjectCopy,
				DueDate:   &due,
				ProjectID: projectID,
			})
		}
		if err := s.todoRepo.CreateBatch(ctx, tx, todos); err != nil {
			return err
		}
		out = todos
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
