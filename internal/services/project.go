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

type ProjectCreateInput struct {
	Name        string     `json:"name"`
	DueDate     *time.Time `json:"due_date"`
	Description *string    `json:"description"`
}

type ProjectUpdateInput struct {
	Name        *string    `json:"name"`
	DueDate     *time.Time `json:"due_date"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
}

// CompleteResult reports a project completion together with how many of its
// todos were closed along the way.
type CompleteResult struct {
	Project        *types.Project `json:"project"`
	CompletedTodos int64          `json:"completed_todos"`
}

type ProjectService interface {
	Create(ctx context.Context, input *ProjectCreateInput) (*types.Project, error)
	GetByID(ctx context.Context, id uint) (*types.Project, error)
	GetAll(ctx context.Context, skip, limit int) ([]*types.Project, error)
	Update(ctx context.Context, id uint, input *ProjectUpdateInput) (*types.Project, error)
	// Delete removes the project and detaches its todos instead of deleting
	// them.
	Delete(ctx context.Context, id uint) error
	// Complete marks the project and all of its incomplete todos done in one
	// transaction.
	Complete(ctx context.Context, id uint) (*CompleteResult, error)
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	todoRepo    repos.TodoRepo
}

func NewProjectService(db *gorm.DB, log *logger.Logger, projectRepo repos.ProjectRepo, todoRepo repos.TodoRepo) ProjectService {
	return &projectService{
		db:          db,
		log:         log.With("service", "ProjectService"),
		projectRepo: projectRepo,
		todoRepo:    todoRepo,
	}
}

func (s *projectService) Create(ctx context.Context, input *ProjectCreateInput) (*types.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	row := &types.Project{
		Name:        input.Name,
		DueDate:     input.DueDate,
		Description: input.Description,
	}
	if err := s.projectRepo.Create(ctx, nil, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *projectService) GetByID(ctx context.Context, id uint) (*types.Project, error) {
	row, err := s.projectRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: project %d", ErrNotFound, id)
	}
	return row, nil
}

func (s *projectService) GetAll(ctx context.Context, skip, limit int) ([]*types.Project, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.projectRepo.GetAll(ctx, nil, skip, limit)
}

func (s *projectService) Update(ctx context.Context, id uint, input *ProjectUpdateInput) (*types.Project, error) {
	fields := map[string]interface{}{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		fields["name"] = *input.Name
	}
	if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Completed != nil {
		fields["completed"] = *input.Completed
	}

	var out *types.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.projectRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: project %d", ErrNotFound, id)
		}
		if err := s.projectRepo.UpdateFields(ctx, tx, id, fields); err != nil {
			return err
		}
		updated, err := s.projectRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *projectService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.projectRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: project %d", ErrNotFound, id)
		}
		if err := s.todoRepo.DetachProject(ctx, tx, id); err != nil {
			return err
		}
		return s.projectRepo.Delete(ctx, tx, id)
	})
}

func (s *projectService) Complete(ctx context.Context, id uint) (*CompleteResult, error) {
	var out CompleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.projectRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: project %d", ErrNotFound, id)
		}

		closed, err := s.todoRepo.CompleteByProject(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.projectRepo.UpdateFields(ctx, tx, id, map[string]interface{}{"completed": true}); err != nil {
			return err
		}
		updated, err := s.projectRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		out = CompleteResult{Project: updated, CompletedTodos: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
