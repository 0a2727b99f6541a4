package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

// OptionalUint distinguishes "field absent" from "field explicitly null" in a
// PATCH-style body. An explicit null on project_id detaches the todo from its
// project; an absent field leaves the link alone.
type OptionalUint struct {
	Set   bool
	Valid bool
	Value uint
}

func (o *OptionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

type TodoCreateInput struct {
	Title     string     `json:"title"`
	Subject   *string    `json:"subject"`
	DueDate   *time.Time `json:"due_date"`
	ProjectID *uint      `json:"project_id"`
}

type TodoUpdateInput struct {
	Title     *string      `json:"title"`
	Subject   *string      `json:"subject"`
	Completed *bool        `json:"completed"`
	DueDate   *time.Time   `json:"due_date"`
	ProjectID OptionalUint `json:"project_id"`
}

type TodoService interface {
	Create(ctx context.Context, input *TodoCreateInput) (*types.Todo, error)
	GetByID(ctx context.Context, id uint) (*types.Todo, error)
	GetAll(ctx context.Context, skip, limit int) ([]*types.Todo, error)
	Update(ctx context.Context, id uint, input *TodoUpdateInput) (*types.Todo, error)
	Delete(ctx context.Context, id uint) error
}

type todoService struct {
	db          *gorm.DB
	log         *logger.Logger
	todoRepo    repos.TodoRepo
	projectRepo repos.ProjectRepo
}

func NewTodoService(db *gorm.DB, log *logger.Logger, todoRepo repos.TodoRepo, projectRepo repos.ProjectRepo) TodoService {
	return &todoService{
		db:          db,
		log:         log.With("service", "TodoService"),
		todoRepo:    todoRepo,
		projectRepo: projectRepo,
	}
}

func (s *todoService) Create(ctx context.Context, input *TodoCreateInput) (*types.Todo, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	row := &types.Todo{
		Title:     input.Title,
		Subject:   input.Subject,
		DueDate:   input.DueDate,
		ProjectID: input.ProjectID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ProjectID != nil {
			project, err := s.projectRepo.GetByID(ctx, tx, *input.ProjectID)
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("%w: project %d", ErrNotFound, *input.ProjectID)
			}
		}
		return s.todoRepo.Create(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *todoService) GetByID(ctx context.Context, id uint) (*types.Todo, error) {
	row, err := s.todoRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: todo %d", ErrNotFound, id)
	}
	return row, nil
}

func (s *todoService) GetAll(ctx context.Context, skip, limit int) ([]*types.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.todoRepo.GetAll(ctx, nil, skip, limit)
}

func (s *todoService) Update(ctx context.Context, id uint, input *TodoUpdateInput) (*types.Todo, error) {
	fields := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		fields["title"] = *input.Title
	}
	if input.Subject != nil {
		fields["subject"] = *input.Subject
	}
	if input.Completed != nil {
		fields["completed"] = *input.Completed
	}
	if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}

	var out *types.Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.todoRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: todo %d", ErrNotFound, id)
		}

		if input.ProjectID.Set {
			if input.ProjectID.Valid {
				project, err := s.projectRepo.GetByID(ctx, tx, input.ProjectID.Value)
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("%w: project %d", ErrNotFound, input.ProjectID.Value)
				}
				fields["project_id"] = input.ProjectID.Value
			} else {
				fields["project_id"] = nil
			}
		}

		if err := s.todoRepo.UpdateFields(ctx, tx, id, fields); err != nil {
			return err
		}
		updated, err := s.todoRepo.GetByID(ctx, tx, id)
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

func (s *todoService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.todoRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: todo %d", ErrNotFound, id)
		}
		return s.todoRepo.Delete(ctx, tx, id)
	})
}
