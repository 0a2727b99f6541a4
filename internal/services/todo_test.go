package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

func newTodoFixture(t *testing.T) (*gorm.DB, TodoService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewTodoService(db, log, repos.NewTodoRepo(db, log), repos.NewProjectRepo(db, log))
	return db, svc
}

func TestOptionalUintUnmarshal(t *testing.T) {
	var body struct {
		ProjectID OptionalUint `json:"project_id"`
	}

	if err := json.Unmarshal([]byte(`{}`), &body); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if body.ProjectID.Set {
		t.Fatal("absent field reported as set")
	}

	body.ProjectID = OptionalUint{}
	if err := json.Unmarshal([]byte(`{"project_id":null}`), &body); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !body.ProjectID.Set || body.ProjectID.Valid {
		t.Fatalf("explicit null = %+v, want set and invalid", body.ProjectID)
	}

	body.ProjectID = OptionalUint{}
	if err := json.Unmarshal([]byte(`{"project_id":7}`), &body); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !body.ProjectID.Set || !body.ProjectID.Valid || body.ProjectID.Value != 7 {
		t.Fatalf("value = %+v, want set/valid 7", body.ProjectID)
	}
}

func TestTodoCreateRequiresTitleAndExistingProject(t *testing.T) {
	_, svc := newTodoFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &TodoCreateInput{Title: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title err = %v, want ErrValidation", err)
	}
	missing := uint(42)
	if _, err := svc.Create(ctx, &TodoCreateInput{Title: "x", ProjectID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project err = %v, want ErrNotFound", err)
	}
}

func TestTodoUpdateProjectLink(t *testing.T) {
	db, svc := newTodoFixture(t)
	ctx := context.Background()

	project := &types.Project{Name: "論文式対策"}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	todo, err := svc.Create(ctx, &TodoCreateInput{Title: "過去問"})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	// Attach.
	updated, err := svc.Update(ctx, todo.ID, &TodoUpdateInput{
		ProjectID: OptionalUint{Set: true, Valid: true, Value: project.ID},
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if updated.ProjectID == nil || *updated.ProjectID != project.ID {
		t.Fatalf("project id = %v, want %d", updated.ProjectID, project.ID)
	}

	// An update that never mentions project_id leaves the link alone.
	title := "過去問2周目"
	updated, err = svc.Update(ctx, todo.ID, &TodoUpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("title update: %v", err)
	}
	if updated.ProjectID == nil || *updated.ProjectID != project.ID {
		t.Fatalf("project link lost on unrelated update: %v", updated.ProjectID)
	}

	// Explicit null detaches.
	updated, err = svc.Update(ctx, todo.ID, &TodoUpdateInput{
		ProjectID: OptionalUint{Set: true, Valid: false},
	})
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if updated.ProjectID != nil {
		t.Fatalf("project id = %v after explicit null, want nil", updated.ProjectID)
	}
}

func TestTodoUpdateAndDeleteMissing(t *testing.T) {
	_, svc := newTodoFixture(t)
	ctx := context.Background()

	title := "x"
	if _, err := svc.Update(ctx, 999, &TodoUpdateInput{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing err = %v, want ErrNotFound", err)
	}
}

func TestTodoListOrdersIncompleteFirst(t *testing.T) {
	_, svc := newTodoFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &TodoCreateInput{Title: "済"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, &TodoCreateInput{Title: "未"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	done := true
	if _, err := svc.Update(ctx, first.ID, &TodoUpdateInput{Completed: &done}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	todos, err := svc.GetAll(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("listed %d todos, want 2", len(todos))
	}
	if todos[0].Completed {
		t.Fatalf("incomplete todo should list first, got %q first", todos[0].Title)
	}
}
