// Package services exposes the store operations to callers. Every method
// reads the acting auth.Principal from the context and checks it against
// the access policy before touching a repository.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/tasks"
)

type TaskService struct {
	repo tasks.Repository
}

func NewTaskService(repo tasks.Repository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns every unexpired task keyed by id.
func (s *TaskService) List(ctx context.Context) (map[string]models.Task, error) {
	if _, err := auth.Authorize(ctx, auth.OpTasksRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Create stores task under id, replacing any existing record.
func (s *TaskService) Create(ctx context.Context, id string, task models.Task) error {
	if _, err := auth.Authorize(ctx, auth.OpTasksWrite); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return common.NewValidationError("id", "required", "task id is required")
	}
	record := task.Merge(nil)
	if _, ok := record["id"]; !ok {
		record["id"] = id
	}
	return s.repo.Put(ctx, id, record)
}

// Update merges patch into the task. A missing task is common.ErrorNotFound.
func (s *TaskService) Update(ctx context.Context, id string, patch models.Task) (models.Task, error) {
	if _, err := auth.Authorize(ctx, auth.OpTasksWrite); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the task; deleting a missing task is not an error.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, err := auth.Authorize(ctx, auth.OpTasksWrite); err != nil {
		return err
	}
	_, err := s.repo.Delete(ctx, id)
	return err
}
