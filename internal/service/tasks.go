package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mers/internal/domain"
)

// TaskService manages the development user's task board.
type TaskService struct {
	tasks TaskStore
	setup *SetupService
}

func NewTaskService(tasks TaskStore, setup *SetupService) *TaskService {
	return &TaskService{tasks: tasks, setup: setup}
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	u, err := s.setup.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, u.ID)
}

// Create requires a non-blank title; an empty column defaults to the backlog.
func (s *TaskService) Create(ctx context.Context, t *domain.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidPayload)
	}
	u, err := s.setup.CurrentUser(ctx)
	if err != nil {
		return err
	}
	t.ID = uuid.NewString()
	t.UserID = u.ID
	if t.Column == "" {
		t.Column = domain.DefaultTaskColumn
	}
	return s.tasks.Create(ctx, t)
}

func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidPayload)
	}
	u, err := s.setup.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.tasks.Update(ctx, u.ID, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	u, err := s.setup.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, u.ID, id)
}
