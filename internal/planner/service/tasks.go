package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stagehandhq/stagehand/internal/auth/guard"
	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

// CreateTaskParams describes a task creation request.
type CreateTaskParams struct {
	EventID  string
	Title    string
	Category string
	DueAt    *time.Time
}

// CreateTask creates a task under an event. Any authenticated role.
func (s *Service) CreateTask(ctx context.Context, params CreateTaskParams) (domain.Task, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.Task{}, err
	}

	if _, err := s.store.GetEvent(ctx, strings.TrimSpace(params.EventID)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Task{}, apperrors.New(apperrors.CodeNotFound, "event not found")
		}
		return domain.Task{}, fmt.Errorf("load event: %w", err)
	}

	task, err := domain.CreateTask(domain.CreateTaskInput{
		EventID:  params.EventID,
		Title:    params.Title,
		Category: domain.TaskCategory(strings.TrimSpace(params.Category)),
		DueAt:    params.DueAt,
	}, s.now, s.newID)
	if err != nil {
		return domain.Task{}, err
	}

	if err := s.store.PutTask(ctx, taskRecord(task)); err != nil {
		return domain.Task{}, fmt.Errorf("persist task: %w", err)
	}
	return task, nil
}

// GetTask loads one task. Any authenticated role may read.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.Task{}, err
	}
	return s.loadTask(ctx, taskID)
}

// ListTasksByEvent lists event tasks oldest-first. Any authenticated role.
func (s *Service) ListTasksByEvent(ctx context.Context, eventID string) ([]domain.Task, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return nil, err
	}
	records, err := s.store.ListTasksByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, taskFromRecord(record))
	}
	return tasks, nil
}

// TransitionTaskStatus moves a task along its workflow. Any authenticated role.
func (s *Service) TransitionTaskStatus(ctx context.Context, taskID string, status string) (domain.Task, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.Task{}, err
	}

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	updated, err := domain.TransitionTaskStatus(task, domain.TaskStatus(strings.TrimSpace(status)), s.now)
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.store.PutTask(ctx, taskRecord(updated)); err != nil {
		return domain.Task{}, fmt.Errorf("persist task: %w", err)
	}
	return updated, nil
}

func (s *Service) loadTask(ctx context.Context, taskID string) (domain.Task, error) {
	record, err := s.store.GetTask(ctx, strings.TrimSpace(taskID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Task{}, apperrors.New(apperrors.CodeNotFound, "task not found")
		}
		return domain.Task{}, fmt.Errorf("load task: %w", err)
	}
	return taskFromRecord(record), nil
}

// propagateParentStatus pushes a sub-record derived status onto the parent
// task when the mapping applies. A no-op mapping leaves the task untouched.
func (s *Service) propagateParentStatus(ctx context.Context, taskID string, derived domain.TaskStatus, ok bool) error {
	if !ok {
		return nil
	}
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	updated, err := domain.PropagateTaskStatus(task, derived, s.now)
	if err != nil {
		return err
	}
	if updated.Status == task.Status {
		return nil
	}
	if err := s.store.PutTask(ctx, taskRecord(updated)); err != nil {
		return fmt.Errorf("persist task: %w", err)
	}
	return nil
}
