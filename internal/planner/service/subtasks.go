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

// CreateGraphicsTaskParams describes a graphics sub-task creation request.
type CreateGraphicsTaskParams struct {
	TaskID    string
	AssetType string
	Formats   []string
	OwnerID   string
}

// GraphicsTaskUpdate describes a graphics partial update. Nil fields are
// left untouched.
type GraphicsTaskUpdate struct {
	AssetType       *string
	Formats         *[]string
	Status          *string
	FinalOutputLink *string
	OwnerID         *string
}

// CreateLogisticsTaskParams describes a logistics sub-task creation request.
type CreateLogisticsTaskParams struct {
	TaskID  string
	Status  string
	OwnerID string
}

// LogisticsTaskUpdate describes a logistics partial update.
type LogisticsTaskUpdate struct {
	Status  *string
	OwnerID *string
}

// CreateOutreachTaskParams describes an outreach sub-task creation request.
type CreateOutreachTaskParams struct {
	TaskID      string
	Channel     string
	ContentLink string
	ScheduledAt *time.Time
	OwnerID     string
}

// OutreachTaskUpdate describes an outreach partial update.
type OutreachTaskUpdate struct {
	Channel     *string
	ContentLink *string
	ScheduledAt *time.Time
	Status      *string
	OutcomeNote *string
	OwnerID     *string
}

// CreateGraphicsTask attaches a graphics sub-task to a GRAPHICS task. The
// owner defaults to the requesting identity when omitted.
func (s *Service) CreateGraphicsTask(ctx context.Context, params CreateGraphicsTaskParams) (domain.GraphicsTask, error) {
	identity, err := guard.Authenticate(ctx)
	if err != nil {
		return domain.GraphicsTask{}, err
	}
	if err := s.requireTaskCategory(ctx, params.TaskID, domain.TaskCategoryGraphics); err != nil {
		return domain.GraphicsTask{}, err
	}

	subtask, err := domain.CreateGraphicsTask(domain.CreateGraphicsTaskInput{
		TaskID:    params.TaskID,
		AssetType: params.AssetType,
		Formats:   params.Formats,
		OwnerID:   guard.DefaultOwner(identity, params.OwnerID),
	}, s.now, s.newID)
	if err != nil {
		return domain.GraphicsTask{}, err
	}

	if err := s.store.PutGraphicsTask(ctx, graphicsRecord(subtask)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return domain.GraphicsTask{}, apperrors.New(apperrors.CodeAlreadyExists, "task already has a graphics sub-task")
		}
		return domain.GraphicsTask{}, fmt.Errorf("persist graphics task: %w", err)
	}
	return subtask, nil
}

// UpdateGraphicsTask applies a partial update and propagates a DELIVERED
// status onto the parent task.
func (s *Service) UpdateGraphicsTask(ctx context.Context, subtaskID string, update GraphicsTaskUpdate) (domain.GraphicsTask, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.GraphicsTask{}, err
	}
	subtaskID = strings.TrimSpace(subtaskID)
	if subtaskID == "" {
		return domain.GraphicsTask{}, apperrors.New(apperrors.CodeSubtaskIDEmpty, "graphics sub-task id is required")
	}

	record, err := s.store.GetGraphicsTask(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.GraphicsTask{}, apperrors.New(apperrors.CodeNotFound, "graphics sub-task not found")
		}
		return domain.GraphicsTask{}, fmt.Errorf("load graphics task: %w", err)
	}

	updated, err := domain.ApplyGraphicsTaskPatch(graphicsFromRecord(record), domain.GraphicsTaskPatch{
		AssetType:       update.AssetType,
		Formats:         update.Formats,
		Status:          update.Status,
		FinalOutputLink: update.FinalOutputLink,
		OwnerID:         update.OwnerID,
	}, s.now)
	if err != nil {
		return domain.GraphicsTask{}, err
	}
	if err := s.store.PutGraphicsTask(ctx, graphicsRecord(updated)); err != nil {
		return domain.GraphicsTask{}, fmt.Errorf("persist graphics task: %w", err)
	}

	derived, ok := domain.GraphicsParentStatus(updated.Status)
	if err := s.propagateParentStatus(ctx, updated.TaskID, derived, ok); err != nil {
		return domain.GraphicsTask{}, err
	}
	return updated, nil
}

// CreateLogisticsTask attaches a logistics sub-task to a LOGISTICS task.
func (s *Service) CreateLogisticsTask(ctx context.Context, params CreateLogisticsTaskParams) (domain.LogisticsTask, error) {
	identity, err := guard.Authenticate(ctx)
	if err != nil {
		return domain.LogisticsTask{}, err
	}
	if err := s.requireTaskCategory(ctx, params.TaskID, domain.TaskCategoryLogistics); err != nil {
		return domain.LogisticsTask{}, err
	}

	subtask, err := domain.CreateLogisticsTask(domain.CreateLogisticsTaskInput{
		TaskID:  params.TaskID,
		Status:  params.Status,
		OwnerID: guard.DefaultOwner(identity, params.OwnerID),
	}, s.now, s.newID)
	if err != nil {
		return domain.LogisticsTask{}, err
	}

	if err := s.store.PutLogisticsTask(ctx, logisticsRecord(subtask)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return domain.LogisticsTask{}, apperrors.New(apperrors.CodeAlreadyExists, "task already has a logistics sub-task")
		}
		return domain.LogisticsTask{}, fmt.Errorf("persist logistics task: %w", err)
	}

	derived, ok := domain.LogisticsParentStatus(subtask.Status)
	if err := s.propagateParentStatus(ctx, subtask.TaskID, derived, ok); err != nil {
		return domain.LogisticsTask{}, err
	}
	return subtask, nil
}

// UpdateLogisticsTask applies a partial update and propagates READY and
// ISSUE statuses onto the parent task.
func (s *Service) UpdateLogisticsTask(ctx context.Context, subtaskID string, update LogisticsTaskUpdate) (domain.LogisticsTask, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.LogisticsTask{}, err
	}
	subtaskID = strings.TrimSpace(subtaskID)
	if subtaskID == "" {
		return domain.LogisticsTask{}, apperrors.New(apperrors.CodeSubtaskIDEmpty, "logistics sub-task id is required")
	}

	record, err := s.store.GetLogisticsTask(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.LogisticsTask{}, apperrors.New(apperrors.CodeNotFound, "logistics sub-task not found")
		}
		return domain.LogisticsTask{}, fmt.Errorf("load logistics task: %w", err)
	}

	updated, err := domain.ApplyLogisticsTaskPatch(logisticsFromRecord(record), domain.LogisticsTaskPatch{
		Status:  update.Status,
		OwnerID: update.OwnerID,
	}, s.now)
	if err != nil {
		return domain.LogisticsTask{}, err
	}
	if err := s.store.PutLogisticsTask(ctx, logisticsRecord(updated)); err != nil {
		return domain.LogisticsTask{}, fmt.Errorf("persist logistics task: %w", err)
	}

	derived, ok := domain.LogisticsParentStatus(updated.Status)
	if err := s.propagateParentStatus(ctx, updated.TaskID, derived, ok); err != nil {
		return domain.LogisticsTask{}, err
	}
	return updated, nil
}

// CreateOutreachTask attaches an outreach sub-task to an OUTREACH task.
func (s *Service) CreateOutreachTask(ctx context.Context, params CreateOutreachTaskParams) (domain.OutreachTask, error) {
	identity, err := guard.Authenticate(ctx)
	if err != nil {
		return domain.OutreachTask{}, err
	}
	if err := s.requireTaskCategory(ctx, params.TaskID, domain.TaskCategoryOutreach); err != nil {
		return domain.OutreachTask{}, err
	}

	subtask, err := domain.CreateOutreachTask(domain.CreateOutreachTaskInput{
		TaskID:      params.TaskID,
		Channel:     params.Channel,
		ContentLink: params.ContentLink,
		ScheduledAt: params.ScheduledAt,
		OwnerID:     guard.DefaultOwner(identity, params.OwnerID),
	}, s.now, s.newID)
	if err != nil {
		return domain.OutreachTask{}, err
	}

	if err := s.store.PutOutreachTask(ctx, outreachRecord(subtask)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return domain.OutreachTask{}, apperrors.New(apperrors.CodeAlreadyExists, "task already has an outreach sub-task")
		}
		return domain.OutreachTask{}, fmt.Errorf("persist outreach task: %w", err)
	}
	return subtask, nil
}

// UpdateOutreachTask applies a partial update and propagates PUBLISHED and
// FAILED statuses onto the parent task.
func (s *Service) UpdateOutreachTask(ctx context.Context, subtaskID string, update OutreachTaskUpdate) (domain.OutreachTask, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.OutreachTask{}, err
	}
	subtaskID = strings.TrimSpace(subtaskID)
	if subtaskID == "" {
		return domain.OutreachTask{}, apperrors.New(apperrors.CodeSubtaskIDEmpty, "outreach sub-task id is required")
	}

	record, err := s.store.GetOutreachTask(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.OutreachTask{}, apperrors.New(apperrors.CodeNotFound, "outreach sub-task not found")
		}
		return domain.OutreachTask{}, fmt.Errorf("load outreach task: %w", err)
	}

	updated, err := domain.ApplyOutreachTaskPatch(outreachFromRecord(record), domain.OutreachTaskPatch{
		Channel:     update.Channel,
		ContentLink: update.ContentLink,
		ScheduledAt: update.ScheduledAt,
		Status:      update.Status,
		OutcomeNote: update.OutcomeNote,
		OwnerID:     update.OwnerID,
	}, s.now)
	if err != nil {
		return domain.OutreachTask{}, err
	}
	if err := s.store.PutOutreachTask(ctx, outreachRecord(updated)); err != nil {
		return domain.OutreachTask{}, fmt.Errorf("persist outreach task: %w", err)
	}

	derived, ok := domain.OutreachParentStatus(updated.Status)
	if err := s.propagateParentStatus(ctx, updated.TaskID, derived, ok); err != nil {
		return domain.OutreachTask{}, err
	}
	return updated, nil
}

// requireTaskCategory verifies the parent task exists and carries the
// category matching the sub-task type.
func (s *Service) requireTaskCategory(ctx context.Context, taskID string, category domain.TaskCategory) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return apperrors.New(apperrors.CodeSubtaskTaskIDEmpty, "sub-task task id is required")
	}
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Category != category {
		return apperrors.WithMetadata(
			apperrors.CodeSubtaskCategoryMismatch,
			fmt.Sprintf("task category %s does not accept %s sub-tasks", task.Category, category),
			map[string]string{"TaskCategory": string(task.Category), "SubtaskCategory": string(category)},
		)
	}
	return nil
}
