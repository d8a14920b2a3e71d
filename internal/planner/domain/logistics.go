package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// LogisticsStatus is the readiness state of a logistics sub-task.
type LogisticsStatus string

const (
	// LogisticsStatusNotReady means preparation is still outstanding.
	LogisticsStatusNotReady LogisticsStatus = "NOT_READY"
	// LogisticsStatusReady means the item is prepared.
	LogisticsStatusReady LogisticsStatus = "READY"
	// LogisticsStatusIssue means a problem needs organizer attention.
	LogisticsStatusIssue LogisticsStatus = "ISSUE"
)

// ErrLogisticsStatusMissing indicates a missing logistics status.
var ErrLogisticsStatusMissing = apperrors.New(apperrors.CodeLogisticsStatusMissing, "logistics status is required")

// ParseLogisticsStatus validates a raw logistics status value.
func ParseLogisticsStatus(value string) (LogisticsStatus, error) {
	switch LogisticsStatus(strings.TrimSpace(value)) {
	case LogisticsStatusNotReady:
		return LogisticsStatusNotReady, nil
	case LogisticsStatusReady:
		return LogisticsStatusReady, nil
	case LogisticsStatusIssue:
		return LogisticsStatusIssue, nil
	default:
		return "", ErrSubtaskInvalidStatus
	}
}

// LogisticsTask is the readiness detail record attached 1:1 to a LOGISTICS task.
type LogisticsTask struct {
	ID        string
	TaskID    string
	Status    LogisticsStatus
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateLogisticsTaskInput describes the fields needed to create a logistics sub-task.
// Unlike graphics and outreach, the initial status is chosen by the client.
type CreateLogisticsTaskInput struct {
	TaskID  string
	Status  string
	OwnerID string
}

// CreateLogisticsTask creates a logistics sub-task.
func CreateLogisticsTask(input CreateLogisticsTaskInput, now func() time.Time, idGenerator func() (string, error)) (LogisticsTask, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.TaskID = strings.TrimSpace(input.TaskID)
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.TaskID == "" {
		return LogisticsTask{}, apperrors.New(apperrors.CodeSubtaskTaskIDEmpty, "sub-task task id is required")
	}
	if strings.TrimSpace(input.Status) == "" {
		return LogisticsTask{}, ErrLogisticsStatusMissing
	}
	status, err := ParseLogisticsStatus(input.Status)
	if err != nil {
		return LogisticsTask{}, err
	}

	subtaskID, err := idGenerator()
	if err != nil {
		return LogisticsTask{}, fmt.Errorf("generate logistics task id: %w", err)
	}

	createdAt := now().UTC()
	return LogisticsTask{
		ID:        subtaskID,
		TaskID:    input.TaskID,
		Status:    status,
		OwnerID:   input.OwnerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// LogisticsTaskPatch carries a partial update. Only non-nil fields are applied.
type LogisticsTaskPatch struct {
	Status  *string
	OwnerID *string
}

// ApplyLogisticsTaskPatch merges a patch into an existing record. Logistics
// readiness is a flag, so any move between the three states is allowed.
func ApplyLogisticsTaskPatch(existing LogisticsTask, patch LogisticsTaskPatch, now func() time.Time) (LogisticsTask, error) {
	if now == nil {
		now = time.Now
	}

	updated := existing
	if patch.Status != nil {
		status, err := ParseLogisticsStatus(*patch.Status)
		if err != nil {
			return LogisticsTask{}, err
		}
		updated.Status = status
	}
	if patch.OwnerID != nil {
		updated.OwnerID = strings.TrimSpace(*patch.OwnerID)
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// LogisticsParentStatus maps a logistics status to a derived parent task
// status, reporting false when no propagation applies.
func LogisticsParentStatus(status LogisticsStatus) (TaskStatus, bool) {
	switch status {
	case LogisticsStatusReady:
		return TaskStatusDone, true
	case LogisticsStatusIssue:
		return TaskStatusBlocked, true
	default:
		return "", false
	}
}
