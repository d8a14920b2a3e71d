package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// OutreachStatus is the publication state of an outreach sub-task.
type OutreachStatus string

const (
	// OutreachStatusPending is the fixed initial state.
	OutreachStatusPending OutreachStatus = "PENDING"
	// OutreachStatusScheduled means the post has a planned publish time.
	OutreachStatusScheduled OutreachStatus = "SCHEDULED"
	// OutreachStatusPublished is terminal; the content went out.
	OutreachStatusPublished OutreachStatus = "PUBLISHED"
	// OutreachStatusFailed means publishing did not happen as planned.
	OutreachStatusFailed OutreachStatus = "FAILED"
)

// ErrOutreachChannelEmpty indicates a missing outreach channel.
var ErrOutreachChannelEmpty = apperrors.New(apperrors.CodeOutreachChannelEmpty, "outreach channel is required")

// ParseOutreachStatus validates a raw outreach status value.
func ParseOutreachStatus(value string) (OutreachStatus, error) {
	switch OutreachStatus(strings.TrimSpace(value)) {
	case OutreachStatusPending:
		return OutreachStatusPending, nil
	case OutreachStatusScheduled:
		return OutreachStatusScheduled, nil
	case OutreachStatusPublished:
		return OutreachStatusPublished, nil
	case OutreachStatusFailed:
		return OutreachStatusFailed, nil
	default:
		return "", ErrSubtaskInvalidStatus
	}
}

// OutreachTask is the publication detail record attached 1:1 to an OUTREACH task.
type OutreachTask struct {
	ID          string
	TaskID      string
	Channel     string
	ContentLink string
	ScheduledAt *time.Time
	Status      OutreachStatus
	OutcomeNote string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateOutreachTaskInput describes the fields needed to create an outreach sub-task.
type CreateOutreachTaskInput struct {
	TaskID      string
	Channel     string
	ContentLink string
	ScheduledAt *time.Time
	OwnerID     string
}

// CreateOutreachTask creates an outreach sub-task in PENDING.
func CreateOutreachTask(input CreateOutreachTaskInput, now func() time.Time, idGenerator func() (string, error)) (OutreachTask, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.TaskID = strings.TrimSpace(input.TaskID)
	input.Channel = strings.TrimSpace(input.Channel)
	input.ContentLink = strings.TrimSpace(input.ContentLink)
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.TaskID == "" {
		return OutreachTask{}, apperrors.New(apperrors.CodeSubtaskTaskIDEmpty, "sub-task task id is required")
	}
	if input.Channel == "" {
		return OutreachTask{}, ErrOutreachChannelEmpty
	}

	subtaskID, err := idGenerator()
	if err != nil {
		return OutreachTask{}, fmt.Errorf("generate outreach task id: %w", err)
	}

	createdAt := now().UTC()
	task := OutreachTask{
		ID:          subtaskID,
		TaskID:      input.TaskID,
		Channel:     input.Channel,
		ContentLink: input.ContentLink,
		Status:      OutreachStatusPending,
		OwnerID:     input.OwnerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if input.ScheduledAt != nil {
		scheduledAt := input.ScheduledAt.UTC()
		task.ScheduledAt = &scheduledAt
	}
	return task, nil
}

// OutreachTaskPatch carries a partial update. Only non-nil fields are applied.
type OutreachTaskPatch struct {
	Channel     *string
	ContentLink *string
	ScheduledAt *time.Time
	Status      *string
	OutcomeNote *string
	OwnerID     *string
}

// ApplyOutreachTaskPatch merges a patch into an existing record. Status
// changes are validated against the publication order.
func ApplyOutreachTaskPatch(existing OutreachTask, patch OutreachTaskPatch, now func() time.Time) (OutreachTask, error) {
	if now == nil {
		now = time.Now
	}

	updated := existing
	if patch.Channel != nil {
		channel := strings.TrimSpace(*patch.Channel)
		if channel == "" {
			return OutreachTask{}, ErrOutreachChannelEmpty
		}
		updated.Channel = channel
	}
	if patch.ContentLink != nil {
		updated.ContentLink = strings.TrimSpace(*patch.ContentLink)
	}
	if patch.ScheduledAt != nil {
		scheduledAt := patch.ScheduledAt.UTC()
		updated.ScheduledAt = &scheduledAt
	}
	if patch.Status != nil {
		target, err := ParseOutreachStatus(*patch.Status)
		if err != nil {
			return OutreachTask{}, err
		}
		if !isOutreachStatusTransitionAllowed(existing.Status, target) {
			return OutreachTask{}, apperrors.WithMetadata(
				apperrors.CodeSubtaskInvalidStatusTransition,
				fmt.Sprintf("outreach status transition not allowed: %s -> %s", existing.Status, target),
				map[string]string{"FromStatus": string(existing.Status), "ToStatus": string(target)},
			)
		}
		updated.Status = target
	}
	if patch.OutcomeNote != nil {
		updated.OutcomeNote = strings.TrimSpace(*patch.OutcomeNote)
	}
	if patch.OwnerID != nil {
		updated.OwnerID = strings.TrimSpace(*patch.OwnerID)
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// isOutreachStatusTransitionAllowed reports whether a publication move is permitted.
func isOutreachStatusTransitionAllowed(from, to OutreachStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case OutreachStatusPending:
		return to == OutreachStatusScheduled || to == OutreachStatusPublished || to == OutreachStatusFailed
	case OutreachStatusScheduled:
		return to == OutreachStatusPending || to == OutreachStatusPublished || to == OutreachStatusFailed
	case OutreachStatusFailed:
		// Failed posts can be rescheduled.
		return to == OutreachStatusPending || to == OutreachStatusScheduled
	default:
		// PUBLISHED is terminal.
		return false
	}
}

// OutreachParentStatus maps an outreach status to a derived parent task
// status, reporting false when no propagation applies.
func OutreachParentStatus(status OutreachStatus) (TaskStatus, bool) {
	switch status {
	case OutreachStatusPublished:
		return TaskStatusDone, true
	case OutreachStatusFailed:
		return TaskStatusBlocked, true
	default:
		return "", false
	}
}
