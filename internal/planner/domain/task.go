package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// TaskCategory groups tasks by the kind of work they track.
type TaskCategory string

const (
	// TaskCategoryEventSetup covers venue and on-site preparation work.
	TaskCategoryEventSetup TaskCategory = "EVENT_SETUP"
	// TaskCategorySponsorship covers sponsor acquisition and follow-up.
	TaskCategorySponsorship TaskCategory = "SPONSORSHIP"
	// TaskCategoryTech covers technical infrastructure work.
	TaskCategoryTech TaskCategory = "TECH"
	// TaskCategoryLogistics covers supply and transport work.
	TaskCategoryLogistics TaskCategory = "LOGISTICS"
	// TaskCategoryGraphics covers design asset work.
	TaskCategoryGraphics TaskCategory = "GRAPHICS"
	// TaskCategoryOutreach covers announcements and social channels.
	TaskCategoryOutreach TaskCategory = "OUTREACH"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	// TaskStatusPending is the initial state of a created task.
	TaskStatusPending TaskStatus = "PENDING"
	// TaskStatusInProgress means work on the task has started.
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	// TaskStatusBlocked means the task cannot proceed.
	TaskStatusBlocked TaskStatus = "BLOCKED"
	// TaskStatusDone is terminal.
	TaskStatusDone TaskStatus = "DONE"
)

var (
	// ErrTaskEventIDEmpty indicates a missing owning event id.
	ErrTaskEventIDEmpty = apperrors.New(apperrors.CodeTaskEventIDEmpty, "task event id is required")
	// ErrTaskTitleEmpty indicates a missing task title.
	ErrTaskTitleEmpty = apperrors.New(apperrors.CodeTaskTitleEmpty, "task title is required")
	// ErrTaskInvalidCategory indicates an unrecognized task category.
	ErrTaskInvalidCategory = apperrors.New(apperrors.CodeTaskInvalidCategory, "task category is not recognized")
	// ErrTaskInvalidStatus indicates an unrecognized task status value.
	ErrTaskInvalidStatus = apperrors.New(apperrors.CodeTaskInvalidStatus, "task status is not recognized")
)

// ParseTaskCategory validates a raw task category value.
func ParseTaskCategory(value string) (TaskCategory, error) {
	switch TaskCategory(strings.TrimSpace(value)) {
	case TaskCategoryEventSetup:
		return TaskCategoryEventSetup, nil
	case TaskCategorySponsorship:
		return TaskCategorySponsorship, nil
	case TaskCategoryTech:
		return TaskCategoryTech, nil
	case TaskCategoryLogistics:
		return TaskCategoryLogistics, nil
	case TaskCategoryGraphics:
		return TaskCategoryGraphics, nil
	case TaskCategoryOutreach:
		return TaskCategoryOutreach, nil
	default:
		return "", ErrTaskInvalidCategory
	}
}

// ParseTaskStatus validates a raw task status value.
func ParseTaskStatus(value string) (TaskStatus, error) {
	switch TaskStatus(strings.TrimSpace(value)) {
	case TaskStatusPending:
		return TaskStatusPending, nil
	case TaskStatusInProgress:
		return TaskStatusInProgress, nil
	case TaskStatusBlocked:
		return TaskStatusBlocked, nil
	case TaskStatusDone:
		return TaskStatusDone, nil
	default:
		return "", ErrTaskInvalidStatus
	}
}

// Task represents one unit of event work, optionally carrying a deadline.
type Task struct {
	ID       string
	EventID  string
	Title    string
	Category TaskCategory
	Status   TaskStatus
	// DueAt is the optional deadline driving the notification scans.
	DueAt *time.Time
	// BlockedAt records when the task entered BLOCKED; cleared on leaving.
	BlockedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateTaskInput describes the metadata needed to create a task.
type CreateTaskInput struct {
	EventID  string
	Title    string
	Category TaskCategory
	DueAt    *time.Time
}

// CreateTask creates a new task in PENDING with a generated ID and timestamps.
func CreateTask(input CreateTaskInput, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.EventID = strings.TrimSpace(input.EventID)
	input.Title = strings.TrimSpace(input.Title)
	if input.EventID == "" {
		return Task{}, ErrTaskEventIDEmpty
	}
	if input.Title == "" {
		return Task{}, ErrTaskTitleEmpty
	}
	category, err := ParseTaskCategory(string(input.Category))
	if err != nil {
		return Task{}, err
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	createdAt := now().UTC()
	task := Task{
		ID:        taskID,
		EventID:   input.EventID,
		Title:     input.Title,
		Category:  category,
		Status:    TaskStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if input.DueAt != nil {
		dueAt := input.DueAt.UTC()
		task.DueAt = &dueAt
	}
	return task, nil
}

// TransitionTaskStatus applies a status transition, stamping BlockedAt when
// the task enters BLOCKED and clearing it when the task leaves.
func TransitionTaskStatus(task Task, target TaskStatus, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if _, err := ParseTaskStatus(string(target)); err != nil {
		return Task{}, err
	}
	if !isTaskStatusTransitionAllowed(task.Status, target) {
		return Task{}, apperrors.WithMetadata(
			apperrors.CodeTaskInvalidStatusTransition,
			fmt.Sprintf("task status transition not allowed: %s -> %s", task.Status, target),
			map[string]string{"FromStatus": string(task.Status), "ToStatus": string(target)},
		)
	}
	return applyTaskStatus(task, target, now), nil
}

// isTaskStatusTransitionAllowed reports whether a status transition is
// permitted. Work must pass through IN_PROGRESS before finishing; DONE is
// terminal for direct transitions.
func isTaskStatusTransitionAllowed(from, to TaskStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case TaskStatusPending:
		return to == TaskStatusInProgress || to == TaskStatusBlocked
	case TaskStatusInProgress:
		return to == TaskStatusBlocked || to == TaskStatusDone || to == TaskStatusPending
	case TaskStatusBlocked:
		return to == TaskStatusPending || to == TaskStatusInProgress
	default:
		return false
	}
}

// PropagateTaskStatus forces a task status derived from a sub-record
// transition. Unlike TransitionTaskStatus it may reopen a DONE task, since
// a sub-record reporting ISSUE or FAILED supersedes an earlier completion.
func PropagateTaskStatus(task Task, target TaskStatus, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if _, err := ParseTaskStatus(string(target)); err != nil {
		return Task{}, err
	}
	if task.Status == target {
		return task, nil
	}
	return applyTaskStatus(task, target, now), nil
}

func applyTaskStatus(task Task, target TaskStatus, now func() time.Time) Task {
	updated := task
	updated.Status = target
	updatedAt := now().UTC()
	updated.UpdatedAt = updatedAt
	if target == TaskStatusBlocked {
		if updated.BlockedAt == nil {
			updated.BlockedAt = &updatedAt
		}
	} else {
		updated.BlockedAt = nil
	}
	return updated
}
