package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// NotificationKind identifies the scan condition that produced a notification.
type NotificationKind string

const (
	// NotificationKindOverdue flags a task past its deadline and not DONE.
	NotificationKindOverdue NotificationKind = "task.overdue"
	// NotificationKindBlocked flags a task blocked beyond the threshold.
	NotificationKindBlocked NotificationKind = "task.blocked"
	// NotificationKindDeadline flags a task approaching its deadline.
	NotificationKindDeadline NotificationKind = "task.deadline"
)

var (
	// ErrNotificationRecipientEmpty indicates a missing recipient.
	ErrNotificationRecipientEmpty = apperrors.New(apperrors.CodeNotificationRecipientEmpty, "notification recipient is required")
	// ErrNotificationIDEmpty indicates a missing notification id.
	ErrNotificationIDEmpty = apperrors.New(apperrors.CodeNotificationIDEmpty, "notification id is required")
)

// Notification is one scan-produced alert row, read by the inbox surface.
type Notification struct {
	ID          string
	RecipientID string
	Kind        NotificationKind
	TaskID      string
	EventID     string
	PayloadJSON string
	// DedupeKey uniquely identifies the condition window; the store
	// enforces uniqueness so repeated scans cannot double-notify.
	DedupeKey string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// NewNotificationInput describes one scan-produced alert to persist.
type NewNotificationInput struct {
	RecipientID string
	Kind        NotificationKind
	TaskID      string
	EventID     string
	PayloadJSON string
	DedupeKey   string
}

// NewNotification builds a notification row with a generated ID.
func NewNotification(input NewNotificationInput, now func() time.Time, idGenerator func() (string, error)) (Notification, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.RecipientID = strings.TrimSpace(input.RecipientID)
	if input.RecipientID == "" {
		return Notification{}, ErrNotificationRecipientEmpty
	}

	notificationID, err := idGenerator()
	if err != nil {
		return Notification{}, fmt.Errorf("generate notification id: %w", err)
	}
	payload := strings.TrimSpace(input.PayloadJSON)
	if payload == "" {
		payload = "{}"
	}
	return Notification{
		ID:          notificationID,
		RecipientID: input.RecipientID,
		Kind:        input.Kind,
		TaskID:      strings.TrimSpace(input.TaskID),
		EventID:     strings.TrimSpace(input.EventID),
		PayloadJSON: payload,
		DedupeKey:   strings.TrimSpace(input.DedupeKey),
		CreatedAt:   now().UTC(),
	}, nil
}

// OverdueDedupeKey keys an overdue alert by task and deadline, so a moved
// deadline that lapses again produces a fresh alert.
func OverdueDedupeKey(taskID string, dueAt time.Time) string {
	return fmt.Sprintf("%s:%s:%d", NotificationKindOverdue, taskID, dueAt.UTC().UnixMilli())
}

// BlockedDedupeKey keys a blocked alert by task and the moment blocking began.
func BlockedDedupeKey(taskID string, blockedAt time.Time) string {
	return fmt.Sprintf("%s:%s:%d", NotificationKindBlocked, taskID, blockedAt.UTC().UnixMilli())
}

// DeadlineDedupeKey keys an approaching-deadline alert by task and deadline.
func DeadlineDedupeKey(taskID string, dueAt time.Time) string {
	return fmt.Sprintf("%s:%s:%d", NotificationKindDeadline, taskID, dueAt.UTC().UnixMilli())
}
