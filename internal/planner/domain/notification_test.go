package domain

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestNewNotificationDefaultsPayload(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	notification, err := NewNotification(NewNotificationInput{
		RecipientID: "user-1",
		Kind:        NotificationKindOverdue,
		TaskID:      "task-1",
		EventID:     "evt-1",
		DedupeKey:   "task.overdue:task-1:1",
	}, fixedClock(now), staticID("ntf-1"))
	if err != nil {
		t.Fatalf("new notification: %v", err)
	}
	if notification.PayloadJSON != "{}" {
		t.Fatalf("PayloadJSON = %q, want empty object", notification.PayloadJSON)
	}
	if !notification.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", notification.CreatedAt, now)
	}
	if notification.ReadAt != nil {
		t.Fatal("expected unread notification")
	}
}

func TestNewNotificationRequiresRecipient(t *testing.T) {
	t.Parallel()

	_, err := NewNotification(NewNotificationInput{Kind: NotificationKindBlocked}, nil, nil)
	if !errors.Is(err, ErrNotificationRecipientEmpty) {
		t.Fatalf("expected recipient required error, got %v", err)
	}
}

func TestDedupeKeysEncodeConditionWindow(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	millis := at.UnixMilli()

	suffix := strconv.FormatInt(millis, 10)
	if got, want := OverdueDedupeKey("task-1", at), "task.overdue:task-1:"+suffix; got != want {
		t.Fatalf("overdue key = %q, want %q", got, want)
	}
	if got, want := BlockedDedupeKey("task-1", at), "task.blocked:task-1:"+suffix; got != want {
		t.Fatalf("blocked key = %q, want %q", got, want)
	}
	if got, want := DeadlineDedupeKey("task-1", at), "task.deadline:task-1:"+suffix; got != want {
		t.Fatalf("deadline key = %q, want %q", got, want)
	}

	// Moving the deadline changes the window and yields a fresh key.
	if OverdueDedupeKey("task-1", at.Add(time.Hour)) == OverdueDedupeKey("task-1", at) {
		t.Fatal("expected a new key after the deadline moved")
	}
}
