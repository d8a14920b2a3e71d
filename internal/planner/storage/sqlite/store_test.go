package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testEvent(id string, at time.Time) storage.EventRecord {
	return storage.EventRecord{
		ID:        id,
		Name:      "Hack Night",
		Date:      at.Add(30 * 24 * time.Hour),
		Status:    "PLANNING",
		CreatedBy: "org-1",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func testTask(id, eventID string, at time.Time) storage.TaskRecord {
	return storage.TaskRecord{
		ID:        id,
		EventID:   eventID,
		Title:     "Order banners",
		Category:  "GRAPHICS",
		Status:    "PENDING",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	event := testEvent("evt-1", at)
	if err := store.PutEvent(ctx, event); err != nil {
		t.Fatalf("put event: %v", err)
	}

	got, err := store.GetEvent(ctx, "evt-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Name != event.Name || got.Status != event.Status {
		t.Fatalf("got %+v, want %+v", got, event)
	}
	if !got.CreatedAt.Equal(at) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}

	if _, err := store.GetEvent(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEventsIncludesTaskCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutEvent(ctx, testEvent("evt-1", at)); err != nil {
		t.Fatalf("put event: %v", err)
	}
	if err := store.PutEvent(ctx, testEvent("evt-2", at.Add(time.Hour))); err != nil {
		t.Fatalf("put event: %v", err)
	}
	if err := store.PutTask(ctx, testTask("task-1", "evt-1", at)); err != nil {
		t.Fatalf("put task: %v", err)
	}
	if err := store.PutTask(ctx, testTask("task-2", "evt-1", at)); err != nil {
		t.Fatalf("put task: %v", err)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	// Earliest date first.
	if events[0].Event.ID != "evt-1" || events[0].TaskCount != 2 {
		t.Fatalf("first entry = %+v", events[0])
	}
	if events[1].Event.ID != "evt-2" || events[1].TaskCount != 0 {
		t.Fatalf("second entry = %+v", events[1])
	}
}

func TestTaskScanQueries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	if err := store.PutEvent(ctx, testEvent("evt-1", now.Add(-48*time.Hour))); err != nil {
		t.Fatalf("put event: %v", err)
	}

	overdueAt := now.Add(-2 * time.Hour)
	overdue := testTask("task-overdue", "evt-1", now.Add(-24*time.Hour))
	overdue.DueAt = &overdueAt

	doneDueAt := now.Add(-3 * time.Hour)
	done := testTask("task-done", "evt-1", now.Add(-24*time.Hour))
	done.Status = "DONE"
	done.DueAt = &doneDueAt

	blockedAt := now.Add(-30 * time.Hour)
	blocked := testTask("task-blocked", "evt-1", now.Add(-48*time.Hour))
	blocked.Status = "BLOCKED"
	blocked.BlockedAt = &blockedAt

	upcomingAt := now.Add(24 * time.Hour)
	upcoming := testTask("task-upcoming", "evt-1", now.Add(-24*time.Hour))
	upcoming.DueAt = &upcomingAt

	for _, task := range []storage.TaskRecord{overdue, done, blocked, upcoming} {
		if err := store.PutTask(ctx, task); err != nil {
			t.Fatalf("put task %s: %v", task.ID, err)
		}
	}

	overdueTasks, err := store.ListOverdueTasks(ctx, now)
	if err != nil {
		t.Fatalf("list overdue tasks: %v", err)
	}
	if len(overdueTasks) != 1 || overdueTasks[0].ID != "task-overdue" {
		t.Fatalf("overdue tasks = %+v", overdueTasks)
	}

	blockedTasks, err := store.ListBlockedTasksSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("list blocked tasks: %v", err)
	}
	if len(blockedTasks) != 1 || blockedTasks[0].ID != "task-blocked" {
		t.Fatalf("blocked tasks = %+v", blockedTasks)
	}

	dueSoon, err := store.ListTasksDueBetween(ctx, now, now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("list tasks due between: %v", err)
	}
	if len(dueSoon) != 1 || dueSoon[0].ID != "task-upcoming" {
		t.Fatalf("due soon tasks = %+v", dueSoon)
	}
}

func TestGraphicsTaskOnePerParent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutEvent(ctx, testEvent("evt-1", at)); err != nil {
		t.Fatalf("put event: %v", err)
	}
	if err := store.PutTask(ctx, testTask("task-1", "evt-1", at)); err != nil {
		t.Fatalf("put task: %v", err)
	}

	first := storage.GraphicsTaskRecord{
		ID:        "gfx-1",
		TaskID:    "task-1",
		AssetType: "banner",
		Formats:   []string{"png", "svg"},
		Status:    "REQUESTED",
		OwnerID:   "user-1",
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := store.PutGraphicsTask(ctx, first); err != nil {
		t.Fatalf("put graphics task: %v", err)
	}

	// A second sub-task on the same parent violates the 1:1 constraint.
	second := first
	second.ID = "gfx-2"
	if err := store.PutGraphicsTask(ctx, second); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Updating the existing row stays allowed.
	first.Status = "DESIGNING"
	first.UpdatedAt = at.Add(time.Hour)
	if err := store.PutGraphicsTask(ctx, first); err != nil {
		t.Fatalf("update graphics task: %v", err)
	}

	got, err := store.GetGraphicsTaskByTaskID(ctx, "task-1")
	if err != nil {
		t.Fatalf("get graphics task by parent: %v", err)
	}
	if got.Status != "DESIGNING" {
		t.Fatalf("Status = %q, want DESIGNING", got.Status)
	}
	if len(got.Formats) != 2 || got.Formats[0] != "png" {
		t.Fatalf("Formats = %v", got.Formats)
	}
}

func TestOutreachTaskRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutEvent(ctx, testEvent("evt-1", at)); err != nil {
		t.Fatalf("put event: %v", err)
	}
	task := testTask("task-1", "evt-1", at)
	task.Category = "OUTREACH"
	if err := store.PutTask(ctx, task); err != nil {
		t.Fatalf("put task: %v", err)
	}

	scheduledAt := at.Add(48 * time.Hour)
	record := storage.OutreachTaskRecord{
		ID:          "out-1",
		TaskID:      "task-1",
		Channel:     "twitter",
		ScheduledAt: &scheduledAt,
		Status:      "SCHEDULED",
		OwnerID:     "user-1",
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if err := store.PutOutreachTask(ctx, record); err != nil {
		t.Fatalf("put outreach task: %v", err)
	}

	got, err := store.GetOutreachTask(ctx, "out-1")
	if err != nil {
		t.Fatalf("get outreach task: %v", err)
	}
	if got.ScheduledAt == nil || !got.ScheduledAt.Equal(scheduledAt) {
		t.Fatalf("ScheduledAt = %v, want %v", got.ScheduledAt, scheduledAt)
	}
}

func TestNotificationDedupe(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	record := storage.NotificationRecord{
		ID:          "ntf-1",
		RecipientID: "user-1",
		Kind:        "task.overdue",
		TaskID:      "task-1",
		DedupeKey:   "task.overdue:task-1:1",
		CreatedAt:   at,
	}
	if err := store.PutNotification(ctx, record); err != nil {
		t.Fatalf("put notification: %v", err)
	}

	duplicate := record
	duplicate.ID = "ntf-2"
	if err := store.PutNotification(ctx, duplicate); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict for repeated dedupe key, got %v", err)
	}

	// The same key is fine for a different recipient.
	other := record
	other.ID = "ntf-3"
	other.RecipientID = "user-2"
	if err := store.PutNotification(ctx, other); err != nil {
		t.Fatalf("put notification for other recipient: %v", err)
	}
}

func TestNotificationInboxPaging(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	ids := []string{"ntf-1", "ntf-2", "ntf-3"}
	for i, id := range ids {
		record := storage.NotificationRecord{
			ID:          id,
			RecipientID: "user-1",
			Kind:        "task.deadline",
			TaskID:      "task-1",
			DedupeKey:   "task.deadline:task-1:" + id,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutNotification(ctx, record); err != nil {
			t.Fatalf("put notification %s: %v", id, err)
		}
	}

	page, err := store.ListNotificationsByRecipient(ctx, "user-1", 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page.Notifications) != 2 || page.Notifications[0].ID != "ntf-3" {
		t.Fatalf("first page = %+v", page)
	}
	if page.NextPageToken == "" {
		t.Fatal("expected a next page token")
	}

	rest, err := store.ListNotificationsByRecipient(ctx, "user-1", 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Notifications) != 1 || rest.Notifications[0].ID != "ntf-1" {
		t.Fatalf("second page = %+v", rest)
	}
	if rest.NextPageToken != "" {
		t.Fatalf("expected empty next page token, got %q", rest.NextPageToken)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	record := storage.NotificationRecord{
		ID:          "ntf-1",
		RecipientID: "user-1",
		Kind:        "task.blocked",
		TaskID:      "task-1",
		DedupeKey:   "task.blocked:task-1:1",
		CreatedAt:   at,
	}
	if err := store.PutNotification(ctx, record); err != nil {
		t.Fatalf("put notification: %v", err)
	}

	unread, err := store.CountUnreadNotificationsByRecipient(ctx, "user-1")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}

	readAt := at.Add(time.Hour)
	marked, err := store.MarkNotificationRead(ctx, "user-1", "ntf-1", readAt)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked.ReadAt == nil || !marked.ReadAt.Equal(readAt) {
		t.Fatalf("ReadAt = %v, want %v", marked.ReadAt, readAt)
	}

	if _, err := store.MarkNotificationRead(ctx, "user-2", "ntf-1", readAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong recipient, got %v", err)
	}
}

func TestCalendarLinkRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutEvent(ctx, testEvent("evt-1", at)); err != nil {
		t.Fatalf("put event: %v", err)
	}

	link := storage.CalendarLinkRecord{
		EventID:    "evt-1",
		Provider:   "google",
		ExternalID: "gcal-123",
		SyncedAt:   at,
	}
	if err := store.PutCalendarLink(ctx, link); err != nil {
		t.Fatalf("put calendar link: %v", err)
	}

	// Re-sync updates the mapping in place.
	link.ExternalID = "gcal-456"
	link.SyncedAt = at.Add(time.Hour)
	if err := store.PutCalendarLink(ctx, link); err != nil {
		t.Fatalf("update calendar link: %v", err)
	}

	got, err := store.GetCalendarLink(ctx, "evt-1", "google")
	if err != nil {
		t.Fatalf("get calendar link: %v", err)
	}
	if got.ExternalID != "gcal-456" {
		t.Fatalf("ExternalID = %q, want gcal-456", got.ExternalID)
	}

	if _, err := store.GetCalendarLink(ctx, "evt-1", "caldav"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
