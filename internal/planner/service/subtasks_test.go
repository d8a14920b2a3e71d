package service

import (
	"context"
	"testing"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/domain"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

func strPtr(value string) *string { return &value }

// seedTask creates an event and one task of the given category, returning the task id.
func seedTask(t *testing.T, svc *Service, category string) string {
	t.Helper()
	ctx := organizerCtx("org-1")
	event, err := svc.CreateEvent(ctx, CreateEventParams{
		Name: "Hack Night",
		Date: time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	task, err := svc.CreateTask(ctx, CreateTaskParams{
		EventID:  event.ID,
		Title:    "Seeded task",
		Category: category,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task.ID
}

func TestCreateGraphicsTaskDefaultsOwner(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "GRAPHICS")

	subtask, err := svc.CreateGraphicsTask(volunteerCtx("vol-1"), CreateGraphicsTaskParams{
		TaskID:    taskID,
		AssetType: "banner",
		Formats:   []string{"png"},
	})
	if err != nil {
		t.Fatalf("create graphics task: %v", err)
	}
	if subtask.OwnerID != "vol-1" {
		t.Fatalf("OwnerID = %q, want requesting identity", subtask.OwnerID)
	}
	if subtask.Status != domain.GraphicsStatusRequested {
		t.Fatalf("Status = %q, want REQUESTED", subtask.Status)
	}
}

func TestCreateGraphicsTaskRejectsCategoryMismatch(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "TECH")

	_, err := svc.CreateGraphicsTask(volunteerCtx("vol-1"), CreateGraphicsTaskParams{
		TaskID:    taskID,
		AssetType: "banner",
		Formats:   []string{"png"},
	})
	if apperrors.CodeOf(err) != apperrors.CodeSubtaskCategoryMismatch {
		t.Fatalf("expected category mismatch, got %v", err)
	}
}

func TestCreateGraphicsTaskEnforcesOnePerParent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "GRAPHICS")
	ctx := volunteerCtx("vol-1")

	if _, err := svc.CreateGraphicsTask(ctx, CreateGraphicsTaskParams{TaskID: taskID, AssetType: "banner", Formats: []string{"png"}}); err != nil {
		t.Fatalf("create graphics task: %v", err)
	}
	_, err := svc.CreateGraphicsTask(ctx, CreateGraphicsTaskParams{TaskID: taskID, AssetType: "poster", Formats: []string{"pdf"}})
	if apperrors.CodeOf(err) != apperrors.CodeAlreadyExists {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestUpdateGraphicsTaskDeliveredCompletesParent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "GRAPHICS")
	ctx := volunteerCtx("vol-1")

	subtask, err := svc.CreateGraphicsTask(ctx, CreateGraphicsTaskParams{TaskID: taskID, AssetType: "banner", Formats: []string{"png"}})
	if err != nil {
		t.Fatalf("create graphics task: %v", err)
	}

	for _, status := range []string{"DESIGNING", "REVIEW", "APPROVED", "DELIVERED"} {
		if _, err := svc.UpdateGraphicsTask(ctx, subtask.ID, GraphicsTaskUpdate{Status: strPtr(status)}); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}

	task, err := svc.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != domain.TaskStatusDone {
		t.Fatalf("parent status = %q, want DONE after delivery", task.Status)
	}
}

func TestUpdateOutreachTaskPartialUpdateLeavesStatus(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "OUTREACH")
	ctx := volunteerCtx("vol-1")

	subtask, err := svc.CreateOutreachTask(ctx, CreateOutreachTaskParams{TaskID: taskID, Channel: "twitter"})
	if err != nil {
		t.Fatalf("create outreach task: %v", err)
	}
	if _, err := svc.UpdateOutreachTask(ctx, subtask.ID, OutreachTaskUpdate{Status: strPtr("SCHEDULED")}); err != nil {
		t.Fatalf("schedule outreach task: %v", err)
	}

	// Note-only update must not disturb status or channel.
	updated, err := svc.UpdateOutreachTask(ctx, subtask.ID, OutreachTaskUpdate{OutcomeNote: strPtr("drafted")})
	if err != nil {
		t.Fatalf("update outcome note: %v", err)
	}
	if updated.Status != domain.OutreachStatusScheduled || updated.Channel != "twitter" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if updated.OutcomeNote != "drafted" {
		t.Fatalf("OutcomeNote = %q, want drafted", updated.OutcomeNote)
	}
}

func TestUpdateOutreachTaskFailedBlocksParent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "OUTREACH")
	ctx := volunteerCtx("vol-1")

	subtask, err := svc.CreateOutreachTask(ctx, CreateOutreachTaskParams{TaskID: taskID, Channel: "twitter"})
	if err != nil {
		t.Fatalf("create outreach task: %v", err)
	}
	if _, err := svc.UpdateOutreachTask(ctx, subtask.ID, OutreachTaskUpdate{Status: strPtr("FAILED")}); err != nil {
		t.Fatalf("fail outreach task: %v", err)
	}

	task, err := svc.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != domain.TaskStatusBlocked {
		t.Fatalf("parent status = %q, want BLOCKED after failure", task.Status)
	}
	if task.BlockedAt == nil {
		t.Fatal("expected BlockedAt stamped by propagation")
	}
}

func TestLogisticsReadyReopensDoneParent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "LOGISTICS")
	ctx := volunteerCtx("vol-1")

	subtask, err := svc.CreateLogisticsTask(ctx, CreateLogisticsTaskParams{TaskID: taskID, Status: "READY"})
	if err != nil {
		t.Fatalf("create logistics task: %v", err)
	}

	// READY on create already propagates DONE.
	task, err := svc.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != domain.TaskStatusDone {
		t.Fatalf("parent status = %q, want DONE", task.Status)
	}

	// A later ISSUE reopens the finished parent.
	if _, err := svc.UpdateLogisticsTask(ctx, subtask.ID, LogisticsTaskUpdate{Status: strPtr("ISSUE")}); err != nil {
		t.Fatalf("flag logistics issue: %v", err)
	}
	task, err = svc.GetTask(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != domain.TaskStatusBlocked {
		t.Fatalf("parent status = %q, want BLOCKED after issue", task.Status)
	}
}

func TestSubtaskMutationsRequireAuthentication(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)
	taskID := seedTask(t, svc, "GRAPHICS")

	_, err := svc.CreateGraphicsTask(context.Background(), CreateGraphicsTaskParams{TaskID: taskID, AssetType: "banner", Formats: []string{"png"}})
	if apperrors.CodeOf(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
