package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// CheckReport tallies the notifications raised by one scan run.
type CheckReport struct {
	OverdueRaised  int
	BlockedRaised  int
	DeadlineRaised int
	Skipped        int
}

// RunChecks scans tasks for overdue deadlines, long-blocked work, and
// approaching deadlines, raising one notification per condition window.
// It performs no role check: the trigger is a trusted scheduler, not an
// end user. The scan is safe to re-run because the dedupe key makes
// repeated inserts conflict and count as skipped.
func (s *Service) RunChecks(ctx context.Context) (CheckReport, error) {
	now := s.now().UTC()
	var report CheckReport

	overdue, err := s.store.ListOverdueTasks(ctx, now)
	if err != nil {
		return CheckReport{}, fmt.Errorf("scan overdue tasks: %w", err)
	}
	for _, task := range overdue {
		if task.DueAt == nil {
			continue
		}
		raised, err := s.raiseNotification(ctx, task, domain.NotificationKindOverdue, domain.OverdueDedupeKey(task.ID, *task.DueAt))
		if err != nil {
			return CheckReport{}, err
		}
		if raised {
			report.OverdueRaised++
		} else {
			report.Skipped++
		}
	}

	blocked, err := s.store.ListBlockedTasksSince(ctx, now.Add(-s.blockedThreshold))
	if err != nil {
		return CheckReport{}, fmt.Errorf("scan blocked tasks: %w", err)
	}
	for _, task := range blocked {
		if task.BlockedAt == nil {
			continue
		}
		raised, err := s.raiseNotification(ctx, task, domain.NotificationKindBlocked, domain.BlockedDedupeKey(task.ID, *task.BlockedAt))
		if err != nil {
			return CheckReport{}, err
		}
		if raised {
			report.BlockedRaised++
		} else {
			report.Skipped++
		}
	}

	approaching, err := s.store.ListTasksDueBetween(ctx, now, now.Add(s.deadlineLookahead))
	if err != nil {
		return CheckReport{}, fmt.Errorf("scan approaching deadlines: %w", err)
	}
	for _, task := range approaching {
		if task.DueAt == nil {
			continue
		}
		raised, err := s.raiseNotification(ctx, task, domain.NotificationKindDeadline, domain.DeadlineDedupeKey(task.ID, *task.DueAt))
		if err != nil {
			return CheckReport{}, err
		}
		if raised {
			report.DeadlineRaised++
		} else {
			report.Skipped++
		}
	}

	return report, nil
}

// raiseNotification inserts one scan alert, reporting false when the
// dedupe key already fired for this recipient.
func (s *Service) raiseNotification(ctx context.Context, task storage.TaskRecord, kind domain.NotificationKind, dedupeKey string) (bool, error) {
	recipient, err := s.notificationRecipient(ctx, task)
	if err != nil {
		return false, err
	}
	if recipient == "" {
		return false, nil
	}

	notification, err := domain.NewNotification(domain.NewNotificationInput{
		RecipientID: recipient,
		Kind:        kind,
		TaskID:      task.ID,
		EventID:     task.EventID,
		PayloadJSON: fmt.Sprintf(`{"taskTitle":%q,"taskStatus":%q}`, task.Title, task.Status),
		DedupeKey:   dedupeKey,
	}, s.now, s.newID)
	if err != nil {
		return false, err
	}

	if err := s.store.PutNotification(ctx, notificationRecord(notification)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("persist notification: %w", err)
	}
	return true, nil
}

// notificationRecipient picks who gets the alert: the sub-record owner
// when one exists, otherwise the event creator.
func (s *Service) notificationRecipient(ctx context.Context, task storage.TaskRecord) (string, error) {
	owner, err := s.subtaskOwner(ctx, task)
	if err != nil {
		return "", err
	}
	if owner != "" {
		return owner, nil
	}

	event, err := s.store.GetEvent(ctx, task.EventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load event for notification: %w", err)
	}
	return event.CreatedBy, nil
}

func (s *Service) subtaskOwner(ctx context.Context, task storage.TaskRecord) (string, error) {
	switch domain.TaskCategory(task.Category) {
	case domain.TaskCategoryGraphics:
		record, err := s.store.GetGraphicsTaskByTaskID(ctx, task.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", nil
			}
			return "", fmt.Errorf("load graphics owner: %w", err)
		}
		return record.OwnerID, nil
	case domain.TaskCategoryLogistics:
		record, err := s.store.GetLogisticsTaskByTaskID(ctx, task.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", nil
			}
			return "", fmt.Errorf("load logistics owner: %w", err)
		}
		return record.OwnerID, nil
	case domain.TaskCategoryOutreach:
		record, err := s.store.GetOutreachTaskByTaskID(ctx, task.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", nil
			}
			return "", fmt.Errorf("load outreach owner: %w", err)
		}
		return record.OwnerID, nil
	default:
		return "", nil
	}
}
