package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagehandhq/stagehand/internal/auth/guard"
	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

const defaultInboxPageSize = 20

// Inbox is one page of a recipient's notifications with the unread tally.
type Inbox struct {
	Notifications []domain.Notification
	UnreadCount   int
	NextPageToken string
}

// ListNotifications returns the requesting identity's inbox newest-first.
func (s *Service) ListNotifications(ctx context.Context, pageSize int, pageToken string) (Inbox, error) {
	identity, err := guard.Authenticate(ctx)
	if err != nil {
		return Inbox{}, err
	}
	if pageSize <= 0 {
		pageSize = defaultInboxPageSize
	}

	page, err := s.store.ListNotificationsByRecipient(ctx, identity.UserID, pageSize, pageToken)
	if err != nil {
		return Inbox{}, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnreadNotificationsByRecipient(ctx, identity.UserID)
	if err != nil {
		return Inbox{}, fmt.Errorf("count unread notifications: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(page.Notifications))
	for _, record := range page.Notifications {
		notifications = append(notifications, notificationFromRecord(record))
	}
	return Inbox{
		Notifications: notifications,
		UnreadCount:   unread,
		NextPageToken: page.NextPageToken,
	}, nil
}

// MarkNotificationRead marks one of the requesting identity's notifications
// as read. Another recipient's notification reads as missing.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID string) (domain.Notification, error) {
	identity, err := guard.Authenticate(ctx)
	if err != nil {
		return domain.Notification{}, err
	}
	if notificationID == "" {
		return domain.Notification{}, domain.ErrNotificationIDEmpty
	}

	record, err := s.store.MarkNotificationRead(ctx, identity.UserID, notificationID, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Notification{}, apperrors.New(apperrors.CodeNotFound, "notification not found")
		}
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return notificationFromRecord(record), nil
}
