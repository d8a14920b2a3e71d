package httpapi

import (
	"encoding/json"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/service"
)

type eventJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	CreatedBy  string    `json:"createdBy"`
	City       string    `json:"city,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type eventSummaryJSON struct {
	eventJSON
	TaskCount int `json:"taskCount"`
}

type taskJSON struct {
	ID        string     `json:"id"`
	EventID   string     `json:"eventId"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Status    string     `json:"status"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	BlockedAt *time.Time `json:"blockedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type graphicsTaskJSON struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"taskId"`
	AssetType       string    `json:"assetType"`
	Formats         []string  `json:"formats"`
	Status          string    `json:"status"`
	FinalOutputLink string    `json:"finalOutputLink,omitempty"`
	OwnerID         string    `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Task            *taskJSON `json:"task,omitempty"`
}

type logisticsTaskJSON struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Task      *taskJSON `json:"task,omitempty"`
}

type outreachTaskJSON struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	Channel     string     `json:"channel"`
	ContentLink string     `json:"contentLink,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Status      string     `json:"status"`
	OutcomeNote string     `json:"outcomeNote,omitempty"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Task        *taskJSON  `json:"task,omitempty"`
}

type notificationJSON struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	TaskID      string          `json:"taskId,omitempty"`
	EventID     string          `json:"eventId,omitempty"`
	PayloadJSON json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"createdAt"`
	ReadAt      *time.Time      `json:"readAt,omitempty"`
}

type inboxJSON struct {
	Notifications []notificationJSON `json:"notifications"`
	UnreadCount   int                `json:"unreadCount"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

type createEventRequest struct {
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Status string    `json:"status,omitempty"`
}

type updateEventStatusRequest struct {
	Status string `json:"status"`
}

type distributeEventRequest struct {
	Cities []string `json:"cities"`
}

type createTaskRequest struct {
	EventID  string     `json:"eventId"`
	Title    string     `json:"title"`
	Category string     `json:"category"`
	DueAt    *time.Time `json:"dueAt,omitempty"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

type createGraphicsTaskRequest struct {
	TaskID    string   `json:"taskId"`
	AssetType string   `json:"assetType"`
	Formats   []string `json:"formats"`
	OwnerID   string   `json:"ownerId,omitempty"`
}

type updateGraphicsTaskRequest struct {
	ID              string    `json:"id,omitempty"`
	AssetType       *string   `json:"assetType,omitempty"`
	Formats         *[]string `json:"formats,omitempty"`
	Status          *string   `json:"status,omitempty"`
	FinalOutputLink *string   `json:"finalOutputLink,omitempty"`
	OwnerID         *string   `json:"ownerId,omitempty"`
}

type createLogisticsTaskRequest struct {
	TaskID  string `json:"taskId"`
	Status  string `json:"status"`
	OwnerID string `json:"ownerId,omitempty"`
}

type updateLogisticsTaskRequest struct {
	ID      string  `json:"id,omitempty"`
	Status  *string `json:"status,omitempty"`
	OwnerID *string `json:"ownerId,omitempty"`
}

type createOutreachTaskRequest struct {
	TaskID      string     `json:"taskId"`
	Channel     string     `json:"channel"`
	ContentLink string     `json:"contentLink,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	OwnerID     string     `json:"ownerId,omitempty"`
}

type updateOutreachTaskRequest struct {
	ID          string     `json:"id,omitempty"`
	Channel     *string    `json:"channel,omitempty"`
	ContentLink *string    `json:"contentLink,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Status      *string    `json:"status,omitempty"`
	OutcomeNote *string    `json:"outcomeNote,omitempty"`
	OwnerID     *string    `json:"ownerId,omitempty"`
}

type checkReportJSON struct {
	OverdueRaised  int `json:"overdueRaised"`
	BlockedRaised  int `json:"blockedRaised"`
	DeadlineRaised int `json:"deadlineRaised"`
	Skipped        int `json:"skipped"`
}

func toEventJSON(event domain.Event) eventJSON {
	return eventJSON{
		ID:         event.ID,
		Name:       event.Name,
		Date:       event.Date,
		Status:     string(event.Status),
		CreatedBy:  event.CreatedBy,
		City:       event.City,
		TemplateID: event.TemplateID,
		CreatedAt:  event.CreatedAt,
		UpdatedAt:  event.UpdatedAt,
	}
}

func toTaskJSON(task domain.Task) taskJSON {
	return taskJSON{
		ID:        task.ID,
		EventID:   task.EventID,
		Title:     task.Title,
		Category:  string(task.Category),
		Status:    string(task.Status),
		DueAt:     task.DueAt,
		BlockedAt: task.BlockedAt,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

func toGraphicsTaskJSON(subtask domain.GraphicsTask) graphicsTaskJSON {
	return graphicsTaskJSON{
		ID:              subtask.ID,
		TaskID:          subtask.TaskID,
		AssetType:       subtask.AssetType,
		Formats:         subtask.Formats,
		Status:          string(subtask.Status),
		FinalOutputLink: subtask.FinalOutputLink,
		OwnerID:         subtask.OwnerID,
		CreatedAt:       subtask.CreatedAt,
		UpdatedAt:       subtask.UpdatedAt,
	}
}

func toLogisticsTaskJSON(subtask domain.LogisticsTask) logisticsTaskJSON {
	return logisticsTaskJSON{
		ID:        subtask.ID,
		TaskID:    subtask.TaskID,
		Status:    string(subtask.Status),
		OwnerID:   subtask.OwnerID,
		CreatedAt: subtask.CreatedAt,
		UpdatedAt: subtask.UpdatedAt,
	}
}

func toOutreachTaskJSON(subtask domain.OutreachTask) outreachTaskJSON {
	return outreachTaskJSON{
		ID:          subtask.ID,
		TaskID:      subtask.TaskID,
		Channel:     subtask.Channel,
		ContentLink: subtask.ContentLink,
		ScheduledAt: subtask.ScheduledAt,
		Status:      string(subtask.Status),
		OutcomeNote: subtask.OutcomeNote,
		OwnerID:     subtask.OwnerID,
		CreatedAt:   subtask.CreatedAt,
		UpdatedAt:   subtask.UpdatedAt,
	}
}

func toNotificationJSON(notification domain.Notification) notificationJSON {
	return notificationJSON{
		ID:          notification.ID,
		Kind:        string(notification.Kind),
		TaskID:      notification.TaskID,
		EventID:     notification.EventID,
		PayloadJSON: json.RawMessage(notification.PayloadJSON),
		CreatedAt:   notification.CreatedAt,
		ReadAt:      notification.ReadAt,
	}
}

func toInboxJSON(inbox service.Inbox) inboxJSON {
	notifications := make([]notificationJSON, 0, len(inbox.Notifications))
	for _, notification := range inbox.Notifications {
		notifications = append(notifications, toNotificationJSON(notification))
	}
	return inboxJSON{
		Notifications: notifications,
		UnreadCount:   inbox.UnreadCount,
		NextPageToken: inbox.NextPageToken,
	}
}
