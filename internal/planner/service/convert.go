package service

import (
	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

func eventRecord(event domain.Event) storage.EventRecord {
	return storage.EventRecord{
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

func eventFromRecord(record storage.EventRecord) domain.Event {
	return domain.Event{
		ID:         record.ID,
		Name:       record.Name,
		Date:       record.Date,
		Status:     domain.EventStatus(record.Status),
		CreatedBy:  record.CreatedBy,
		City:       record.City,
		TemplateID: record.TemplateID,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func taskRecord(task domain.Task) storage.TaskRecord {
	return storage.TaskRecord{
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

func taskFromRecord(record storage.TaskRecord) domain.Task {
	return domain.Task{
		ID:        record.ID,
		EventID:   record.EventID,
		Title:     record.Title,
		Category:  domain.TaskCategory(record.Category),
		Status:    domain.TaskStatus(record.Status),
		DueAt:     record.DueAt,
		BlockedAt: record.BlockedAt,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func graphicsRecord(subtask domain.GraphicsTask) storage.GraphicsTaskRecord {
	return storage.GraphicsTaskRecord{
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

func graphicsFromRecord(record storage.GraphicsTaskRecord) domain.GraphicsTask {
	return domain.GraphicsTask{
		ID:              record.ID,
		TaskID:          record.TaskID,
		AssetType:       record.AssetType,
		Formats:         record.Formats,
		Status:          domain.GraphicsStatus(record.Status),
		FinalOutputLink: record.FinalOutputLink,
		OwnerID:         record.OwnerID,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func logisticsRecord(subtask domain.LogisticsTask) storage.LogisticsTaskRecord {
	return storage.LogisticsTaskRecord{
		ID:        subtask.ID,
		TaskID:    subtask.TaskID,
		Status:    string(subtask.Status),
		OwnerID:   subtask.OwnerID,
		CreatedAt: subtask.CreatedAt,
		UpdatedAt: subtask.UpdatedAt,
	}
}

func logisticsFromRecord(record storage.LogisticsTaskRecord) domain.LogisticsTask {
	return domain.LogisticsTask{
		ID:        record.ID,
		TaskID:    record.TaskID,
		Status:    domain.LogisticsStatus(record.Status),
		OwnerID:   record.OwnerID,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func outreachRecord(subtask domain.OutreachTask) storage.OutreachTaskRecord {
	return storage.OutreachTaskRecord{
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

func outreachFromRecord(record storage.OutreachTaskRecord) domain.OutreachTask {
	return domain.OutreachTask{
		ID:          record.ID,
		TaskID:      record.TaskID,
		Channel:     record.Channel,
		ContentLink: record.ContentLink,
		ScheduledAt: record.ScheduledAt,
		Status:      domain.OutreachStatus(record.Status),
		OutcomeNote: record.OutcomeNote,
		OwnerID:     record.OwnerID,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func notificationRecord(notification domain.Notification) storage.NotificationRecord {
	return storage.NotificationRecord{
		ID:          notification.ID,
		RecipientID: notification.RecipientID,
		Kind:        string(notification.Kind),
		TaskID:      notification.TaskID,
		EventID:     notification.EventID,
		PayloadJSON: notification.PayloadJSON,
		DedupeKey:   notification.DedupeKey,
		CreatedAt:   notification.CreatedAt,
		ReadAt:      notification.ReadAt,
	}
}

func notificationFromRecord(record storage.NotificationRecord) domain.Notification {
	return domain.Notification{
		ID:          record.ID,
		RecipientID: record.RecipientID,
		Kind:        domain.NotificationKind(record.Kind),
		TaskID:      record.TaskID,
		EventID:     record.EventID,
		PayloadJSON: record.PayloadJSON,
		DedupeKey:   record.DedupeKey,
		CreatedAt:   record.CreatedAt,
		ReadAt:      record.ReadAt,
	}
}
