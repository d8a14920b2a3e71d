// Package storage defines the persistence records and interfaces used by
// the planner service.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// EventRecord stores one event row.
type EventRecord struct {
	ID         string
	Name       string
	Date       time.Time
	Status     string
	CreatedBy  string
	City       string
	TemplateID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EventWithTaskCount pairs an event row with its task tally for listings.
type EventWithTaskCount struct {
	Event     EventRecord
	TaskCount int
}

// TaskRecord stores one task row.
type TaskRecord struct {
	ID        string
	EventID   string
	Title     string
	Category  string
	Status    string
	DueAt     *time.Time
	BlockedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GraphicsTaskRecord stores one graphics sub-task row.
type GraphicsTaskRecord struct {
	ID              string
	TaskID          string
	AssetType       string
	Formats         []string
	Status          string
	FinalOutputLink string
	OwnerID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LogisticsTaskRecord stores one logistics sub-task row.
type LogisticsTaskRecord struct {
	ID        string
	TaskID    string
	Status    string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutreachTaskRecord stores one outreach sub-task row.
type OutreachTaskRecord struct {
	ID          string
	TaskID      string
	Channel     string
	ContentLink string
	ScheduledAt *time.Time
	Status      string
	OutcomeNote string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotificationRecord stores one inbox notification row.
type NotificationRecord struct {
	ID          string
	RecipientID string
	Kind        string
	TaskID      string
	EventID     string
	PayloadJSON string
	DedupeKey   string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// NotificationPage stores a paged inbox listing result.
type NotificationPage struct {
	Notifications []NotificationRecord
	NextPageToken string
}

// CalendarLinkRecord stores one event-to-external-calendar mapping.
type CalendarLinkRecord struct {
	EventID    string
	Provider   string
	ExternalID string
	SyncedAt   time.Time
}

// EventStore persists event state.
type EventStore interface {
	PutEvent(ctx context.Context, record EventRecord) error
	GetEvent(ctx context.Context, eventID string) (EventRecord, error)
	ListEvents(ctx context.Context) ([]EventWithTaskCount, error)
}

// TaskStore persists task state and serves the deadline scans.
type TaskStore interface {
	PutTask(ctx context.Context, record TaskRecord) error
	GetTask(ctx context.Context, taskID string) (TaskRecord, error)
	ListTasksByEvent(ctx context.Context, eventID string) ([]TaskRecord, error)
	// ListOverdueTasks returns unfinished tasks whose deadline passed before now.
	ListOverdueTasks(ctx context.Context, now time.Time) ([]TaskRecord, error)
	// ListBlockedTasksSince returns tasks blocked at or before the cutoff.
	ListBlockedTasksSince(ctx context.Context, cutoff time.Time) ([]TaskRecord, error)
	// ListTasksDueBetween returns unfinished tasks due inside the window.
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]TaskRecord, error)
}

// GraphicsTaskStore persists graphics sub-task state.
type GraphicsTaskStore interface {
	PutGraphicsTask(ctx context.Context, record GraphicsTaskRecord) error
	GetGraphicsTask(ctx context.Context, subtaskID string) (GraphicsTaskRecord, error)
	GetGraphicsTaskByTaskID(ctx context.Context, taskID string) (GraphicsTaskRecord, error)
}

// LogisticsTaskStore persists logistics sub-task state.
type LogisticsTaskStore interface {
	PutLogisticsTask(ctx context.Context, record LogisticsTaskRecord) error
	GetLogisticsTask(ctx context.Context, subtaskID string) (LogisticsTaskRecord, error)
	GetLogisticsTaskByTaskID(ctx context.Context, taskID string) (LogisticsTaskRecord, error)
}

// OutreachTaskStore persists outreach sub-task state.
type OutreachTaskStore interface {
	PutOutreachTask(ctx context.Context, record OutreachTaskRecord) error
	GetOutreachTask(ctx context.Context, subtaskID string) (OutreachTaskRecord, error)
	GetOutreachTaskByTaskID(ctx context.Context, taskID string) (OutreachTaskRecord, error)
}

// NotificationStore persists notification inbox state. PutNotification
// returns ErrConflict when the dedupe key already exists for the recipient.
type NotificationStore interface {
	PutNotification(ctx context.Context, record NotificationRecord) error
	ListNotificationsByRecipient(ctx context.Context, recipientID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotificationsByRecipient(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientID string, notificationID string, readAt time.Time) (NotificationRecord, error)
}

// CalendarLinkStore persists external calendar sync state.
type CalendarLinkStore interface {
	PutCalendarLink(ctx context.Context, record CalendarLinkRecord) error
	GetCalendarLink(ctx context.Context, eventID string, provider string) (CalendarLinkRecord, error)
}

// Store aggregates every planner persistence surface.
type Store interface {
	EventStore
	TaskStore
	GraphicsTaskStore
	LogisticsTaskStore
	OutreachTaskStore
	NotificationStore
	CalendarLinkStore
}
