package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// fakeStore is an in-memory storage.Store for service tests.
type fakeStore struct {
	mu            sync.Mutex
	events        map[string]storage.EventRecord
	tasks         map[string]storage.TaskRecord
	graphics      map[string]storage.GraphicsTaskRecord
	logistics     map[string]storage.LogisticsTaskRecord
	outreach      map[string]storage.OutreachTaskRecord
	notifications map[string]storage.NotificationRecord
	calendarLinks map[string]storage.CalendarLinkRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:        make(map[string]storage.EventRecord),
		tasks:         make(map[string]storage.TaskRecord),
		graphics:      make(map[string]storage.GraphicsTaskRecord),
		logistics:     make(map[string]storage.LogisticsTaskRecord),
		outreach:      make(map[string]storage.OutreachTaskRecord),
		notifications: make(map[string]storage.NotificationRecord),
		calendarLinks: make(map[string]storage.CalendarLinkRecord),
	}
}

func (f *fakeStore) PutEvent(_ context.Context, record storage.EventRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[record.ID] = record
	return nil
}

func (f *fakeStore) GetEvent(_ context.Context, eventID string) (storage.EventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.events[eventID]
	if !ok {
		return storage.EventRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) ListEvents(_ context.Context) ([]storage.EventWithTaskCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make([]storage.EventWithTaskCount, 0, len(f.events))
	for _, event := range f.events {
		count := 0
		for _, task := range f.tasks {
			if task.EventID == event.ID {
				count++
			}
		}
		results = append(results, storage.EventWithTaskCount{Event: event, TaskCount: count})
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].Event.Date.Equal(results[j].Event.Date) {
			return results[i].Event.Date.Before(results[j].Event.Date)
		}
		return results[i].Event.ID < results[j].Event.ID
	})
	return results, nil
}

func (f *fakeStore) PutTask(_ context.Context, record storage.TaskRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[record.ID] = record
	return nil
}

func (f *fakeStore) GetTask(_ context.Context, taskID string) (storage.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.tasks[taskID]
	if !ok {
		return storage.TaskRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) ListTasksByEvent(_ context.Context, eventID string) ([]storage.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []storage.TaskRecord
	for _, task := range f.tasks {
		if task.EventID == eventID {
			results = append(results, task)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (f *fakeStore) ListOverdueTasks(_ context.Context, now time.Time) ([]storage.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []storage.TaskRecord
	for _, task := range f.tasks {
		if task.Status != "DONE" && task.DueAt != nil && task.DueAt.Before(now) {
			results = append(results, task)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (f *fakeStore) ListBlockedTasksSince(_ context.Context, cutoff time.Time) ([]storage.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []storage.TaskRecord
	for _, task := range f.tasks {
		if task.Status == "BLOCKED" && task.BlockedAt != nil && !task.BlockedAt.After(cutoff) {
			results = append(results, task)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (f *fakeStore) ListTasksDueBetween(_ context.Context, from, to time.Time) ([]storage.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []storage.TaskRecord
	for _, task := range f.tasks {
		if task.Status == "DONE" || task.DueAt == nil {
			continue
		}
		if !task.DueAt.Before(from) && !task.DueAt.After(to) {
			results = append(results, task)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (f *fakeStore) PutGraphicsTask(_ context.Context, record storage.GraphicsTaskRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.graphics {
		if existing.TaskID == record.TaskID && existing.ID != record.ID {
			return storage.ErrConflict
		}
	}
	f.graphics[record.ID] = record
	return nil
}

func (f *fakeStore) GetGraphicsTask(_ context.Context, subtaskID string) (storage.GraphicsTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.graphics[subtaskID]
	if !ok {
		return storage.GraphicsTaskRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) GetGraphicsTaskByTaskID(_ context.Context, taskID string) (storage.GraphicsTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.graphics {
		if record.TaskID == taskID {
			return record, nil
		}
	}
	return storage.GraphicsTaskRecord{}, storage.ErrNotFound
}

func (f *fakeStore) PutLogisticsTask(_ context.Context, record storage.LogisticsTaskRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.logistics {
		if existing.TaskID == record.TaskID && existing.ID != record.ID {
			return storage.ErrConflict
		}
	}
	f.logistics[record.ID] = record
	return nil
}

func (f *fakeStore) GetLogisticsTask(_ context.Context, subtaskID string) (storage.LogisticsTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.logistics[subtaskID]
	if !ok {
		return storage.LogisticsTaskRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) GetLogisticsTaskByTaskID(_ context.Context, taskID string) (storage.LogisticsTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.logistics {
		if record.TaskID == taskID {
			return record, nil
		}
	}
	return storage.LogisticsTaskRecord{}, storage.ErrNotFound
}

func (f *fakeStore) PutOutreachTask(_ context.Context, record storage.OutreachTaskRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.outreach {
		if existing.TaskID == record.TaskID && existing.ID != record.ID {
			return storage.ErrConflict
		}
	}
	f.outreach[record.ID] = record
	return nil
}

func (f *fakeStore) GetOutreachTask(_ context.Context, subtaskID string) (storage.OutreachTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.outreach[subtaskID]
	if !ok {
		return storage.OutreachTaskRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) GetOutreachTaskByTaskID(_ context.Context, taskID string) (storage.OutreachTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.outreach {
		if record.TaskID == taskID {
			return record, nil
		}
	}
	return storage.OutreachTaskRecord{}, storage.ErrNotFound
}

func (f *fakeStore) PutNotification(_ context.Context, record storage.NotificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.notifications {
		if existing.RecipientID == record.RecipientID && existing.DedupeKey == record.DedupeKey {
			return storage.ErrConflict
		}
	}
	f.notifications[record.ID] = record
	return nil
}

func (f *fakeStore) ListNotificationsByRecipient(_ context.Context, recipientID string, pageSize int, pageToken string) (storage.NotificationPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []storage.NotificationRecord
	for _, record := range f.notifications {
		if record.RecipientID == recipientID {
			all = append(all, record)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	start := 0
	if pageToken != "" {
		for i, record := range all {
			if record.ID == pageToken {
				start = i + 1
				break
			}
		}
	}
	page := storage.NotificationPage{}
	for i := start; i < len(all) && len(page.Notifications) < pageSize; i++ {
		page.Notifications = append(page.Notifications, all[i])
	}
	if start+len(page.Notifications) < len(all) && len(page.Notifications) > 0 {
		page.NextPageToken = page.Notifications[len(page.Notifications)-1].ID
	}
	return page, nil
}

func (f *fakeStore) CountUnreadNotificationsByRecipient(_ context.Context, recipientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, record := range f.notifications {
		if record.RecipientID == recipientID && record.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, recipientID string, notificationID string, readAt time.Time) (storage.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.notifications[notificationID]
	if !ok || record.RecipientID != recipientID {
		return storage.NotificationRecord{}, storage.ErrNotFound
	}
	at := readAt.UTC()
	record.ReadAt = &at
	f.notifications[notificationID] = record
	return record, nil
}

func (f *fakeStore) PutCalendarLink(_ context.Context, record storage.CalendarLinkRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calendarLinks[record.EventID+"/"+record.Provider] = record
	return nil
}

func (f *fakeStore) GetCalendarLink(_ context.Context, eventID string, provider string) (storage.CalendarLinkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.calendarLinks[eventID+"/"+provider]
	if !ok {
		return storage.CalendarLinkRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// sequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() (string, error) {
	var counter int
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return prefix + "-" + strconv.Itoa(counter), nil
	}
}
