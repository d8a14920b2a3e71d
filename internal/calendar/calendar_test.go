package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

type fakeEventStore struct {
	events []storage.EventWithTaskCount
}

func (s *fakeEventStore) PutEvent(context.Context, storage.EventRecord) error {
	return errors.New("not implemented")
}

func (s *fakeEventStore) GetEvent(context.Context, string) (storage.EventRecord, error) {
	return storage.EventRecord{}, errors.New("not implemented")
}

func (s *fakeEventStore) ListEvents(context.Context) ([]storage.EventWithTaskCount, error) {
	return s.events, nil
}

type fakeLinkStore struct {
	mu    sync.Mutex
	links map[string]storage.CalendarLinkRecord
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]storage.CalendarLinkRecord)}
}

func linkKey(eventID, provider string) string {
	return eventID + "/" + provider
}

func (s *fakeLinkStore) PutCalendarLink(_ context.Context, record storage.CalendarLinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[linkKey(record.EventID, record.Provider)] = record
	return nil
}

func (s *fakeLinkStore) GetCalendarLink(_ context.Context, eventID, provider string) (storage.CalendarLinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.links[linkKey(eventID, provider)]
	if !ok {
		return storage.CalendarLinkRecord{}, storage.ErrNotFound
	}
	return record, nil
}

type fakeProvider struct {
	name    string
	failFor map[string]bool
	pushed  []Event
	updated []Event
	nextID  int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) UpsertEvent(_ context.Context, event Event, externalID string) (string, error) {
	if p.failFor[event.ID] {
		return "", errors.New("provider unavailable")
	}
	if externalID != "" {
		p.updated = append(p.updated, event)
		return externalID, nil
	}
	p.pushed = append(p.pushed, event)
	p.nextID++
	return fmt.Sprintf("%s-ext-%d", p.name, p.nextID), nil
}

func scheduledEvent(id, name string) storage.EventWithTaskCount {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	return storage.EventWithTaskCount{Event: storage.EventRecord{
		ID:     id,
		Name:   name,
		Date:   date,
		Status: "SCHEDULED",
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSyncPushesScheduledEventsOnly(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{events: []storage.EventWithTaskCount{
		scheduledEvent("evt-1", "Hack Night"),
		{Event: storage.EventRecord{ID: "evt-2", Name: "Draft", Status: "PLANNING"}},
		{Event: storage.EventRecord{ID: "evt-3", Name: "Old", Status: "CANCELLED"}},
	}}
	links := newFakeLinkStore()
	provider := &fakeProvider{name: "caldav"}

	syncer := NewSyncer(events, links, []Provider{provider}, discardLogger())
	report, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Pushed != 1 || report.Skipped != 2 || report.Failed != 0 {
		t.Fatalf("report = %+v, want 1 pushed, 2 skipped", report)
	}
	if len(provider.pushed) != 1 || provider.pushed[0].ID != "evt-1" {
		t.Fatalf("pushed = %+v", provider.pushed)
	}

	link, err := links.GetCalendarLink(context.Background(), "evt-1", "caldav")
	if err != nil {
		t.Fatalf("GetCalendarLink: %v", err)
	}
	if link.ExternalID != "caldav-ext-1" {
		t.Fatalf("ExternalID = %q", link.ExternalID)
	}
}

func TestSyncRerunUpdatesInsteadOfDuplicating(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{events: []storage.EventWithTaskCount{
		scheduledEvent("evt-1", "Hack Night"),
	}}
	links := newFakeLinkStore()
	provider := &fakeProvider{name: "google"}
	syncer := NewSyncer(events, links, []Provider{provider}, discardLogger())

	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	report, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if report.Pushed != 0 || report.Updated != 1 {
		t.Fatalf("report = %+v, want 0 pushed, 1 updated", report)
	}
	if len(provider.pushed) != 1 || len(provider.updated) != 1 {
		t.Fatalf("provider calls = %d pushed, %d updated", len(provider.pushed), len(provider.updated))
	}

	// The stored external ID survives the re-run.
	link, err := links.GetCalendarLink(context.Background(), "evt-1", "google")
	if err != nil {
		t.Fatalf("GetCalendarLink: %v", err)
	}
	if link.ExternalID != "google-ext-1" {
		t.Fatalf("ExternalID = %q", link.ExternalID)
	}
}

func TestSyncFailureDoesNotAbortCycle(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{events: []storage.EventWithTaskCount{
		scheduledEvent("evt-1", "First"),
		scheduledEvent("evt-2", "Second"),
	}}
	links := newFakeLinkStore()
	provider := &fakeProvider{name: "caldav", failFor: map[string]bool{"evt-1": true}}

	syncer := NewSyncer(events, links, []Provider{provider}, discardLogger())
	report, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Failed != 1 || report.Pushed != 1 {
		t.Fatalf("report = %+v, want 1 failed and 1 pushed", report)
	}
	if _, err := links.GetCalendarLink(context.Background(), "evt-1", "caldav"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("failed event should have no link, got err = %v", err)
	}
}

func TestSyncFansOutToEveryProvider(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{events: []storage.EventWithTaskCount{
		scheduledEvent("evt-1", "Hack Night"),
	}}
	links := newFakeLinkStore()
	google := &fakeProvider{name: "google"}
	dav := &fakeProvider{name: "caldav"}

	syncer := NewSyncer(events, links, []Provider{google, dav}, discardLogger())
	report, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Pushed != 2 {
		t.Fatalf("Pushed = %d, want one per provider", report.Pushed)
	}
	for _, name := range []string{"google", "caldav"} {
		if _, err := links.GetCalendarLink(context.Background(), "evt-1", name); err != nil {
			t.Fatalf("missing link for provider %s: %v", name, err)
		}
	}
}
