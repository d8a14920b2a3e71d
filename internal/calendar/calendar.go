// Package calendar pushes planner events to external calendar providers
// and records the resulting links so re-runs update instead of duplicate.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// Event is the provider-facing view of a planner event.
type Event struct {
	ID   string
	Name string
	Date time.Time
	City string
}

// Provider is an external calendar backend.
type Provider interface {
	// Name identifies the provider in stored calendar links.
	Name() string
	// UpsertEvent creates or updates the external calendar entry for the
	// event. externalID is the previously stored entry ID, empty on first
	// sync. It returns the ID to store for future runs.
	UpsertEvent(ctx context.Context, event Event, externalID string) (string, error)
}

// Report summarizes one sync cycle.
type Report struct {
	Pushed  int
	Updated int
	Failed  int
	Skipped int
}

// Syncer pushes scheduled planner events to every configured provider.
type Syncer struct {
	events    storage.EventStore
	links     storage.CalendarLinkStore
	providers []Provider
	logger    *slog.Logger
	now       func() time.Time
}

// NewSyncer builds a syncer over the given providers.
func NewSyncer(events storage.EventStore, links storage.CalendarLinkStore, providers []Provider, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		events:    events,
		links:     links,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

// Sync pushes every scheduled event to every provider. A failure on one
// event is logged and counted; it does not abort the cycle.
func (s *Syncer) Sync(ctx context.Context) (Report, error) {
	summaries, err := s.events.ListEvents(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list events: %w", err)
	}

	var report Report
	for _, summary := range summaries {
		if summary.Event.Status != string(domain.EventStatusScheduled) {
			report.Skipped++
			continue
		}
		event := Event{
			ID:   summary.Event.ID,
			Name: summary.Event.Name,
			Date: summary.Event.Date,
			City: summary.Event.City,
		}
		for _, provider := range s.providers {
			s.syncOne(ctx, event, provider, &report)
		}
	}

	s.logger.Info("calendar sync finished",
		"pushed", report.Pushed,
		"updated", report.Updated,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *Syncer) syncOne(ctx context.Context, event Event, provider Provider, report *Report) {
	externalID := ""
	link, err := s.links.GetCalendarLink(ctx, event.ID, provider.Name())
	switch {
	case err == nil:
		externalID = link.ExternalID
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.logger.Error("load calendar link", "eventID", event.ID, "provider", provider.Name(), "error", err)
		report.Failed++
		return
	}

	storedID, err := provider.UpsertEvent(ctx, event, externalID)
	if err != nil {
		s.logger.Error("push event", "eventID", event.ID, "provider", provider.Name(), "error", err)
		report.Failed++
		return
	}

	if err := s.links.PutCalendarLink(ctx, storage.CalendarLinkRecord{
		EventID:    event.ID,
		Provider:   provider.Name(),
		ExternalID: storedID,
		SyncedAt:   s.now().UTC(),
	}); err != nil {
		s.logger.Error("store calendar link", "eventID", event.ID, "provider", provider.Name(), "error", err)
		report.Failed++
		return
	}

	if externalID == "" {
		report.Pushed++
	} else {
		report.Updated++
	}
	s.logger.Debug("event synced", "eventID", event.ID, "provider", provider.Name(), "externalID", storedID)
}
