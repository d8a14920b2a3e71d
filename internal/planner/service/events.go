package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stagehandhq/stagehand/internal/auth/guard"
	"github.com/stagehandhq/stagehand/internal/planner/domain"
	"github.com/stagehandhq/stagehand/internal/planner/storage"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

// CreateEventParams describes an event creation request.
type CreateEventParams struct {
	Name   string
	Date   time.Time
	Status string
}

// EventSummary pairs an event with its task tally for listings.
type EventSummary struct {
	Event     domain.Event
	TaskCount int
}

// CreateEvent creates an event. Organizer role required; the requesting
// identity is recorded as the creator.
func (s *Service) CreateEvent(ctx context.Context, params CreateEventParams) (domain.Event, error) {
	identity, err := guard.RequireOrganizer(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	event, err := domain.CreateEvent(domain.CreateEventInput{
		Name:      params.Name,
		Date:      params.Date,
		Status:    domain.EventStatus(params.Status),
		CreatedBy: identity.UserID,
	}, s.now, s.newID)
	if err != nil {
		return domain.Event{}, err
	}

	if err := s.store.PutEvent(ctx, eventRecord(event)); err != nil {
		return domain.Event{}, fmt.Errorf("persist event: %w", err)
	}
	return event, nil
}

// GetEvent loads one event. Any authenticated role may read.
func (s *Service) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return domain.Event{}, err
	}
	record, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Event{}, apperrors.New(apperrors.CodeNotFound, "event not found")
		}
		return domain.Event{}, fmt.Errorf("load event: %w", err)
	}
	return eventFromRecord(record), nil
}

// ListEvents lists every event with task counts, ordered by event date
// ascending. Any authenticated role may read.
func (s *Service) ListEvents(ctx context.Context) ([]EventSummary, error) {
	if _, err := guard.Authenticate(ctx); err != nil {
		return nil, err
	}
	records, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	summaries := make([]EventSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, EventSummary{
			Event:     eventFromRecord(record.Event),
			TaskCount: record.TaskCount,
		})
	}
	return summaries, nil
}

// TransitionEventStatus moves an event along its lifecycle. Organizer only.
func (s *Service) TransitionEventStatus(ctx context.Context, eventID string, status string) (domain.Event, error) {
	if _, err := guard.RequireOrganizer(ctx); err != nil {
		return domain.Event{}, err
	}

	record, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Event{}, apperrors.New(apperrors.CodeNotFound, "event not found")
		}
		return domain.Event{}, fmt.Errorf("load event: %w", err)
	}

	updated, err := domain.TransitionEventStatus(eventFromRecord(record), domain.EventStatus(strings.TrimSpace(status)), s.now)
	if err != nil {
		return domain.Event{}, err
	}
	if err := s.store.PutEvent(ctx, eventRecord(updated)); err != nil {
		return domain.Event{}, fmt.Errorf("persist event: %w", err)
	}
	return updated, nil
}

// DistributeEvent clones a template event into one instance per city.
// Organizer only. The whole batch is validated before any instance is
// persisted, so a bad city list writes nothing.
func (s *Service) DistributeEvent(ctx context.Context, eventID string, cities []string) ([]domain.Event, error) {
	if _, err := guard.RequireOrganizer(ctx); err != nil {
		return nil, err
	}

	trimmed := make([]string, 0, len(cities))
	for _, city := range cities {
		city = strings.TrimSpace(city)
		if city != "" {
			trimmed = append(trimmed, city)
		}
	}
	if len(trimmed) == 0 {
		return nil, apperrors.New(apperrors.CodeEventDistributionCitiesEmpty, "at least one distribution city is required")
	}

	record, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "event not found")
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	template := eventFromRecord(record)

	instances := make([]domain.Event, 0, len(trimmed))
	for _, city := range trimmed {
		instance, err := domain.DistributeEvent(template, city, s.now, s.newID)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	for _, instance := range instances {
		if err := s.store.PutEvent(ctx, eventRecord(instance)); err != nil {
			return nil, fmt.Errorf("persist event instance: %w", err)
		}
	}
	return instances, nil
}
