// Package domain holds planner entities, status workflows, and the
// patch-merge rules for partial updates.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	// EventStatusPlanning is the initial state of a created event.
	EventStatusPlanning EventStatus = "PLANNING"
	// EventStatusScheduled means the event date and logistics are locked.
	EventStatusScheduled EventStatus = "SCHEDULED"
	// EventStatusCompleted means the event took place.
	EventStatusCompleted EventStatus = "COMPLETED"
	// EventStatusCancelled means the event will not take place.
	EventStatusCancelled EventStatus = "CANCELLED"
)

var (
	// ErrEventNameEmpty indicates a missing event name.
	ErrEventNameEmpty = apperrors.New(apperrors.CodeEventNameEmpty, "event name is required")
	// ErrEventDateMissing indicates a missing event date.
	ErrEventDateMissing = apperrors.New(apperrors.CodeEventDateMissing, "event date is required")
	// ErrEventInvalidStatus indicates an unrecognized event status value.
	ErrEventInvalidStatus = apperrors.New(apperrors.CodeEventInvalidStatus, "event status is not recognized")
)

// ParseEventStatus validates a raw event status value.
func ParseEventStatus(value string) (EventStatus, error) {
	switch EventStatus(strings.TrimSpace(value)) {
	case EventStatusPlanning:
		return EventStatusPlanning, nil
	case EventStatusScheduled:
		return EventStatusScheduled, nil
	case EventStatusCompleted:
		return EventStatusCompleted, nil
	case EventStatusCancelled:
		return EventStatusCancelled, nil
	default:
		return "", ErrEventInvalidStatus
	}
}

// Event represents one planned event owning a set of tasks.
type Event struct {
	ID     string
	Name   string
	Date   time.Time
	Status EventStatus
	// CreatedBy is the organizer identity that created the event.
	CreatedBy string
	// City is set on per-city instances produced by distribution.
	City string
	// TemplateID links a distributed instance back to its template event.
	TemplateID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateEventInput describes the metadata needed to create an event.
type CreateEventInput struct {
	Name      string
	Date      time.Time
	Status    EventStatus
	CreatedBy string
}

// CreateEvent creates a new event with a generated ID and timestamps.
// Status defaults to PLANNING when unset.
func CreateEvent(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateEventInput(input)
	if err != nil {
		return Event{}, err
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	createdAt := now().UTC()
	return Event{
		ID:        eventID,
		Name:      normalized.Name,
		Date:      normalized.Date,
		Status:    normalized.Status,
		CreatedBy: normalized.CreatedBy,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateEventInput trims and validates event input metadata.
func NormalizeCreateEventInput(input CreateEventInput) (CreateEventInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CreatedBy = strings.TrimSpace(input.CreatedBy)
	if input.Name == "" {
		return CreateEventInput{}, ErrEventNameEmpty
	}
	if input.Date.IsZero() {
		return CreateEventInput{}, ErrEventDateMissing
	}
	input.Date = input.Date.UTC()
	if input.Status == "" {
		input.Status = EventStatusPlanning
	} else {
		status, err := ParseEventStatus(string(input.Status))
		if err != nil {
			return CreateEventInput{}, err
		}
		input.Status = status
	}
	return input, nil
}

// TransitionEventStatus applies a status transition and updates timestamps.
func TransitionEventStatus(event Event, target EventStatus, now func() time.Time) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if _, err := ParseEventStatus(string(target)); err != nil {
		return Event{}, err
	}
	if !isEventStatusTransitionAllowed(event.Status, target) {
		return Event{}, apperrors.WithMetadata(
			apperrors.CodeEventInvalidStatusTransition,
			fmt.Sprintf("event status transition not allowed: %s -> %s", event.Status, target),
			map[string]string{"FromStatus": string(event.Status), "ToStatus": string(target)},
		)
	}

	updated := event
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// isEventStatusTransitionAllowed reports whether a status transition is permitted.
func isEventStatusTransitionAllowed(from, to EventStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case EventStatusPlanning:
		return to == EventStatusScheduled || to == EventStatusCancelled
	case EventStatusScheduled:
		return to == EventStatusCompleted || to == EventStatusCancelled
	default:
		// COMPLETED and CANCELLED are terminal.
		return false
	}
}

// DistributeEvent clones a template event into one per-city instance.
// The instance starts in PLANNING regardless of the template status.
func DistributeEvent(template Event, city string, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return Event{}, apperrors.New(apperrors.CodeEventDistributionCitiesEmpty, "distribution city is required")
	}
	if template.TemplateID != "" {
		return Event{}, apperrors.WithMetadata(
			apperrors.CodeEventDistributionNotTemplate,
			"distributed event instances cannot be distributed again",
			map[string]string{"EventID": template.ID},
		)
	}

	instanceID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}
	createdAt := now().UTC()
	return Event{
		ID:         instanceID,
		Name:       fmt.Sprintf("%s (%s)", template.Name, city),
		Date:       template.Date,
		Status:     EventStatusPlanning,
		CreatedBy:  template.CreatedBy,
		City:       city,
		TemplateID: template.ID,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}
