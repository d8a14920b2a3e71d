// Package service implements the planner operations on top of the storage
// layer, enforcing role checks and status workflows.
package service

import (
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// Service coordinates planner operations against a persistence store.
type Service struct {
	store storage.Store
	now   func() time.Time
	newID func() (string, error)

	// blockedThreshold is how long a task may sit in BLOCKED before the
	// scan raises an alert.
	blockedThreshold time.Duration
	// deadlineLookahead is the window ahead of now scanned for
	// approaching deadlines.
	deadlineLookahead time.Duration
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the service id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithBlockedThreshold overrides how long a task may stay blocked before
// the scan alerts.
func WithBlockedThreshold(threshold time.Duration) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.blockedThreshold = threshold
		}
	}
}

// WithDeadlineLookahead overrides the approaching-deadline scan window.
func WithDeadlineLookahead(lookahead time.Duration) Option {
	return func(s *Service) {
		if lookahead > 0 {
			s.deadlineLookahead = lookahead
		}
	}
}

// New builds a planner service backed by the provided store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:             store,
		now:               time.Now,
		newID:             id.NewID,
		blockedThreshold:  24 * time.Hour,
		deadlineLookahead: 48 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
