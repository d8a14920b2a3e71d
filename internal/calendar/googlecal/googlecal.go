// Package googlecal pushes planner events to a Google Calendar.
package googlecal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/stagehandhq/stagehand/internal/calendar"
)

const providerName = "google"

// Config holds Google Calendar provider settings.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CalendarID   string
}

// Provider pushes events through the Google Calendar API.
type Provider struct {
	service    *gcalendar.Service
	calendarID string
	logger     *slog.Logger
}

// New builds an authenticated Google Calendar provider. The token file must
// hold an OAuth token obtained out of band.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if logger == nil {
		logger = slog.Default()
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load google token: %w", err)
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gcalendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	service, err := gcalendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Provider{
		service:    service,
		calendarID: cfg.CalendarID,
		logger:     logger,
	}, nil
}

// Name implements calendar.Provider.
func (p *Provider) Name() string { return providerName }

// UpsertEvent implements calendar.Provider. Events are pushed as all-day
// entries on the planner event's date.
func (p *Provider) UpsertEvent(ctx context.Context, event calendar.Event, externalID string) (string, error) {
	entry := p.toGoogleEvent(event)

	if externalID == "" {
		created, err := p.service.Events.Insert(p.calendarID, entry).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("insert google event: %w", err)
		}
		p.logger.Info("created google calendar event", "eventID", event.ID, "googleID", created.Id)
		return created.Id, nil
	}

	updated, err := p.service.Events.Update(p.calendarID, externalID, entry).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update google event: %w", err)
	}
	p.logger.Debug("updated google calendar event", "eventID", event.ID, "googleID", updated.Id)
	return updated.Id, nil
}

func (p *Provider) toGoogleEvent(event calendar.Event) *gcalendar.Event {
	day := event.Date.UTC().Format("2006-01-02")
	nextDay := event.Date.UTC().Add(24 * time.Hour).Format("2006-01-02")
	return &gcalendar.Event{
		Summary:  event.Name,
		Location: event.City,
		Start:    &gcalendar.EventDateTime{Date: day},
		End:      &gcalendar.EventDateTime{Date: nextDay},
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return token, nil
}

// SaveToken writes an OAuth token next to the planner for later runs.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
