// Package caldav pushes planner events to a CalDAV calendar collection.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/stagehandhq/stagehand/internal/calendar"
)

const providerName = "caldav"

// Config holds CalDAV provider settings.
type Config struct {
	Endpoint     string
	Username     string
	Password     string
	CalendarName string
}

// basicAuthTransport adds Basic Auth to every CalDAV request.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "stagehand/1.0")
	return t.base.RoundTrip(req)
}

// Provider pushes events to a CalDAV server as VEVENT resources.
type Provider struct {
	webdavClient *webdav.Client
	calendarPath string
	logger       *slog.Logger
	now          func() time.Time
	newUID       func() string
}

// New discovers the named calendar collection and returns a provider
// writing into it.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := &http.Client{Transport: &basicAuthTransport{
		username: cfg.Username,
		password: cfg.Password,
		base:     http.DefaultTransport,
	}}

	caldavClient, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("create webdav client: %w", err)
	}

	calendarPath, err := findCalendar(ctx, caldavClient, cfg.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("find calendar %q: %w", cfg.CalendarName, err)
	}
	logger.Info("found caldav calendar", "calendar", cfg.CalendarName, "path", calendarPath)

	return &Provider{
		webdavClient: webdavClient,
		calendarPath: calendarPath,
		logger:       logger,
		now:          time.Now,
		newUID:       uuid.NewString,
	}, nil
}

// Name implements calendar.Provider.
func (p *Provider) Name() string { return providerName }

// UpsertEvent implements calendar.Provider. The stored external ID is the
// VEVENT UID; writing the same resource path again replaces the entry.
func (p *Provider) UpsertEvent(ctx context.Context, event calendar.Event, externalID string) (string, error) {
	uid := externalID
	if uid == "" {
		uid = p.newUID()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//stagehand//EN")
	cal.Children = append(cal.Children, p.toVEvent(event, uid))

	resource := path.Join(p.calendarPath, uid+".ics")
	writer, err := p.webdavClient.Create(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("create caldav resource: %w", err)
	}
	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		writer.Close()
		return "", fmt.Errorf("encode vevent: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close caldav resource: %w", err)
	}

	p.logger.Debug("wrote caldav event", "eventID", event.ID, "uid", uid)
	return uid, nil
}

func (p *Provider) toVEvent(event calendar.Event, uid string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, event.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, p.now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.Date.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.Date.UTC().Add(24*time.Hour))
	if event.City != "" {
		ve.Props.SetText(ical.PropLocation, event.City)
	}
	return ve
}

func findCalendar(ctx context.Context, client *caldav.Client, name string) (string, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find calendar home set: %w", err)
	}
	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("list calendars: %w", err)
	}
	for _, cal := range calendars {
		if strings.EqualFold(cal.Name, name) {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("calendar %q not found", name)
}
