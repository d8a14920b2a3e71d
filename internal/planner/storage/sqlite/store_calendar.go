package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// PutCalendarLink upserts one event-to-external-calendar mapping.
func (s *Store) PutCalendarLink(ctx context.Context, record storage.CalendarLinkRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	record.EventID = strings.TrimSpace(record.EventID)
	record.Provider = strings.TrimSpace(record.Provider)
	record.ExternalID = strings.TrimSpace(record.ExternalID)
	if record.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if record.Provider == "" {
		return fmt.Errorf("calendar provider is required")
	}
	if record.ExternalID == "" {
		return fmt.Errorf("external calendar id is required")
	}
	if record.SyncedAt.IsZero() {
		return fmt.Errorf("synced_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO calendar_links (
		event_id, provider, external_id, synced_at
	) VALUES (?, ?, ?, ?)
	ON CONFLICT(event_id, provider) DO UPDATE SET
		external_id = excluded.external_id,
		synced_at = excluded.synced_at
	`,
		record.EventID,
		record.Provider,
		record.ExternalID,
		toMillis(record.SyncedAt),
	)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put calendar link: %w", err)
	}
	return nil
}

// GetCalendarLink loads the external calendar mapping for one event and provider.
func (s *Store) GetCalendarLink(ctx context.Context, eventID string, provider string) (storage.CalendarLinkRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CalendarLinkRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.CalendarLinkRecord{}, err
	}
	eventID = strings.TrimSpace(eventID)
	provider = strings.TrimSpace(provider)
	if eventID == "" {
		return storage.CalendarLinkRecord{}, fmt.Errorf("event id is required")
	}
	if provider == "" {
		return storage.CalendarLinkRecord{}, fmt.Errorf("calendar provider is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT event_id, provider, external_id, synced_at
FROM calendar_links
WHERE event_id = ? AND provider = ?
`, eventID, provider)
	var record storage.CalendarLinkRecord
	var syncedAt int64
	if err := row.Scan(&record.EventID, &record.Provider, &record.ExternalID, &syncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CalendarLinkRecord{}, storage.ErrNotFound
		}
		return storage.CalendarLinkRecord{}, fmt.Errorf("get calendar link: %w", err)
	}
	record.SyncedAt = fromMillis(syncedAt)
	return record, nil
}
