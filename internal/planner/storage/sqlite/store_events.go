package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// PutEvent upserts one event row.
func (s *Store) PutEvent(ctx context.Context, record storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeEventRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO events (
		id, name, date, status, created_by, city, template_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		date = excluded.date,
		status = excluded.status,
		created_by = excluded.created_by,
		city = excluded.city,
		template_id = excluded.template_id,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.Name,
		toMillis(normalized.Date),
		normalized.Status,
		normalized.CreatedBy,
		normalized.City,
		normalized.TemplateID,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// GetEvent loads one event row by id.
func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.EventRecord{}, err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, date, status, created_by, city, template_id, created_at, updated_at
FROM events
WHERE id = ?
`, eventID)
	record, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EventRecord{}, storage.ErrNotFound
		}
		return storage.EventRecord{}, fmt.Errorf("get event: %w", err)
	}
	return record, nil
}

// ListEvents lists every event with its task tally, earliest date first.
func (s *Store) ListEvents(ctx context.Context) ([]storage.EventWithTaskCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT e.id, e.name, e.date, e.status, e.created_by, e.city, e.template_id, e.created_at, e.updated_at,
       (SELECT COUNT(1) FROM tasks t WHERE t.event_id = e.id) AS task_count
FROM events e
ORDER BY e.date ASC, e.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var results []storage.EventWithTaskCount
	for rows.Next() {
		var entry storage.EventWithTaskCount
		var date int64
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&entry.Event.ID,
			&entry.Event.Name,
			&date,
			&entry.Event.Status,
			&entry.Event.CreatedBy,
			&entry.Event.City,
			&entry.Event.TemplateID,
			&createdAt,
			&updatedAt,
			&entry.TaskCount,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		entry.Event.Date = fromMillis(date)
		entry.Event.CreatedAt = fromMillis(createdAt)
		entry.Event.UpdatedAt = fromMillis(updatedAt)
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return results, nil
}

func normalizeEventRecord(record storage.EventRecord) (storage.EventRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	record.Status = strings.TrimSpace(record.Status)
	record.CreatedBy = strings.TrimSpace(record.CreatedBy)
	record.City = strings.TrimSpace(record.City)
	record.TemplateID = strings.TrimSpace(record.TemplateID)
	if record.ID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	if record.Name == "" {
		return storage.EventRecord{}, fmt.Errorf("event name is required")
	}
	if record.Status == "" {
		return storage.EventRecord{}, fmt.Errorf("event status is required")
	}
	if record.Date.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("event date is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("updated_at is required")
	}
	record.Date = record.Date.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func scanEvent(scan scanner) (storage.EventRecord, error) {
	var record storage.EventRecord
	var date int64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.Name,
		&date,
		&record.Status,
		&record.CreatedBy,
		&record.City,
		&record.TemplateID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.EventRecord{}, err
	}
	record.Date = fromMillis(date)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
