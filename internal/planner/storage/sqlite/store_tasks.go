package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

const taskColumns = "id, event_id, title, category, status, due_at, blocked_at, created_at, updated_at"

// PutTask upserts one task row.
func (s *Store) PutTask(ctx context.Context, record storage.TaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeTaskRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO tasks (
		id, event_id, title, category, status, due_at, blocked_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		event_id = excluded.event_id,
		title = excluded.title,
		category = excluded.category,
		status = excluded.status,
		due_at = excluded.due_at,
		blocked_at = excluded.blocked_at,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.EventID,
		normalized.Title,
		normalized.Category,
		normalized.Status,
		optionalMillis(normalized.DueAt),
		optionalMillis(normalized.BlockedAt),
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// GetTask loads one task row by id.
func (s *Store) GetTask(ctx context.Context, taskID string) (storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.TaskRecord{}, err
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return storage.TaskRecord{}, fmt.Errorf("task id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE id = ?
`, taskID)
	record, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TaskRecord{}, storage.ErrNotFound
		}
		return storage.TaskRecord{}, fmt.Errorf("get task: %w", err)
	}
	return record, nil
}

// ListTasksByEvent lists event tasks oldest-first.
func (s *Store) ListTasksByEvent(ctx context.Context, eventID string) ([]storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	return s.queryTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE event_id = ?
ORDER BY created_at ASC, id ASC
`, eventID)
}

// ListOverdueTasks returns unfinished tasks whose deadline passed before now.
func (s *Store) ListOverdueTasks(ctx context.Context, now time.Time) ([]storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if now.IsZero() {
		return nil, fmt.Errorf("now is required")
	}

	return s.queryTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE status != 'DONE'
  AND due_at IS NOT NULL
  AND due_at < ?
ORDER BY due_at ASC, id ASC
`, toMillis(now))
}

// ListBlockedTasksSince returns blocked tasks stuck at or before the cutoff.
func (s *Store) ListBlockedTasksSince(ctx context.Context, cutoff time.Time) ([]storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if cutoff.IsZero() {
		return nil, fmt.Errorf("cutoff is required")
	}

	return s.queryTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE status = 'BLOCKED'
  AND blocked_at IS NOT NULL
  AND blocked_at <= ?
ORDER BY blocked_at ASC, id ASC
`, toMillis(cutoff))
}

// ListTasksDueBetween returns unfinished tasks due inside the window.
func (s *Store) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]storage.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("window bounds are required")
	}

	return s.queryTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE status != 'DONE'
  AND due_at IS NOT NULL
  AND due_at >= ?
  AND due_at <= ?
ORDER BY due_at ASC, id ASC
`, toMillis(from), toMillis(to))
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]storage.TaskRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var results []storage.TaskRecord
	for rows.Next() {
		record, scanErr := scanTask(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan task row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return results, nil
}

func normalizeTaskRecord(record storage.TaskRecord) (storage.TaskRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.EventID = strings.TrimSpace(record.EventID)
	record.Title = strings.TrimSpace(record.Title)
	record.Category = strings.TrimSpace(record.Category)
	record.Status = strings.TrimSpace(record.Status)
	if record.ID == "" {
		return storage.TaskRecord{}, fmt.Errorf("task id is required")
	}
	if record.EventID == "" {
		return storage.TaskRecord{}, fmt.Errorf("task event id is required")
	}
	if record.Title == "" {
		return storage.TaskRecord{}, fmt.Errorf("task title is required")
	}
	if record.Category == "" {
		return storage.TaskRecord{}, fmt.Errorf("task category is required")
	}
	if record.Status == "" {
		return storage.TaskRecord{}, fmt.Errorf("task status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.TaskRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.TaskRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.DueAt != nil {
		dueAt := record.DueAt.UTC()
		record.DueAt = &dueAt
	}
	if record.BlockedAt != nil {
		blockedAt := record.BlockedAt.UTC()
		record.BlockedAt = &blockedAt
	}
	return record, nil
}

func scanTask(scan scanner) (storage.TaskRecord, error) {
	var record storage.TaskRecord
	var dueAt sql.NullInt64
	var blockedAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.EventID,
		&record.Title,
		&record.Category,
		&record.Status,
		&dueAt,
		&blockedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.TaskRecord{}, err
	}
	record.DueAt = optionalTime(dueAt)
	record.BlockedAt = optionalTime(blockedAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
