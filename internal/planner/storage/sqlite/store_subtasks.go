package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stagehandhq/stagehand/internal/planner/storage"
)

// PutGraphicsTask upserts one graphics sub-task row. A second sub-task for
// the same parent task violates the 1:1 constraint and returns ErrConflict.
func (s *Store) PutGraphicsTask(ctx context.Context, record storage.GraphicsTaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeGraphicsTaskRecord(record)
	if err != nil {
		return err
	}
	formatsJSON, err := json.Marshal(normalized.Formats)
	if err != nil {
		return fmt.Errorf("encode graphics formats: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO graphics_tasks (
		id, task_id, asset_type, formats_json, status, final_output_link, owner_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		task_id = excluded.task_id,
		asset_type = excluded.asset_type,
		formats_json = excluded.formats_json,
		status = excluded.status,
		final_output_link = excluded.final_output_link,
		owner_id = excluded.owner_id,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.TaskID,
		normalized.AssetType,
		string(formatsJSON),
		normalized.Status,
		normalized.FinalOutputLink,
		normalized.OwnerID,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put graphics task: %w", err)
	}
	return nil
}

// GetGraphicsTask loads one graphics sub-task row by id.
func (s *Store) GetGraphicsTask(ctx context.Context, subtaskID string) (storage.GraphicsTaskRecord, error) {
	return s.getGraphicsTaskWhere(ctx, "id", subtaskID)
}

// GetGraphicsTaskByTaskID loads the graphics sub-task attached to a task.
func (s *Store) GetGraphicsTaskByTaskID(ctx context.Context, taskID string) (storage.GraphicsTaskRecord, error) {
	return s.getGraphicsTaskWhere(ctx, "task_id", taskID)
}

func (s *Store) getGraphicsTaskWhere(ctx context.Context, column string, value string) (storage.GraphicsTaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.GraphicsTaskRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.GraphicsTaskRecord{}, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("lookup id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, task_id, asset_type, formats_json, status, final_output_link, owner_id, created_at, updated_at
FROM graphics_tasks
WHERE `+column+` = ?
`, value)
	record, err := scanGraphicsTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.GraphicsTaskRecord{}, storage.ErrNotFound
		}
		return storage.GraphicsTaskRecord{}, fmt.Errorf("get graphics task: %w", err)
	}
	return record, nil
}

// PutLogisticsTask upserts one logistics sub-task row.
func (s *Store) PutLogisticsTask(ctx context.Context, record storage.LogisticsTaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeLogisticsTaskRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO logistics_tasks (
		id, task_id, status, owner_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		task_id = excluded.task_id,
		status = excluded.status,
		owner_id = excluded.owner_id,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.TaskID,
		normalized.Status,
		normalized.OwnerID,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put logistics task: %w", err)
	}
	return nil
}

// GetLogisticsTask loads one logistics sub-task row by id.
func (s *Store) GetLogisticsTask(ctx context.Context, subtaskID string) (storage.LogisticsTaskRecord, error) {
	return s.getLogisticsTaskWhere(ctx, "id", subtaskID)
}

// GetLogisticsTaskByTaskID loads the logistics sub-task attached to a task.
func (s *Store) GetLogisticsTaskByTaskID(ctx context.Context, taskID string) (storage.LogisticsTaskRecord, error) {
	return s.getLogisticsTaskWhere(ctx, "task_id", taskID)
}

func (s *Store) getLogisticsTaskWhere(ctx context.Context, column string, value string) (storage.LogisticsTaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.LogisticsTaskRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.LogisticsTaskRecord{}, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("lookup id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, task_id, status, owner_id, created_at, updated_at
FROM logistics_tasks
WHERE `+column+` = ?
`, value)
	var record storage.LogisticsTaskRecord
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.TaskID,
		&record.Status,
		&record.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.LogisticsTaskRecord{}, storage.ErrNotFound
		}
		return storage.LogisticsTaskRecord{}, fmt.Errorf("get logistics task: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// PutOutreachTask upserts one outreach sub-task row.
func (s *Store) PutOutreachTask(ctx context.Context, record storage.OutreachTaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeOutreachTaskRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO outreach_tasks (
		id, task_id, channel, content_link, scheduled_at, status, outcome_note, owner_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		task_id = excluded.task_id,
		channel = excluded.channel,
		content_link = excluded.content_link,
		scheduled_at = excluded.scheduled_at,
		status = excluded.status,
		outcome_note = excluded.outcome_note,
		owner_id = excluded.owner_id,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.TaskID,
		normalized.Channel,
		normalized.ContentLink,
		optionalMillis(normalized.ScheduledAt),
		normalized.Status,
		normalized.OutcomeNote,
		normalized.OwnerID,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put outreach task: %w", err)
	}
	return nil
}

// GetOutreachTask loads one outreach sub-task row by id.
func (s *Store) GetOutreachTask(ctx context.Context, subtaskID string) (storage.OutreachTaskRecord, error) {
	return s.getOutreachTaskWhere(ctx, "id", subtaskID)
}

// GetOutreachTaskByTaskID loads the outreach sub-task attached to a task.
func (s *Store) GetOutreachTaskByTaskID(ctx context.Context, taskID string) (storage.OutreachTaskRecord, error) {
	return s.getOutreachTaskWhere(ctx, "task_id", taskID)
}

func (s *Store) getOutreachTaskWhere(ctx context.Context, column string, value string) (storage.OutreachTaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.OutreachTaskRecord{}, err
	}
	if err := s.ready(); err != nil {
		return storage.OutreachTaskRecord{}, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return storage.OutreachTaskRecord{}, fmt.Errorf("lookup id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, task_id, channel, content_link, scheduled_at, status, outcome_note, owner_id, created_at, updated_at
FROM outreach_tasks
WHERE `+column+` = ?
`, value)
	var record storage.OutreachTaskRecord
	var scheduledAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.TaskID,
		&record.Channel,
		&record.ContentLink,
		&scheduledAt,
		&record.Status,
		&record.OutcomeNote,
		&record.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.OutreachTaskRecord{}, storage.ErrNotFound
		}
		return storage.OutreachTaskRecord{}, fmt.Errorf("get outreach task: %w", err)
	}
	record.ScheduledAt = optionalTime(scheduledAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func normalizeGraphicsTaskRecord(record storage.GraphicsTaskRecord) (storage.GraphicsTaskRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.TaskID = strings.TrimSpace(record.TaskID)
	record.AssetType = strings.TrimSpace(record.AssetType)
	record.Status = strings.TrimSpace(record.Status)
	record.FinalOutputLink = strings.TrimSpace(record.FinalOutputLink)
	record.OwnerID = strings.TrimSpace(record.OwnerID)
	if record.ID == "" {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("graphics task id is required")
	}
	if record.TaskID == "" {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("graphics parent task id is required")
	}
	if record.AssetType == "" {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("graphics asset type is required")
	}
	if len(record.Formats) == 0 {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("graphics formats are required")
	}
	if record.Status == "" {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("graphics status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeLogisticsTaskRecord(record storage.LogisticsTaskRecord) (storage.LogisticsTaskRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.TaskID = strings.TrimSpace(record.TaskID)
	record.Status = strings.TrimSpace(record.Status)
	record.OwnerID = strings.TrimSpace(record.OwnerID)
	if record.ID == "" {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("logistics task id is required")
	}
	if record.TaskID == "" {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("logistics parent task id is required")
	}
	if record.Status == "" {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("logistics status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.LogisticsTaskRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func normalizeOutreachTaskRecord(record storage.OutreachTaskRecord) (storage.OutreachTaskRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.TaskID = strings.TrimSpace(record.TaskID)
	record.Channel = strings.TrimSpace(record.Channel)
	record.ContentLink = strings.TrimSpace(record.ContentLink)
	record.Status = strings.TrimSpace(record.Status)
	record.OutcomeNote = strings.TrimSpace(record.OutcomeNote)
	record.OwnerID = strings.TrimSpace(record.OwnerID)
	if record.ID == "" {
		return storage.OutreachTaskRecord{}, fmt.Errorf("outreach task id is required")
	}
	if record.TaskID == "" {
		return storage.OutreachTaskRecord{}, fmt.Errorf("outreach parent task id is required")
	}
	if record.Channel == "" {
		return storage.OutreachTaskRecord{}, fmt.Errorf("outreach channel is required")
	}
	if record.Status == "" {
		return storage.OutreachTaskRecord{}, fmt.Errorf("outreach status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.OutreachTaskRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.OutreachTaskRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.ScheduledAt != nil {
		scheduledAt := record.ScheduledAt.UTC()
		record.ScheduledAt = &scheduledAt
	}
	return record, nil
}

func scanGraphicsTask(scan scanner) (storage.GraphicsTaskRecord, error) {
	var record storage.GraphicsTaskRecord
	var formatsJSON string
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.TaskID,
		&record.AssetType,
		&formatsJSON,
		&record.Status,
		&record.FinalOutputLink,
		&record.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.GraphicsTaskRecord{}, err
	}
	if err := json.Unmarshal([]byte(formatsJSON), &record.Formats); err != nil {
		return storage.GraphicsTaskRecord{}, fmt.Errorf("decode graphics formats: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
