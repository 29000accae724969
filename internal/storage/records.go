package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

const recordColumns = `id, user_id, type, recorded_at, original_text, offers, reschedule_reason, comment, activity_id`

// SaveRecord appends one record.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.ReportRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateRecord(record); err != nil {
		return err
	}

	offers := record.Offers
	if offers == nil {
		offers = []string{}
	}
	offersJSON, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("failed to encode offers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO report_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		string(record.Type),
		record.Timestamp.UnixNano(),
		record.OriginalText,
		string(offersJSON),
		record.RescheduleReason,
		record.Comment,
		record.ActivityID,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: record %s", common.ErrDuplicateEntry, record.ID)
		}
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// LoadRecords returns the matching records ordered by timestamp.
func (s *SQLiteStorage) LoadRecords(ctx context.Context, filter service.RecordFilter) ([]model.ReportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Start != nil {
		where = append(where, "recorded_at >= ?")
		args = append(args, filter.Start.UnixNano())
	}
	if filter.End != nil {
		where = append(where, "recorded_at < ?")
		args = append(args, filter.End.UnixNano())
	}

	query := `SELECT ` + recordColumns + ` FROM report_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.ReportRecord{}
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// DeleteUserRecords removes every record of userID.
func (s *SQLiteStorage) DeleteUserRecords(ctx context.Context, userID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM report_records WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records for user %d: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return int(n), nil
}

// FindByActivityID returns the most recent record carrying activityID.
func (s *SQLiteStorage) FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateActivityID(activityID); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM report_records
		WHERE activity_id = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT 1`, activityID)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
	}
	return record, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ReportRecord, error) {
	var (
		record     model.ReportRecord
		recordType string
		recordedAt int64
		offersJSON string
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&recordType,
		&recordedAt,
		&record.OriginalText,
		&offersJSON,
		&record.RescheduleReason,
		&record.Comment,
		&record.ActivityID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	record.Type = model.ReportType(recordType)
	record.Timestamp = time.Unix(0, recordedAt).UTC()
	if err := json.Unmarshal([]byte(offersJSON), &record.Offers); err != nil {
		return nil, fmt.Errorf("%w: record %s has malformed offers: %v", common.ErrDatabaseCorrupted, record.ID, err)
	}
	if record.Offers == nil {
		record.Offers = []string{}
	}
	return &record, nil
}
