package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/storage"
)

const table = "report_records"

var columns = []string{
	"id", "user_id", "type", "recorded_at", "original_text",
	"offers", "reschedule_reason", "comment", "activity_id",
}

// Store implements service.RecordStore on PostgreSQL. Writes for one user are
// serialized with transaction-scoped advisory locks, so several processes may
// share the database.
type Store struct {
	pool *pgxpool.Pool
	tx   *TxManager
	sb   squirrel.StatementBuilderType
}

// NewStore wraps an open pool. The pool is closed by Close.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		tx:   NewTxManager(pool),
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SaveRecord inserts one record while holding the user's lock.
func (s *Store) SaveRecord(ctx context.Context, record *model.ReportRecord) error {
	if err := storage.ValidateRecord(record); err != nil {
		return err
	}

	offers := record.Offers
	if offers == nil {
		offers = []string{}
	}

	query, args, err := s.sb.Insert(table).
		Columns(columns...).
		Values(
			record.ID,
			record.UserID,
			string(record.Type),
			record.Timestamp.UTC(),
			record.OriginalText,
			offers,
			record.RescheduleReason,
			record.Comment,
			record.ActivityID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, s.pool)
		if err := lockUser(ctx, q, record.UserID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, query, args...)
		return mapError(err, "save record", record.ID)
	})
}

// LoadRecords returns the matching records ordered by timestamp.
func (s *Store) LoadRecords(ctx context.Context, filter service.RecordFilter) ([]model.ReportRecord, error) {
	if err := storage.ValidateFilter(filter); err != nil {
		return nil, err
	}

	sel := s.sb.Select(columns...).From(table).OrderBy("recorded_at", "created_at", "id")
	if filter.UserID != nil {
		sel = sel.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Start != nil {
		sel = sel.Where(squirrel.GtOrEq{"recorded_at": filter.Start.UTC()})
	}
	if filter.End != nil {
		sel = sel.Where(squirrel.Lt{"recorded_at": filter.End.UTC()})
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := QuerierFromCtx(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "load records", "")
	}
	defer rows.Close()

	records := []model.ReportRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "load records", "")
	}
	return records, nil
}

// DeleteUserRecords removes every record of userID while holding the user's
// lock.
func (s *Store) DeleteUserRecords(ctx context.Context, userID int64) (int, error) {
	query, args, err := s.sb.Delete(table).Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	var removed int
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, s.pool)
		if err := lockUser(ctx, q, userID); err != nil {
			return err
		}
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return mapError(err, "delete records for user", strconv.FormatInt(userID, 10))
		}
		removed = int(tag.RowsAffected())
		return nil
	})
	return removed, err
}

// FindByActivityID returns the most recent record carrying activityID.
func (s *Store) FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error) {
	if err := storage.ValidateActivityID(activityID); err != nil {
		return nil, err
	}
	query, args, err := s.sb.Select(columns...).
		From(table).
		Where(squirrel.Eq{"activity_id": activityID}).
		OrderBy("recorded_at DESC", "created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	record, err := scanRecord(QuerierFromCtx(ctx, s.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "activity", activityID)
	}
	return record, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (*model.ReportRecord, error) {
	var (
		record     model.ReportRecord
		recordType string
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&recordType,
		&record.Timestamp,
		&record.OriginalText,
		&record.Offers,
		&record.RescheduleReason,
		&record.Comment,
		&record.ActivityID,
	)
	if err != nil {
		return nil, err
	}
	record.Type = model.ReportType(recordType)
	if record.Offers == nil {
		record.Offers = []string{}
	}
	return &record, nil
}
