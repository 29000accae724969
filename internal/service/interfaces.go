// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/meetlog/internal/model"
)

// RecordFilter narrows a record query. Zero values match everything.
type RecordFilter struct {
	UserID *int64
	Start  *time.Time
	End    *time.Time
}

// Matches reports whether record passes the filter. End is exclusive.
func (f RecordFilter) Matches(record *model.ReportRecord) bool {
	if f.UserID != nil && record.UserID != *f.UserID {
		return false
	}
	if f.Start != nil && record.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && !record.Timestamp.Before(*f.End) {
		return false
	}
	return true
}

// RecordStore is the system of record for classified reports.
type RecordStore interface {
	// SaveRecord appends one record. It returns common.ErrDuplicateEntry when
	// a record with the same ID already exists.
	SaveRecord(ctx context.Context, record *model.ReportRecord) error
	// LoadRecords returns the matching records ordered by timestamp. An empty
	// store yields an empty slice, not an error.
	LoadRecords(ctx context.Context, filter RecordFilter) ([]model.ReportRecord, error)
	// DeleteUserRecords removes every record of userID and returns how many
	// were removed.
	DeleteUserRecords(ctx context.Context, userID int64) (int, error)
	// FindByActivityID returns the most recent record carrying activityID,
	// or common.ErrNotFound.
	FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error)
	Close() error
}

// Mirror is an optional secondary sink that receives a copy of every saved
// report. Callers treat its failures as non-fatal.
type Mirror interface {
	MirrorOffers(ctx context.Context, userID int64, at time.Time, offers []string, activityID string) error
	MirrorReschedule(ctx context.Context, userID int64, at time.Time, reason, comment string) error
	MirrorComment(ctx context.Context, userID int64, at time.Time, comment string) error
	// FindByActivityID rebuilds a record from the mirror, or returns
	// common.ErrNotFound.
	FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
