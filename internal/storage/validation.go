// Package storage provides the SQLite persistence layer for report records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid report record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// ValidateActivityID rejects a blank activity id. Records without an id store
// it empty, so a blank lookup would match them.
func ValidateActivityID(activityID string) error {
	return validateString(activityID, "activityID")
}

// ValidateRecord checks the fields every stored record must carry.
// The other record stores share it.
func ValidateRecord(record *model.ReportRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	if !record.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, record.Type)
	}
	if record.Type != model.ReportOffers && len(record.Offers) > 0 {
		return fmt.Errorf("%w: offers on a %s record", ErrInvalidRecord, record.Type)
	}
	if record.Type != model.ReportRescheduled && record.RescheduleReason != "" {
		return fmt.Errorf("%w: reschedule reason on a %s record", ErrInvalidRecord, record.Type)
	}
	return nil
}

// ValidateFilter rejects filters whose range is empty or reversed.
func ValidateFilter(filter service.RecordFilter) error {
	if filter.Start != nil && filter.End != nil && !filter.Start.Before(*filter.End) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange, filter.Start, filter.End)
	}
	return nil
}
