// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportType tells which grammar a status report was parsed with.
type ReportType string

// Report type constants.
const (
	ReportOffers      ReportType = "OFFERS"
	ReportRescheduled ReportType = "RESCHEDULED"
	ReportComment     ReportType = "COMMENT"
)

// DisplayName returns the human-readable name of the report type.
func (t ReportType) DisplayName() string {
	switch t {
	case ReportOffers:
		return "Проведена"
	case ReportRescheduled:
		return "Перенесена"
	case ReportComment:
		return "Комментарий"
	default:
		return string(t)
	}
}

// Valid reports whether t is one of the known report types.
func (t ReportType) Valid() bool {
	switch t {
	case ReportOffers, ReportRescheduled, ReportComment:
		return true
	}
	return false
}

// ReportRecord is one classified status update.
// Records are created by the parser and never modified afterwards.
type ReportRecord struct {
	Timestamp        time.Time  `json:"timestamp"`
	ID               string     `json:"id"`
	Type             ReportType `json:"type"`
	OriginalText     string     `json:"original_text"`
	RescheduleReason string     `json:"reschedule_reason,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	ActivityID       string     `json:"activity_id,omitempty"`
	Offers           []string   `json:"offers"`
	UserID           int64      `json:"user_id"`
}

// NewRecordID returns a fresh record identifier.
func NewRecordID() string {
	return uuid.NewString()
}

// legacyNamespace scopes identifiers derived for imported legacy entries.
var legacyNamespace = uuid.MustParse("5f0e3c1a-8d2b-4c7e-9a61-3b4d2e7f9c10")

// DeriveRecordID returns an identifier fixed by the record's author, time and
// text, so the same entry decoded twice keeps its ID. seq tells apart
// identical entries within one source.
func DeriveRecordID(userID int64, ts time.Time, text string, seq int) string {
	key := fmt.Sprintf("%d|%s|%d|%s", userID, ts.UTC().Format(time.RFC3339Nano), seq, text)
	return uuid.NewSHA1(legacyNamespace, []byte(key)).String()
}

// HasComment reports whether the record carries free text worth listing
// in the weekly comment summary.
func (r *ReportRecord) HasComment() bool {
	return r.Type == ReportComment || r.Comment != ""
}
