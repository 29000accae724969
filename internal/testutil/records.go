package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

// BaseTime is the Monday 09:00 UTC that fixtures are stamped relative to.
var BaseTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

var fixtureSeq atomic.Int64

// RecordBuilder constructs a ReportRecord fluently.
type RecordBuilder struct {
	record model.ReportRecord
}

// NewRecord starts an OFFERS record for userID at BaseTime with a unique ID.
func NewRecord(userID int64) *RecordBuilder {
	return &RecordBuilder{record: model.ReportRecord{
		ID:        fmt.Sprintf("rec-%d", fixtureSeq.Add(1)),
		UserID:    userID,
		Timestamp: BaseTime,
		Type:      model.ReportOffers,
		Offers:    []string{},
	}}
}

// ID overrides the generated record ID.
func (b *RecordBuilder) ID(id string) *RecordBuilder {
	b.record.ID = id
	return b
}

// At sets the record timestamp.
func (b *RecordBuilder) At(t time.Time) *RecordBuilder {
	b.record.Timestamp = t
	return b
}

// After places the record d after BaseTime.
func (b *RecordBuilder) After(d time.Duration) *RecordBuilder {
	b.record.Timestamp = BaseTime.Add(d)
	return b
}

// Offers makes the record an OFFERS report naming labels.
func (b *RecordBuilder) Offers(labels ...string) *RecordBuilder {
	b.record.Type = model.ReportOffers
	b.record.Offers = append([]string{}, labels...)
	b.record.OriginalText = "Мой вопрос: " + strings.ToLower(strings.Join(labels, " "))
	return b
}

// Reschedule makes the record a RESCHEDULED report.
func (b *RecordBuilder) Reschedule(reason, comment string) *RecordBuilder {
	b.record.Type = model.ReportRescheduled
	b.record.Offers = []string{}
	b.record.RescheduleReason = reason
	b.record.Comment = comment
	b.record.OriginalText = "Мой вопрос: перенос " + comment
	return b
}

// Comment makes the record a COMMENT report.
func (b *RecordBuilder) Comment(text string) *RecordBuilder {
	b.record.Type = model.ReportComment
	b.record.Offers = []string{}
	b.record.Comment = text
	b.record.OriginalText = "Мой вопрос: комментарий " + text
	return b
}

// Activity attaches an activity id.
func (b *RecordBuilder) Activity(id string) *RecordBuilder {
	b.record.ActivityID = id
	return b
}

// Text overrides the original text.
func (b *RecordBuilder) Text(text string) *RecordBuilder {
	b.record.OriginalText = text
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.ReportRecord {
	r := b.record
	r.Offers = append([]string{}, b.record.Offers...)
	return r
}

// Ptr returns a pointer to a copy of the record.
func (b *RecordBuilder) Ptr() *model.ReportRecord {
	r := b.Build()
	return &r
}

// UserFilter matches every record of userID.
func UserFilter(userID int64) service.RecordFilter {
	return service.RecordFilter{UserID: &userID}
}
