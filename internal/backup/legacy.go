package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
)

// legacyMeeting is one entry of a meetings.json written by the previous bot.
// Timestamps are local date-times without a zone, either as an ISO string or
// as a [year, month, day, hour, minute, second, nanos] array.
type legacyMeeting struct {
	Timestamp        json.RawMessage `json:"timestamp"`
	MeetingType      string          `json:"meetingType"`
	OriginalText     string          `json:"originalText"`
	RescheduleReason string          `json:"rescheduleReason"`
	Comment          string          `json:"comment"`
	Offers           []string        `json:"offers"`
	UserID           int64           `json:"userId"`
}

type formatProbe struct {
	ID          *string `json:"id"`
	MeetingType *string `json:"meetingType"`
}

// Decode reads a record file in either the current format or the legacy
// meetings.json format. Legacy timestamps are interpreted in loc. Legacy
// entries get IDs derived from their content, so decoding the same file twice
// yields the same records.
func Decode(data []byte, loc *time.Location) ([]model.ReportRecord, error) {
	if loc == nil {
		loc = time.Local
	}

	var probes []formatProbe
	if err := json.Unmarshal(data, &probes); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
	}
	legacy := len(probes) > 0 && probes[0].ID == nil && probes[0].MeetingType != nil

	if !legacy {
		var records []model.ReportRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
		}
		if records == nil {
			records = []model.ReportRecord{}
		}
		return records, nil
	}

	var meetings []legacyMeeting
	if err := json.Unmarshal(data, &meetings); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabaseCorrupted, err)
	}

	records := make([]model.ReportRecord, 0, len(meetings))
	seen := make(map[string]int, len(meetings))
	for i, m := range meetings {
		record, err := m.toRecord(loc)
		if err != nil {
			return nil, fmt.Errorf("legacy entry %d: %w", i, err)
		}
		key := fmt.Sprintf("%d|%d|%s", record.UserID, record.Timestamp.UnixNano(), record.OriginalText)
		record.ID = model.DeriveRecordID(record.UserID, record.Timestamp, record.OriginalText, seen[key])
		seen[key]++
		records = append(records, *record)
	}
	return records, nil
}

// DecodeFile reads and decodes a record file.
func DecodeFile(path string, loc *time.Location) ([]model.ReportRecord, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the operator
	if err != nil {
		return nil, err
	}
	return Decode(data, loc)
}

func (m legacyMeeting) toRecord(loc *time.Location) (*model.ReportRecord, error) {
	ts, err := parseLegacyTime(m.Timestamp, loc)
	if err != nil {
		return nil, err
	}

	record := &model.ReportRecord{
		UserID:       m.UserID,
		Timestamp:    ts,
		OriginalText: m.OriginalText,
		ActivityID:   parser.ExtractActivityID(m.OriginalText),
		Offers:       []string{},
	}

	switch m.MeetingType {
	case "RESCHEDULED":
		record.Type = model.ReportRescheduled
		record.RescheduleReason = m.RescheduleReason
		record.Comment = m.Comment
	case "COMMENT":
		record.Type = model.ReportComment
		record.Comment = m.Comment
	case "COMPLETED", "":
		record.Type = model.ReportOffers
		if m.Offers != nil {
			record.Offers = m.Offers
		}
	default:
		return nil, fmt.Errorf("unknown meeting type %q", m.MeetingType)
	}
	return record, nil
}

func parseLegacyTime(raw json.RawMessage, loc *time.Location) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	if raw[0] == '[' {
		var parts []int
		if err := json.Unmarshal(raw, &parts); err != nil {
			return time.Time{}, fmt.Errorf("bad timestamp %s: %w", raw, err)
		}
		if len(parts) < 5 {
			return time.Time{}, fmt.Errorf("bad timestamp %s", raw)
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], loc), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %s: %w", raw, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
