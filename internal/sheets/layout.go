package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/meetlog/internal/classification"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
	"github.com/Veraticus/meetlog/internal/stats"
)

// Sheet title suffixes for the per-week side sheets.
const (
	RescheduleSuffix = "_Переносы"
	CommentSuffix    = "_Комментарии"
)

const (
	dateLayout = "02.01"
	timeLayout = "15:04"
)

var (
	rescheduleHeader = []any{"Дата", "Время", "Причина", "Комментарий"}
	commentHeader    = []any{"Дата", "Время", "Комментарий"}
)

// SheetTitle names the offer sheet holding at for userID, e.g.
// "user42_19 окт-25 окт".
func SheetTitle(userID int64, at time.Time, loc *time.Location) string {
	return fmt.Sprintf("user%d_%s", userID, stats.CurrentWeek(at, loc).ShortLabel())
}

// offerHeader lists the fixed columns followed by every catalog label.
func offerHeader(labels []string) []any {
	header := make([]any, 0, 3+len(labels))
	header = append(header, "Дата", "Время", "ID активности")
	for _, l := range labels {
		header = append(header, l)
	}
	return header
}

// offerRow renders one offers report. Label columns hold the number of times
// the offer was named, empty when zero. Offers outside labels are dropped and
// returned.
func offerRow(labels []string, at time.Time, activityID string, offers []string) (row []any, dropped []string) {
	counts := stats.NewCounts()
	for _, o := range offers {
		counts.Add(o)
	}

	row = make([]any, 0, 3+len(labels))
	row = append(row, at.Format(dateLayout), at.Format(timeLayout), activityID)
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
		if n := counts.Get(l); n > 0 {
			row = append(row, n)
		} else {
			row = append(row, "")
		}
	}
	for _, c := range counts.Sorted() {
		if !known[c.Label] {
			dropped = append(dropped, c.Label)
		}
	}
	return row, dropped
}

func rescheduleRow(at time.Time, reason, comment string) []any {
	return []any{at.Format(dateLayout), at.Format(timeLayout), reason, comment}
}

func commentRow(at time.Time, comment string) []any {
	return []any{at.Format(dateLayout), at.Format(timeLayout), comment}
}

// parseOfferSheetTitle extracts the user id from an offer sheet title.
// Side sheets and foreign sheets are rejected.
func parseOfferSheetTitle(title string) (int64, bool) {
	if strings.HasSuffix(title, RescheduleSuffix) || strings.HasSuffix(title, CommentSuffix) {
		return 0, false
	}
	rest, ok := strings.CutPrefix(title, "user")
	if !ok {
		return 0, false
	}
	idPart, _, ok := strings.Cut(rest, "_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// cellString renders a cell value read back from the API.
func cellString(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// rebuildRecord turns an offer sheet row back into a record. The year is not
// stored, so the most recent matching date not after now is used.
func rebuildRecord(catalog *classification.Catalog, userID int64, header, row []any, loc *time.Location, now time.Time) (*model.ReportRecord, error) {
	at, err := rowTime(cellString(row, 0), cellString(row, 1), loc, now)
	if err != nil {
		return nil, err
	}

	aliases := firstAliases(catalog)
	offers := []string{}
	words := []string{}
	for col := 3; col < len(header); col++ {
		n, err := strconv.Atoi(cellString(row, col))
		if err != nil || n <= 0 {
			continue
		}
		label := cellString(header, col)
		word := aliases[label]
		if word == "" {
			word = strings.ToLower(label)
		}
		for range n {
			offers = append(offers, label)
			words = append(words, word)
		}
	}

	return &model.ReportRecord{
		ID:           model.NewRecordID(),
		UserID:       userID,
		Timestamp:    at,
		Type:         model.ReportOffers,
		OriginalText: parser.Trigger + " " + strings.Join(words, " "),
		Offers:       offers,
		ActivityID:   cellString(row, 2),
	}, nil
}

func rowTime(date, clock string, loc *time.Location, now time.Time) (time.Time, error) {
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse row time %q %q: %w", date, clock, err)
	}
	local := now.In(loc)
	at := time.Date(local.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	if at.After(local) {
		at = at.AddDate(-1, 0, 0)
	}
	return at, nil
}

// firstAliases maps each label to its first single-word alias, which the
// parser can read back.
func firstAliases(catalog *classification.Catalog) map[string]string {
	out := make(map[string]string)
	for _, o := range catalog.Offers() {
		for _, a := range o.Aliases {
			if !strings.ContainsFunc(a, unicode.IsSpace) {
				out[o.Label] = a
				break
			}
		}
	}
	return out
}
