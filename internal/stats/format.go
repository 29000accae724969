package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/meetlog/internal/model"
)

const (
	offersEmpty      = "📊 Статистика продаж за неделю пуста.\nДобавьте встречи с офферами!"
	offersHeader     = "📊 Статистика продаж за неделю:\n\n"
	reschedulesEmpty = "📅 Переносы за неделю отсутствуют.\nОтлично - встречи проходят по плану!"
	reschedulesHead  = "📅 Статистика переносов за неделю:\n\n"
	commentsEmpty    = "📝 Встречи с комментариями за неделю не найдены."
	commentsHeader   = "📝 Встречи с комментариями за неделю:\n\n"
)

func weekLine(w Window) string {
	return "🗓 " + w.Label() + "\n"
}

func writeCounts(b *strings.Builder, c *Counts) {
	for _, e := range c.Sorted() {
		fmt.Fprintf(b, "• %s: %d\n", e.Label, e.Count)
	}
}

// FormatOffers renders offer counts, most frequent first.
func FormatOffers(w Window, c *Counts) string {
	var b strings.Builder
	b.WriteString(weekLine(w))
	if c == nil || c.Len() == 0 {
		b.WriteString(offersEmpty)
		return b.String()
	}
	b.WriteString(offersHeader)
	writeCounts(&b, c)
	return b.String()
}

// FormatReschedules renders reschedule reason counts followed by their total.
func FormatReschedules(w Window, c *Counts) string {
	var b strings.Builder
	b.WriteString(weekLine(w))
	if c == nil || c.Len() == 0 {
		b.WriteString(reschedulesEmpty)
		return b.String()
	}
	b.WriteString(reschedulesHead)
	writeCounts(&b, c)
	fmt.Fprintf(&b, "\nВсего переносов: %d", c.Total())
	return b.String()
}

// DisplayKind is the short label shown next to a commented record.
func DisplayKind(t model.ReportType) string {
	if t == model.ReportRescheduled {
		return "Перенос"
	}
	return "Встреча"
}

// FormatComments renders commented records in the order given, with
// timestamps shown in loc.
func FormatComments(w Window, records []model.ReportRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	b.WriteString(weekLine(w))
	if len(records) == 0 {
		b.WriteString(commentsEmpty)
		return b.String()
	}
	b.WriteString(commentsHeader)
	for _, r := range records {
		fmt.Fprintf(&b, "🕐 %s (%s)\n💬 %s\n\n",
			r.Timestamp.In(loc).Format("02.01 15:04"), DisplayKind(r.Type), r.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}
