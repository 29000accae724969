package parser

import (
	"fmt"
	"strings"

	"github.com/Veraticus/meetlog/internal/model"
)

// Summary renders the structured content of a record on a single line.
func Summary(record *model.ReportRecord) string {
	switch record.Type {
	case model.ReportRescheduled:
		return fmt.Sprintf("Перенос (%s): %s", record.RescheduleReason, record.Comment)
	case model.ReportComment:
		return "Комментарий: " + record.Comment
	default:
		if len(record.Offers) == 0 {
			return "Офферы: —"
		}
		return "Офферы: " + strings.Join(record.Offers, ", ")
	}
}

// Annotate rewrites the record's original text with its summary spliced in
// right after the trigger phrase. The original remainder follows on the next
// line.
func Annotate(record *model.ReportRecord) (string, error) {
	text := record.OriginalText
	_, end, ok := locateTrigger(text)
	if !ok {
		return "", ErrNoTrigger
	}

	var b strings.Builder
	b.WriteString(text[:end])
	b.WriteByte(' ')
	b.WriteString(Summary(record))
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		b.WriteByte('\n')
		b.WriteString(rest)
	}
	return b.String(), nil
}
