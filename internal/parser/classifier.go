// Package parser turns free-form meeting reports into structured records.
//
// A report is any text containing the trigger phrase "Мой вопрос:". The text
// after the trigger selects one of three grammars: a reschedule
// ("перенос ..."), a comment ("комментарий ..."), or a list of offers.
package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/meetlog/internal/classification"
	"github.com/Veraticus/meetlog/internal/model"
)

// Trigger is the marker phrase every report must contain.
const Trigger = "Мой вопрос:"

const (
	rescheduleKeyword = "перенос"
	commentKeyword    = "комментарий"
)

// ErrNoTrigger is returned when the text does not contain the trigger phrase.
var ErrNoTrigger = errors.New("trigger phrase not found")

var triggerRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(Trigger))

// Parser classifies report text against a catalog.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	catalog *classification.Catalog
	now     func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// New creates a parser. A nil catalog selects the built-in one.
func New(catalog *classification.Catalog, opts ...Option) *Parser {
	if catalog == nil {
		catalog = classification.Default()
	}
	p := &Parser{catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog the parser normalizes against.
func (p *Parser) Catalog() *classification.Catalog {
	return p.catalog
}

// HasTrigger reports whether text contains the trigger phrase.
func HasTrigger(text string) bool {
	return triggerRe.MatchString(text)
}

// Classify parses text written by userID into a record stamped with the
// current time. It returns ErrNoTrigger when text is not a report.
// An OFFERS record with no offers is a valid result.
func (p *Parser) Classify(userID int64, text string) (*model.ReportRecord, error) {
	_, end, ok := locateTrigger(text)
	if !ok {
		return nil, ErrNoTrigger
	}

	record := &model.ReportRecord{
		ID:           model.NewRecordID(),
		UserID:       userID,
		Timestamp:    p.now(),
		OriginalText: text,
		ActivityID:   ExtractActivityID(text),
		Offers:       []string{},
	}

	content := strings.TrimSpace(text[end:])
	if rest, ok := cutKeyword(content, rescheduleKeyword); ok {
		p.parseReschedule(record, rest)
		return record, nil
	}
	if rest, ok := cutKeyword(content, commentKeyword); ok {
		parseComment(record, rest)
		return record, nil
	}

	record.Type = model.ReportOffers
	record.Offers = p.parseOffers(content)
	return record, nil
}

func (p *Parser) parseOffers(content string) []string {
	offers := []string{}
	for _, line := range strings.Split(content, "\n") {
		if activityLineRe.MatchString(line) {
			continue
		}
		for _, token := range strings.Fields(line) {
			offers = append(offers, p.catalog.NormalizeOffer(token))
		}
	}
	return offers
}

func (p *Parser) parseReschedule(record *model.ReportRecord, rest string) {
	record.Type = model.ReportRescheduled
	record.RescheduleReason = p.catalog.MatchReason(rest).Label
	record.Comment = rest
}

func parseComment(record *model.ReportRecord, rest string) {
	record.Type = model.ReportComment
	record.Comment = rest
}

// locateTrigger returns the byte offsets of the first trigger phrase in text.
func locateTrigger(text string) (start, end int, ok bool) {
	loc := triggerRe.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// cutKeyword reports whether s starts with keyword, ignoring case, and
// returns the trimmed text after it. Whatever follows the keyword, separators
// included, is kept.
func cutKeyword(s, keyword string) (string, bool) {
	n := utf8.RuneCountInString(keyword)
	i := 0
	for pos := range s {
		if i == n {
			if !strings.EqualFold(s[:pos], keyword) {
				return "", false
			}
			return strings.TrimSpace(s[pos:]), true
		}
		i++
	}
	if i == n && strings.EqualFold(s, keyword) {
		return "", true
	}
	return "", false
}

