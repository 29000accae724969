// Package stats aggregates report records into weekly statistics and renders
// them as chat-ready summaries.
package stats

import (
	"fmt"
	"time"
)

// WindowMode selects how the reporting window is derived from the current time.
type WindowMode string

// Window modes.
const (
	// WindowWeek is the calendar week, Monday 00:00 through Sunday 23:59.
	WindowWeek WindowMode = "week"
	// WindowRolling is the seven days ending now.
	WindowRolling WindowMode = "rolling"
)

// ParseWindowMode validates a configured window mode. Empty selects WindowWeek.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(s) {
	case "", WindowWeek:
		return WindowWeek, nil
	case WindowRolling:
		return WindowRolling, nil
	default:
		return "", fmt.Errorf("unknown report window %q (want %q or %q)", s, WindowWeek, WindowRolling)
	}
}

// Window is the half-open interval [Start, End) records are aggregated over.
type Window struct {
	Start time.Time
	End   time.Time
}

var genitiveMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var shortMonths = [...]string{
	"янв", "фев", "мар", "апр", "мая", "июн",
	"июл", "авг", "сен", "окт", "ноя", "дек",
}

// CurrentWeek returns the Monday-to-Sunday week containing now in loc.
func CurrentWeek(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Rolling returns the seven days ending at now.
func Rolling(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return Window{Start: local.AddDate(0, 0, -7), End: local.Add(time.Nanosecond)}
}

// NewWindow derives the window for mode at now.
func NewWindow(mode WindowMode, now time.Time, loc *time.Location) Window {
	if mode == WindowRolling {
		return Rolling(now, loc)
	}
	return CurrentWeek(now, loc)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// last returns the calendar day the window ends on.
func (w Window) last() time.Time {
	return w.End.Add(-time.Nanosecond)
}

// Label renders the window as "13–19 октября", or as
// "27 октября – 2 ноября 2026" when it spans two months.
func (w Window) Label() string {
	first, last := w.Start, w.last().In(w.Start.Location())
	if first.Year() == last.Year() && first.Month() == last.Month() {
		return fmt.Sprintf("%d–%d %s", first.Day(), last.Day(), genitiveMonths[first.Month()-1])
	}
	return fmt.Sprintf("%d %s – %d %s %d",
		first.Day(), genitiveMonths[first.Month()-1],
		last.Day(), genitiveMonths[last.Month()-1], last.Year())
}

// ShortLabel renders the window as "13 окт-19 окт", suitable for sheet titles.
func (w Window) ShortLabel() string {
	first, last := w.Start, w.last().In(w.Start.Location())
	return fmt.Sprintf("%d %s-%d %s",
		first.Day(), shortMonths[first.Month()-1],
		last.Day(), shortMonths[last.Month()-1])
}
