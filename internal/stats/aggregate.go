package stats

import (
	"slices"
	"sort"

	"github.com/Veraticus/meetlog/internal/model"
)

// Count is one label with its number of occurrences.
type Count struct {
	Label string
	Count int
}

// Counts is a multiset of labels that remembers the order labels were first
// seen in.
type Counts struct {
	counts map[string]int
	order  []string
}

// NewCounts creates an empty multiset.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Add records one occurrence of label.
func (c *Counts) Add(label string) {
	c.AddN(label, 1)
}

// AddN records n occurrences of label.
func (c *Counts) AddN(label string, n int) {
	if n <= 0 {
		return
	}
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label] += n
}

// Get returns the number of occurrences of label.
func (c *Counts) Get(label string) int {
	return c.counts[label]
}

// Len returns the number of distinct labels.
func (c *Counts) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Map returns a copy of the counts keyed by label.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Sorted returns the entries by descending count. Equal counts keep
// first-seen order.
func (c *Counts) Sorted() []Count {
	entries := make([]Count, 0, len(c.order))
	for _, label := range c.order {
		entries = append(entries, Count{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// ForUser returns the records of userID that fall inside w, oldest first.
// The input slice is not modified.
func ForUser(records []model.ReportRecord, userID int64, w Window) []model.ReportRecord {
	var out []model.ReportRecord
	for _, r := range records {
		if r.UserID == userID && w.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// OfferStats counts canonical offer labels across the user's OFFERS records
// inside w. Repeated offers are counted every time they appear.
func OfferStats(records []model.ReportRecord, userID int64, w Window) *Counts {
	counts := NewCounts()
	for _, r := range ForUser(records, userID, w) {
		if r.Type != model.ReportOffers {
			continue
		}
		for _, offer := range r.Offers {
			counts.Add(offer)
		}
	}
	return counts
}

// RescheduleStats counts reschedule reasons across the user's RESCHEDULED
// records inside w.
func RescheduleStats(records []model.ReportRecord, userID int64, w Window) *Counts {
	counts := NewCounts()
	for _, r := range ForUser(records, userID, w) {
		if r.Type == model.ReportRescheduled && r.RescheduleReason != "" {
			counts.Add(r.RescheduleReason)
		}
	}
	return counts
}

// CommentedRecords returns the user's records inside w that are comments or
// carry a comment, oldest first.
func CommentedRecords(records []model.ReportRecord, userID int64, w Window) []model.ReportRecord {
	var out []model.ReportRecord
	for _, r := range ForUser(records, userID, w) {
		if r.HasComment() {
			out = append(out, r)
		}
	}
	return out
}

// WithoutUser returns every record not owned by userID, in the original
// order. Applying it twice gives the same result as applying it once.
func WithoutUser(records []model.ReportRecord, userID int64) []model.ReportRecord {
	out := make([]model.ReportRecord, 0, len(records))
	for _, r := range records {
		if r.UserID != userID {
			out = append(out, r)
		}
	}
	return slices.Clip(out)
}
