package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantLabel string
		wantShort string
	}{
		{
			name:      "midweek",
			now:       time.Date(2026, 10, 14, 15, 0, 0, 0, msk),
			wantStart: time.Date(2026, 10, 12, 0, 0, 0, 0, msk),
			wantLabel: "12–18 октября",
			wantShort: "12 окт-18 окт",
		},
		{
			name:      "monday midnight starts a new week",
			now:       time.Date(2026, 10, 19, 0, 0, 0, 0, msk),
			wantStart: time.Date(2026, 10, 19, 0, 0, 0, 0, msk),
			wantLabel: "19–25 октября",
			wantShort: "19 окт-25 окт",
		},
		{
			name:      "sunday night belongs to the previous monday",
			now:       time.Date(2026, 10, 18, 23, 59, 0, 0, msk),
			wantStart: time.Date(2026, 10, 12, 0, 0, 0, 0, msk),
			wantLabel: "12–18 октября",
			wantShort: "12 окт-18 окт",
		},
		{
			name:      "spans two months",
			now:       time.Date(2026, 10, 28, 9, 0, 0, 0, msk),
			wantStart: time.Date(2026, 10, 26, 0, 0, 0, 0, msk),
			wantLabel: "26 октября – 1 ноября 2026",
			wantShort: "26 окт-1 ноя",
		},
		{
			name:      "converted into report zone",
			now:       time.Date(2026, 10, 18, 22, 30, 0, 0, time.UTC),
			wantStart: time.Date(2026, 10, 19, 0, 0, 0, 0, msk),
			wantLabel: "19–25 октября",
			wantShort: "19 окт-25 окт",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CurrentWeek(tt.now, msk)
			assert.True(t, tt.wantStart.Equal(w.Start), "start %s", w.Start)
			assert.True(t, tt.wantStart.AddDate(0, 0, 7).Equal(w.End), "end %s", w.End)
			assert.Equal(t, tt.wantLabel, w.Label())
			assert.Equal(t, tt.wantShort, w.ShortLabel())
			assert.True(t, w.Contains(tt.now))
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := CurrentWeek(time.Date(2026, 10, 14, 12, 0, 0, 0, msk), msk)

	assert.True(t, w.Contains(time.Date(2026, 10, 12, 0, 0, 0, 0, msk)))
	assert.True(t, w.Contains(time.Date(2026, 10, 18, 23, 59, 59, 0, msk)))
	assert.False(t, w.Contains(time.Date(2026, 10, 11, 23, 59, 59, 0, msk)))
	assert.False(t, w.Contains(time.Date(2026, 10, 19, 0, 0, 0, 0, msk)))
}

func TestRolling(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, msk)
	w := Rolling(now, msk)

	assert.True(t, w.Contains(now))
	assert.True(t, w.Contains(now.AddDate(0, 0, -7)))
	assert.False(t, w.Contains(now.AddDate(0, 0, -7).Add(-time.Second)))
	assert.False(t, w.Contains(now.Add(time.Second)))
	assert.Equal(t, "7–14 октября", w.Label())
}

func TestParseWindowMode(t *testing.T) {
	mode, err := ParseWindowMode("")
	require.NoError(t, err)
	assert.Equal(t, WindowWeek, mode)

	mode, err = ParseWindowMode("rolling")
	require.NoError(t, err)
	assert.Equal(t, WindowRolling, mode)

	_, err = ParseWindowMode("month")
	assert.Error(t, err)

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, msk)
	assert.Equal(t, Rolling(now, msk), NewWindow(WindowRolling, now, msk))
	assert.Equal(t, CurrentWeek(now, msk), NewWindow(WindowWeek, now, msk))
}
