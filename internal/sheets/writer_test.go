package sheets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meetlog/internal/classification"
	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
)

var msk = time.FixedZone("MSK", 3*60*60)

// fakeAPI keeps sheets in memory, rendering cells the way the API reads
// them back.
type fakeAPI struct {
	appendErr error
	sheets    map[string][][]any
	order     []string
	formatted []string
	adds      int
	mu        sync.Mutex
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{sheets: make(map[string][][]any)}
}

func (f *fakeAPI) SheetTitles(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...), nil
}

func (f *fakeAPI) AddSheet(_ context.Context, title string, header []any, format bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sheets[title]; ok {
		return common.Permanent(errors.New("sheet already exists"))
	}
	f.adds++
	f.order = append(f.order, title)
	f.sheets[title] = [][]any{header}
	if format {
		f.formatted = append(f.formatted, title)
	}
	return nil
}

func (f *fakeAPI) AppendRow(_ context.Context, title string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.sheets[title] = append(f.sheets[title], row)
	return nil
}

func (f *fakeAPI) ReadRows(_ context.Context, title string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.sheets[title]
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out, nil
}

func newTestWriter(api *fakeAPI, now time.Time) *Writer {
	cfg := DefaultConfig()
	cfg.RetryAttempts = 1
	cfg.RetryDelay = time.Millisecond
	w := newWriter(api, cfg, classification.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.loc = msk
	w.now = func() time.Time { return now }
	return w
}

func TestWriter_MirrorOffers_CreatesWeeklySheet(t *testing.T) {
	api := newFakeAPI()
	at := time.Date(2026, 10, 20, 14, 5, 0, 0, msk)
	w := newTestWriter(api, at)
	ctx := context.Background()

	require.NoError(t, w.MirrorOffers(ctx, 42, at, []string{"КК", "НС", "КК"}, "ACT12345678901"))
	require.NoError(t, w.MirrorOffers(ctx, 42, at.Add(time.Hour), []string{"МП"}, ""))

	title := "user42_19 окт-25 окт"
	assert.Equal(t, []string{title}, api.order)
	assert.Equal(t, 1, api.adds)
	assert.Equal(t, []string{title}, api.formatted)

	rows := api.sheets[title]
	require.Len(t, rows, 3)

	labels := classification.Default().OfferLabels()
	header := rows[0]
	require.Len(t, header, 3+len(labels))
	assert.Equal(t, []any{"Дата", "Время", "ID активности"}, header[:3])
	assert.Equal(t, labels[0], header[3])

	first := rows[1]
	assert.Equal(t, "20.10", first[0])
	assert.Equal(t, "14:05", first[1])
	assert.Equal(t, "ACT12345678901", first[2])
	for i, l := range labels {
		switch l {
		case "КК":
			assert.Equal(t, 2, first[3+i])
		case "НС":
			assert.Equal(t, 1, first[3+i])
		default:
			assert.Equal(t, "", first[3+i], l)
		}
	}
}

func TestWriter_SideSheets(t *testing.T) {
	api := newFakeAPI()
	at := time.Date(2026, 10, 25, 23, 30, 0, 0, msk)
	w := newTestWriter(api, at)
	ctx := context.Background()

	require.NoError(t, w.MirrorReschedule(ctx, 7, at, "клиент не пришел", "не пришел"))
	require.NoError(t, w.MirrorComment(ctx, 7, at, "перезвонить"))

	base := "user7_19 окт-25 окт"
	assert.Equal(t, [][]any{
		{"Дата", "Время", "Причина", "Комментарий"},
		{"25.10", "23:30", "клиент не пришел", "не пришел"},
	}, api.sheets[base+RescheduleSuffix])
	assert.Equal(t, [][]any{
		{"Дата", "Время", "Комментарий"},
		{"25.10", "23:30", "перезвонить"},
	}, api.sheets[base+CommentSuffix])
}

func TestWriter_UsesExistingSheet(t *testing.T) {
	api := newFakeAPI()
	at := time.Date(2026, 10, 20, 9, 0, 0, 0, msk)
	title := SheetTitle(1, at, msk) + CommentSuffix
	require.NoError(t, api.AddSheet(context.Background(), title, commentHeader, false))

	w := newTestWriter(api, at)
	require.NoError(t, w.MirrorComment(context.Background(), 1, at, "ок"))

	assert.Equal(t, 1, api.adds)
	assert.Len(t, api.sheets[title], 2)
}

func TestWriter_AppendError(t *testing.T) {
	api := newFakeAPI()
	api.appendErr = common.Permanent(errors.New("quota"))
	at := time.Date(2026, 10, 20, 9, 0, 0, 0, msk)
	w := newTestWriter(api, at)

	err := w.MirrorComment(context.Background(), 1, at, "ок")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestWriter_FindByActivityID(t *testing.T) {
	api := newFakeAPI()
	at := time.Date(2026, 10, 20, 14, 5, 0, 0, msk)
	w := newTestWriter(api, at.Add(24*time.Hour))
	ctx := context.Background()

	require.NoError(t, w.MirrorOffers(ctx, 42, at, []string{"КК", "КК", "МП"}, "ACT12345678901"))
	require.NoError(t, w.MirrorReschedule(ctx, 42, at, "другое коммент", "ACT12345678901"))
	require.NoError(t, w.MirrorOffers(ctx, 43, at, []string{"НС"}, "OTHER1234567"))

	record, err := w.FindByActivityID(ctx, "ACT12345678901")
	require.NoError(t, err)
	assert.Equal(t, int64(42), record.UserID)
	assert.Equal(t, model.ReportOffers, record.Type)
	assert.Equal(t, []string{"КК", "КК", "МП"}, record.Offers)
	assert.Equal(t, "ACT12345678901", record.ActivityID)
	assert.True(t, at.Equal(record.Timestamp))
	assert.NotEmpty(t, record.ID)

	reparsed, err := parser.New(nil).Classify(42, record.OriginalText)
	require.NoError(t, err)
	assert.Equal(t, record.Offers, reparsed.Offers)

	_, err = w.FindByActivityID(ctx, "MISSING12345")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
