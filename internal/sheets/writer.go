package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/meetlog/internal/classification"
	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

// Writer implements service.Mirror on a Google spreadsheet.
type Writer struct {
	api     spreadsheetAPI
	catalog *classification.Catalog
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
	known   map[string]bool
	config  Config
	mu      sync.Mutex
}

var _ service.Mirror = (*Writer)(nil)

// NewWriter creates a mirror writing into config.SpreadsheetID.
func NewWriter(ctx context.Context, config Config, catalog *classification.Catalog, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&googleAPI{service: srv, spreadsheetID: config.SpreadsheetID}, config, catalog, logger), nil
}

func newWriter(api spreadsheetAPI, config Config, catalog *classification.Catalog, logger *slog.Logger) *Writer {
	if catalog == nil {
		catalog = classification.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		api:     api,
		catalog: catalog,
		config:  config,
		logger:  logger,
		loc:     config.location(),
		now:     time.Now,
	}
}

func (w *Writer) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// MirrorOffers appends an offers row to the user's weekly sheet.
func (w *Writer) MirrorOffers(ctx context.Context, userID int64, at time.Time, offers []string, activityID string) error {
	labels := w.catalog.OfferLabels()
	at = at.In(w.loc)
	row, dropped := offerRow(labels, at, activityID, offers)
	if len(dropped) > 0 {
		w.logger.Debug("offers without a sheet column", "user_id", userID, "offers", dropped)
	}
	return w.append(ctx, SheetTitle(userID, at, w.loc), offerHeader(labels), row)
}

// MirrorReschedule appends a reschedule row to the user's weekly side sheet.
func (w *Writer) MirrorReschedule(ctx context.Context, userID int64, at time.Time, reason, comment string) error {
	at = at.In(w.loc)
	return w.append(ctx, SheetTitle(userID, at, w.loc)+RescheduleSuffix, rescheduleHeader, rescheduleRow(at, reason, comment))
}

// MirrorComment appends a comment row to the user's weekly side sheet.
func (w *Writer) MirrorComment(ctx context.Context, userID int64, at time.Time, comment string) error {
	at = at.In(w.loc)
	return w.append(ctx, SheetTitle(userID, at, w.loc)+CommentSuffix, commentHeader, commentRow(at, comment))
}

// append creates the sheet on first use and appends row to it. Writes are
// serialized so two reports cannot race to create the same sheet.
func (w *Writer) append(ctx context.Context, title string, header, row []any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureSheet(ctx, title, header); err != nil {
		return err
	}

	err := common.WithRetry(ctx, func() error {
		return w.api.AppendRow(ctx, title, row)
	}, w.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	w.logger.Debug("mirrored row", "sheet", title)
	return nil
}

func (w *Writer) ensureSheet(ctx context.Context, title string, header []any) error {
	if w.known == nil {
		titles, err := w.titles(ctx)
		if err != nil {
			return err
		}
		w.known = make(map[string]bool, len(titles))
		for _, t := range titles {
			w.known[t] = true
		}
	}
	if w.known[title] {
		return nil
	}

	err := common.WithRetry(ctx, func() error {
		return w.api.AddSheet(ctx, title, header, w.config.EnableFormatting)
	}, w.retryOptions())
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	w.known[title] = true
	w.logger.Info("created sheet", "sheet", title)
	return nil
}

func (w *Writer) titles(ctx context.Context) ([]string, error) {
	var titles []string
	err := common.WithRetry(ctx, func() error {
		var err error
		titles, err = w.api.SheetTitles(ctx)
		return err
	}, w.retryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return titles, nil
}

// FindByActivityID scans the offer sheets, newest first, for a row whose
// activity column equals activityID and rebuilds the record from it.
func (w *Writer) FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error) {
	titles, err := w.titles(ctx)
	if err != nil {
		return nil, err
	}

	for _, title := range slices.Backward(titles) {
		userID, ok := parseOfferSheetTitle(title)
		if !ok {
			continue
		}

		var rows [][]any
		err := common.WithRetry(ctx, func() error {
			var err error
			rows, err = w.api.ReadRows(ctx, title)
			return err
		}, w.retryOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet: %w", err)
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		for i := len(rows) - 1; i >= 1; i-- {
			if cellString(rows[i], 2) != activityID {
				continue
			}
			record, err := rebuildRecord(w.catalog, userID, header, rows[i], w.loc, w.now())
			if err != nil {
				w.logger.Warn("skipping unreadable row", "sheet", title, "row", i+1, "error", err)
				continue
			}
			return record, nil
		}
	}

	return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
}
