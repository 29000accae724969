// Package engine orchestrates report handling: classification, persistence,
// mirroring, weekly summaries, reset and activity lookup.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/stats"
)

// ErrNoOffers is returned when an offers report names no offers. Nothing is
// stored in that case.
var ErrNoOffers = errors.New("no offers found")

// User-facing messages carried by persistence failures.
const (
	MsgSaveUnavailable  = "хранилище недоступно, встреча не сохранена. Попробуйте позже"
	MsgResetUnavailable = "хранилище недоступно, статистика не очищена. Попробуйте позже"
)

// Engine handles reports for all users. Saves and resets of one user are
// serialized; different users proceed in parallel.
type Engine struct {
	store  service.RecordStore
	mirror service.Mirror
	parser *parser.Parser
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
	locks  sync.Map
	window stats.WindowMode
}

// Config holds configuration options for the engine.
type Config struct {
	Mirror   service.Mirror
	Location *time.Location
	Logger   *slog.Logger
	Clock    func() time.Time
	Window   stats.WindowMode
}

// DefaultTimeZone is the zone reporting weeks are cut in unless configured.
const DefaultTimeZone = "Europe/Moscow"

// DefaultConfig returns the default configuration: Moscow weeks, the system
// clock and the default logger.
func DefaultConfig() Config {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return Config{
		Location: loc,
		Window:   stats.WindowWeek,
		Clock:    time.Now,
		Logger:   slog.Default(),
	}
}

// NewWithConfig creates an engine. Unset config fields take their
// DefaultConfig values.
func NewWithConfig(store service.RecordStore, p *parser.Parser, config Config) *Engine {
	if p == nil {
		p = parser.New(nil)
	}
	defaults := DefaultConfig()
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Window == "" {
		config.Window = defaults.Window
	}
	return &Engine{
		store:  store,
		mirror: config.Mirror,
		parser: p,
		loc:    config.Location,
		logger: config.Logger,
		now:    config.Clock,
		window: config.Window,
	}
}

// Parser returns the engine's parser.
func (e *Engine) Parser() *parser.Parser {
	return e.parser
}

// Window returns the reporting window containing the current time.
func (e *Engine) Window() stats.Window {
	return stats.NewWindow(e.window, e.now(), e.loc)
}

func (e *Engine) userLock(userID int64) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Submit classifies text and stores the resulting record. It returns
// parser.ErrNoTrigger when text is not a report and ErrNoOffers when an
// offers report is empty. Mirror failures are logged, never returned.
func (e *Engine) Submit(ctx context.Context, userID int64, text string) (*model.ReportRecord, error) {
	record, err := e.parser.Classify(userID, text)
	if err != nil {
		return nil, err
	}
	if record.Type == model.ReportOffers && len(record.Offers) == 0 {
		return nil, ErrNoOffers
	}

	mu := e.userLock(userID)
	mu.Lock()
	err = e.store.SaveRecord(ctx, record)
	mu.Unlock()
	if err != nil {
		return nil, common.NewUserError(MsgSaveUnavailable, fmt.Errorf("save report: %w", err))
	}

	common.LogInfo(ctx, e.logger, "report saved", common.Fields{
		"user_id":   userID,
		"type":      record.Type,
		"record_id": record.ID,
		"offers":    len(record.Offers),
	})

	e.mirrorRecord(ctx, record)
	return record, nil
}

func (e *Engine) mirrorRecord(ctx context.Context, record *model.ReportRecord) {
	if e.mirror == nil {
		return
	}

	var err error
	switch record.Type {
	case model.ReportOffers:
		err = e.mirror.MirrorOffers(ctx, record.UserID, record.Timestamp, record.Offers, record.ActivityID)
	case model.ReportRescheduled:
		err = e.mirror.MirrorReschedule(ctx, record.UserID, record.Timestamp, record.RescheduleReason, record.Comment)
	case model.ReportComment:
		err = e.mirror.MirrorComment(ctx, record.UserID, record.Timestamp, record.Comment)
	}
	if err != nil {
		common.LogWarn(ctx, e.logger, err, "mirror write failed", common.Fields{
			"user_id": record.UserID,
			"type":    record.Type,
		})
	}
}

// snapshot loads the user's records inside the current window.
func (e *Engine) snapshot(ctx context.Context, userID int64) ([]model.ReportRecord, stats.Window, error) {
	w := e.Window()
	records, err := e.store.LoadRecords(ctx, service.RecordFilter{
		UserID: &userID,
		Start:  &w.Start,
		End:    &w.End,
	})
	if err != nil {
		return nil, w, fmt.Errorf("load records: %w", err)
	}
	return records, w, nil
}

// OfferReport renders the user's offer counts for the current window.
func (e *Engine) OfferReport(ctx context.Context, userID int64) (string, error) {
	records, w, err := e.snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	return stats.FormatOffers(w, stats.OfferStats(records, userID, w)), nil
}

// RescheduleReport renders the user's reschedule reasons for the current
// window.
func (e *Engine) RescheduleReport(ctx context.Context, userID int64) (string, error) {
	records, w, err := e.snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	return stats.FormatReschedules(w, stats.RescheduleStats(records, userID, w)), nil
}

// CommentReport renders the user's commented records for the current window.
func (e *Engine) CommentReport(ctx context.Context, userID int64) (string, error) {
	records, w, err := e.snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	return stats.FormatComments(w, stats.CommentedRecords(records, userID, w), e.loc), nil
}

// Reset deletes every record of userID and returns how many were removed.
// Resetting an empty user removes nothing and succeeds.
func (e *Engine) Reset(ctx context.Context, userID int64) (int, error) {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	removed, err := e.store.DeleteUserRecords(ctx, userID)
	if err != nil {
		return 0, common.NewUserError(MsgResetUnavailable, fmt.Errorf("reset user %d: %w", userID, err))
	}
	common.LogInfo(ctx, e.logger, "user data reset", common.Fields{"user_id": userID, "removed": removed})
	return removed, nil
}

// LookupActivity finds the record carrying activityID in the store, then in
// the mirror. It returns common.ErrNotFound when neither has it.
func (e *Engine) LookupActivity(ctx context.Context, activityID string) (*model.ReportRecord, error) {
	if strings.TrimSpace(activityID) == "" {
		return nil, fmt.Errorf("empty activity id: %w", common.ErrNotFound)
	}

	record, err := e.store.FindByActivityID(ctx, activityID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("lookup activity: %w", err)
	}

	if e.mirror == nil {
		return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
	}

	record, err = e.mirror.FindByActivityID(ctx, activityID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		common.LogWarn(ctx, e.logger, err, "mirror lookup failed", common.Fields{"activity_id": activityID})
	}
	return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
}

// Annotate classifies text without saving it and returns text with the
// summary spliced in after the trigger phrase.
func (e *Engine) Annotate(_ context.Context, userID int64, text string) (string, error) {
	record, err := e.parser.Classify(userID, text)
	if err != nil {
		return "", err
	}
	return parser.Annotate(record)
}

// AnnotateActivity looks up activityID and annotates the found record's
// original text.
func (e *Engine) AnnotateActivity(ctx context.Context, activityID string) (string, error) {
	record, err := e.LookupActivity(ctx, activityID)
	if err != nil {
		return "", err
	}
	return parser.Annotate(record)
}
