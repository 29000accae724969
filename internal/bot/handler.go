// Package bot is the Telegram front end: it routes chat commands and report
// texts to the engine and replies with the outcome.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
)

// Reporter is the part of the engine the bot drives.
type Reporter interface {
	Submit(ctx context.Context, userID int64, text string) (*model.ReportRecord, error)
	OfferReport(ctx context.Context, userID int64) (string, error)
	RescheduleReport(ctx context.Context, userID int64) (string, error)
	CommentReport(ctx context.Context, userID int64) (string, error)
	Reset(ctx context.Context, userID int64) (int, error)
	Annotate(ctx context.Context, userID int64, text string) (string, error)
	AnnotateActivity(ctx context.Context, activityID string) (string, error)
}

var _ Reporter = (*engine.Engine)(nil)

// Handler turns one incoming message into one reply.
type Handler struct {
	reporter Reporter
	sender   Sender
	sessions *Sessions
	logger   *slog.Logger
}

// NewHandler creates a handler.
func NewHandler(reporter Reporter, sender Sender, sessions *Sessions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		reporter: reporter,
		sender:   sender,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleMessage processes text sent by userID in chatID and sends the reply.
func (h *Handler) HandleMessage(ctx context.Context, chatID, userID int64, text string) {
	reply := h.reply(ctx, userID, text)
	if reply == "" {
		return
	}
	if err := h.sender.SendText(ctx, chatID, reply); err != nil {
		common.LogError(ctx, h.logger, err, "failed to send reply", common.Fields{"chat_id": chatID, "user_id": userID})
	}
}

func (h *Handler) reply(ctx context.Context, userID int64, text string) string {
	if cmd, ok := command(text); ok {
		return h.handleCommand(ctx, userID, cmd)
	}

	if parser.HasTrigger(text) {
		if h.sessions.End(userID) {
			return h.modifyText(ctx, userID, text)
		}
		return h.submit(ctx, userID, text)
	}

	if h.sessions.Active(userID) {
		return h.modifyInput(ctx, userID, text)
	}
	return msgUnknown
}

// command extracts "/name" from text, dropping any "@botname" suffix.
func command(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text)[0]
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), true
}

func (h *Handler) handleCommand(ctx context.Context, userID int64, cmd string) string {
	switch cmd {
	case "/start", "/help":
		return msgHelp
	case "/offers":
		return h.report(ctx, userID, "offers", h.reporter.OfferReport)
	case "/rescheduling":
		return h.report(ctx, userID, "rescheduling", h.reporter.RescheduleReport)
	case "/meetings", "/comments":
		return h.report(ctx, userID, "comments", h.reporter.CommentReport)
	case "/reset":
		removed, err := h.reporter.Reset(ctx, userID)
		if err != nil {
			h.logger.Error("reset failed", "user_id", userID, "error", err)
			return msgResetFailed
		}
		h.logger.Info("user reset", "user_id", userID, "removed", removed)
		return msgResetDone
	case "/modify":
		h.sessions.Start(userID)
		return msgModifyPrompt
	case "/cancel":
		h.sessions.End(userID)
		return msgModifyCanceled
	default:
		return msgUnknown
	}
}

func (h *Handler) report(ctx context.Context, userID int64, kind string, fn func(context.Context, int64) (string, error)) string {
	text, err := fn(ctx, userID)
	if err != nil {
		h.logger.Error("report failed", "user_id", userID, "report", kind, "error", err)
		return msgStatsFailed
	}
	return text
}

func (h *Handler) submit(ctx context.Context, userID int64, text string) string {
	record, err := h.reporter.Submit(ctx, userID, text)
	switch {
	case errors.Is(err, parser.ErrNoTrigger):
		return msgNoTrigger
	case errors.Is(err, engine.ErrNoOffers):
		return msgNoOffers
	case err != nil:
		common.LogError(ctx, h.logger, err, "failed to save report", common.Fields{"user_id": userID})
		return msgSaveFailed + common.UserMessage(err, msgSaveFallback)
	}
	return savedReply(record)
}

func savedReply(record *model.ReportRecord) string {
	var b strings.Builder
	switch record.Type {
	case model.ReportRescheduled:
		b.WriteString(msgSavedResched)
		b.WriteString("Причина: " + record.RescheduleReason + "\n")
		b.WriteString("Комментарий: " + record.Comment)
	case model.ReportComment:
		b.WriteString(msgSavedComment)
		b.WriteString("Текст: " + record.Comment)
	default:
		b.WriteString(msgSavedOffers)
		for _, offer := range record.Offers {
			b.WriteString("• " + offer + "\n")
		}
	}
	return b.String()
}

func (h *Handler) modifyText(ctx context.Context, userID int64, text string) string {
	annotated, err := h.reporter.Annotate(ctx, userID, text)
	if err != nil {
		h.logger.Warn("annotate failed", "user_id", userID, "error", err)
		return msgModifyFailed
	}
	return msgModified + annotated
}

func (h *Handler) modifyInput(ctx context.Context, userID int64, text string) string {
	id := strings.TrimSpace(text)
	if !parser.IsActivityID(id) {
		return msgModifyBadInput
	}
	h.sessions.End(userID)

	annotated, err := h.reporter.AnnotateActivity(ctx, id)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return fmt.Sprintf(msgActivityMissing, id)
	case err != nil:
		h.logger.Warn("activity annotate failed", "user_id", userID, "activity_id", id, "error", err)
		return msgModifyFailed
	}
	return msgModified + annotated
}
