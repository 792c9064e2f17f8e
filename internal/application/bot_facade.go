// Package application composes the queue, rate limiter and analytics into
// high-level bot commands. Facade methods return ready-to-send strings so the
// Telegram adapter just forwards them to the chat.
package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/infra/adapters/youtube"
	"telegram-yt-summarizer/internal/infra/analytics"
	"telegram-yt-summarizer/internal/infra/i18n"
	"telegram-yt-summarizer/internal/infra/metrics"
	"telegram-yt-summarizer/internal/queue"
)

type BotFacade struct {
	queue    *queue.RequestQueue
	limiter  *queue.RateLimiter
	recorder *analytics.Recorder
	tr       *i18n.Translator

	allowedUsers map[int64]bool // empty means open to everyone
	supported    map[model.OutputFormat]bool
	defaultFmt   model.OutputFormat

	maxVideoDurationSec int
	rateMax             int
	rateWindow          time.Duration

	log *zerolog.Logger
}

type FacadeConfig struct {
	AllowedUsers        []int64
	SupportedFormats    []string
	DefaultFormat       string
	MaxVideoDurationSec int
	RateLimitMessages   int
	RateLimitWindow     time.Duration
}

func NewBotFacade(
	q *queue.RequestQueue,
	limiter *queue.RateLimiter,
	recorder *analytics.Recorder,
	tr *i18n.Translator,
	cfg FacadeConfig,
	logger *zerolog.Logger,
) *BotFacade {
	allowed := make(map[int64]bool, len(cfg.AllowedUsers))
	for _, id := range cfg.AllowedUsers {
		allowed[id] = true
	}
	supported := make(map[model.OutputFormat]bool, len(cfg.SupportedFormats))
	for _, f := range cfg.SupportedFormats {
		supported[model.OutputFormat(strings.ToLower(f))] = true
	}
	fLog := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		queue:               q,
		limiter:             limiter,
		recorder:            recorder,
		tr:                  tr,
		allowedUsers:        allowed,
		supported:           supported,
		defaultFmt:          model.OutputFormat(cfg.DefaultFormat),
		maxVideoDurationSec: cfg.MaxVideoDurationSec,
		rateMax:             cfg.RateLimitMessages,
		rateWindow:          cfg.RateLimitWindow,
		log:                 &fLog,
	}
}

func (b *BotFacade) HandleStart(ctx context.Context, userID int64, username string) string {
	b.recorder.RecordActivity(ctx, userID, username, "start")
	return b.tr.T("welcome")
}

func (b *BotFacade) HandleHelp(ctx context.Context, userID int64, username string) string {
	b.recorder.RecordActivity(ctx, userID, username, "help")
	return b.tr.T("help", b.maxVideoDurationSec/60, b.rateMax, int(b.rateWindow.Seconds()))
}

func (b *BotFacade) HandleFormats(ctx context.Context, userID int64, username string) string {
	b.recorder.RecordActivity(ctx, userID, username, "formats")
	return b.tr.T("formats", string(b.defaultFmt))
}

// HandleSummarize admits a summarize request for videoURL.
func (b *BotFacade) HandleSummarize(ctx context.Context, userID, chatID int64, username, videoURL, format string) string {
	b.recorder.RecordActivity(ctx, userID, username, "summarize")
	return b.submit(ctx, userID, chatID, videoURL, model.OpSummarize, b.parseFormat(format))
}

// HandleTranscript admits a transcript extraction request. mode selects the
// AI correction pass; anything but "corrected" means the raw track.
func (b *BotFacade) HandleTranscript(ctx context.Context, userID, chatID int64, username, videoURL, mode, format string) string {
	b.recorder.RecordActivity(ctx, userID, username, "transcript")
	op := model.OpExtractRaw
	if strings.EqualFold(strings.TrimSpace(mode), "corrected") {
		op = model.OpExtractCorrected
	}
	return b.submit(ctx, userID, chatID, videoURL, op, b.parseFormat(format))
}

func (b *BotFacade) HandleStatus(ctx context.Context, userID int64, username string) string {
	b.recorder.RecordActivity(ctx, userID, username, "status")

	info, err := b.queue.Status(ctx, userID)
	if err != nil {
		return b.tr.T("err_try_later")
	}
	if info == nil {
		return b.tr.T("status_none")
	}

	var line string
	switch info.Status {
	case model.StatusQueued:
		line = b.tr.T("status_queued", info.VideoID, info.QueuePosition, info.EstimatedMinutes)
	case model.StatusProcessing:
		line = b.tr.T("status_processing", info.VideoID, info.EstimatedMinutes)
	default:
		return b.tr.T("status_none")
	}

	stats := b.queue.Stats(ctx)
	return line + "\n" + b.tr.T("status_queue_stats", stats.QueueSize, stats.ProcessingCount, stats.Capacity)
}

func (b *BotFacade) HandleCancel(ctx context.Context, userID int64, username string) string {
	b.recorder.RecordActivity(ctx, userID, username, "cancel")
	if b.queue.Cancel(ctx, userID) {
		return b.tr.T("cancel_ok")
	}
	return b.tr.T("cancel_none")
}

// IsAllowed reports whether the user passes the whitelist. An empty whitelist
// admits everyone.
func (b *BotFacade) IsAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || b.allowedUsers[userID]
}

func (b *BotFacade) NotAllowedText() string { return b.tr.T("err_not_allowed") }

// submit runs the admission chain: whitelist, rate limit, single-flight,
// capacity. The first refusal wins and maps to its own user message.
func (b *BotFacade) submit(ctx context.Context, userID, chatID int64, videoURL string, op model.Operation, format model.OutputFormat) string {
	if !b.IsAllowed(userID) {
		metrics.IncAdmissionRefusal("not_allowed")
		return b.tr.T("err_not_allowed")
	}

	videoID := youtube.ExtractVideoID(videoURL)
	if videoID == "" {
		return b.tr.T("err_invalid_url")
	}

	if !b.limiter.Allow(ctx, userID) {
		metrics.IncAdmissionRefusal("rate_limited")
		return b.tr.T("err_rate_limited")
	}

	req := &model.ProcessingRequest{
		ID:           uuid.NewString(),
		UserID:       userID,
		ChatID:       chatID,
		VideoURL:     videoURL,
		VideoID:      videoID,
		OutputFormat: format,
		Operation:    op,
	}

	existing, err := b.queue.Status(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("status check failed during admission")
		return b.tr.T("err_try_later")
	}
	if existing != nil && !existing.Status.Terminal() {
		metrics.IncAdmissionRefusal("duplicate")
		return b.tr.T("err_duplicate")
	}

	accepted, err := b.queue.Enqueue(ctx, req)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Str("video_id", videoID).Msg("enqueue failed")
		return b.tr.T("err_try_later")
	}
	if !accepted {
		// Enqueue refuses for duplicates and full queues; the duplicate case
		// was handled above, so a refusal here means capacity.
		metrics.IncAdmissionRefusal("queue_full")
		return b.tr.T("err_queue_full")
	}

	b.log.Info().Int64("user_id", userID).Str("video_id", videoID).
		Str("operation", string(op)).Str("format", string(format)).Msg("request admitted")
	return b.tr.T("msg_enqueued")
}

// parseFormat maps the optional format argument onto a supported format,
// falling back to the default for anything unknown.
func (b *BotFacade) parseFormat(arg string) model.OutputFormat {
	f := model.OutputFormat(strings.ToLower(strings.TrimSpace(arg)))
	if b.supported[f] {
		return f
	}
	return b.defaultFmt
}
