// Package worker runs the processing pipeline: it drains the request queue
// one job at a time and walks each job through extract, transform, render and
// deliver stages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
	"telegram-yt-summarizer/internal/infra/analytics"
	"telegram-yt-summarizer/internal/infra/i18n"
	"telegram-yt-summarizer/internal/infra/logging"
	"telegram-yt-summarizer/internal/infra/metrics"
	"telegram-yt-summarizer/internal/queue"
)

// errorBackoff spaces out retries after a dequeue failure so a broken store
// does not spin the loop.
const errorBackoff = 5 * time.Second

type Pipeline struct {
	queue     *queue.RequestQueue
	extractor adapter.ContentExtractor
	ai        adapter.AIService
	renderer  adapter.DocumentRenderer
	notifier  adapter.NotificationSink
	recorder  *analytics.Recorder
	tr        *i18n.Translator

	maxVideoDurationSec int
	popTimeout          time.Duration
	cleanupInterval     time.Duration

	log *zerolog.Logger
}

func NewPipeline(
	q *queue.RequestQueue,
	extractor adapter.ContentExtractor,
	ai adapter.AIService,
	renderer adapter.DocumentRenderer,
	notifier adapter.NotificationSink,
	recorder *analytics.Recorder,
	tr *i18n.Translator,
	maxVideoDurationSec int,
	popTimeout, cleanupInterval time.Duration,
	logger *zerolog.Logger,
) *Pipeline {
	pLog := logger.With().Str("component", "Pipeline").Logger()
	return &Pipeline{
		queue:               q,
		extractor:           extractor,
		ai:                  ai,
		renderer:            renderer,
		notifier:            notifier,
		recorder:            recorder,
		tr:                  tr,
		maxVideoDurationSec: maxVideoDurationSec,
		popTimeout:          popTimeout,
		cleanupInterval:     cleanupInterval,
		log:                 &pLog,
	}
}

// Run drains the queue until ctx is cancelled. Jobs are processed strictly
// one at a time; a stale-entry sweep runs on its own interval alongside.
func (p *Pipeline) Run(ctx context.Context) {
	p.log.Info().Dur("pop_timeout", p.popTimeout).Msg("worker loop started")

	cleanup := time.NewTicker(p.cleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("worker loop stopped")
			return
		case <-cleanup.C:
			if removed := p.queue.CleanupExpired(ctx); removed > 0 {
				p.log.Info().Int("removed", removed).Msg("stale requests purged")
			}
		default:
		}

		req, err := p.queue.DequeueNext(ctx, p.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.log.Error().Err(err).Msg("dequeue failed; backing off")
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
			continue
		}
		if req == nil {
			continue
		}
		if req.Status == model.StatusCancelled {
			p.log.Debug().Int64("user_id", req.UserID).Str("video_id", req.VideoID).
				Msg("skipping cancelled request")
			metrics.IncJob("cancelled")
			continue
		}

		p.processJob(ctx, req)
	}
}

// processJob runs one request through the pipeline. Panics inside a stage are
// contained here so a single poisoned job cannot take the loop down.
func (p *Pipeline) processJob(ctx context.Context, req *model.ProcessingRequest) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int64("user_id", req.UserID).
				Str("video_id", req.VideoID).Msg("panic while processing job")
			p.failJob(ctx, req, nil, time.Time{}, fmt.Errorf("panic: %v", r))
		}
	}()

	started := time.Now()
	jobLog := p.log.With().Int64("user_id", req.UserID).Str("video_id", req.VideoID).
		Str("operation", string(req.Operation)).Logger()
	defer logging.TraceDuration(&jobLog, "Pipeline.processJob")()
	jobLog.Info().Str("format", string(req.OutputFormat)).Msg("processing started")

	p.notify(ctx, req.ChatID, p.tr.T("msg_processing_started"))

	// Extract. Metadata and transcript are independent fetches.
	stageStart := time.Now()
	var (
		info       *model.VideoInfo
		transcript *model.Transcript
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = p.extractor.FetchMetadata(gctx, req.VideoURL)
		return err
	})
	g.Go(func() error {
		var err error
		transcript, err = p.extractor.FetchTranscript(gctx, req.VideoID)
		return err
	})
	if err := g.Wait(); err != nil {
		p.failJob(ctx, req, nil, started, err)
		return
	}
	if info.DurationSeconds > p.maxVideoDurationSec {
		p.failJob(ctx, req, info, started, domain.ErrVideoTooLong)
		return
	}
	metrics.ObserveStage("extract", time.Since(stageStart).Seconds())

	// Cancellation checkpoint. Cancel on a processing job removes its
	// tracking entry; a vanished entry means stop without a user message.
	if tracked, err := p.queue.Status(ctx, req.UserID); err == nil && tracked == nil {
		jobLog.Info().Msg("request cancelled mid-processing")
		metrics.IncJob("cancelled")
		p.record(req, info, nil, model.StatusCancelled, "", started)
		return
	}

	// Transform.
	stageStart = time.Now()
	var summary *model.VideoSummary
	switch req.Operation {
	case model.OpSummarize:
		p.notify(ctx, req.ChatID, p.tr.T("msg_generating_summary"))
		var err error
		summary, err = p.ai.Summarize(ctx, info, transcript)
		if err != nil {
			p.failJob(ctx, req, info, started, fmt.Errorf("%w: %v", domain.ErrAITransform, err))
			return
		}
	case model.OpExtractCorrected:
		p.notify(ctx, req.ChatID, p.tr.T("msg_correcting_transcript"))
		corrected, err := p.ai.CorrectTranscript(ctx, transcript, p.tr.Language())
		if err != nil {
			// Correction is an enhancement; the raw transcript still makes a
			// useful document.
			jobLog.Warn().Err(err).Msg("transcript correction failed; delivering raw")
		} else {
			transcript = corrected
		}
	case model.OpExtractRaw:
		// No AI pass, no extra progress message.
	}
	metrics.ObserveStage("transform", time.Since(stageStart).Seconds())

	// Render.
	p.notify(ctx, req.ChatID, p.tr.T("msg_creating_document"))
	stageStart = time.Now()
	docPath, err := p.renderer.Render(ctx, &adapter.RenderInput{
		Info:       info,
		Transcript: transcript,
		Summary:    summary,
		Operation:  req.Operation,
	}, req.OutputFormat)
	if err != nil {
		p.failJob(ctx, req, info, started, fmt.Errorf("%w: %v", domain.ErrRender, err))
		return
	}
	defer os.Remove(docPath)
	metrics.ObserveStage("render", time.Since(stageStart).Seconds())

	// Deliver.
	stageStart = time.Now()
	caption := p.caption(req, info, transcript, summary)
	if err := p.notifier.SendDocument(ctx, req.ChatID, docPath, filepath.Base(docPath), caption); err != nil {
		p.failJob(ctx, req, info, started, fmt.Errorf("%w: %v", domain.ErrDelivery, err))
		return
	}
	metrics.ObserveStage("deliver", time.Since(stageStart).Seconds())

	p.queue.Complete(ctx, req.UserID, true)
	metrics.IncJob("completed")
	p.record(req, info, summary, model.StatusCompleted, "", started)
	jobLog.Info().Dur("elapsed", time.Since(started)).Msg("processing completed")
}

// failJob notifies the user with a cause-specific message, clears tracking
// and records the failure.
func (p *Pipeline) failJob(ctx context.Context, req *model.ProcessingRequest, info *model.VideoInfo, started time.Time, cause error) {
	p.log.Error().Err(cause).Int64("user_id", req.UserID).Str("video_id", req.VideoID).
		Msg("processing failed")

	p.notify(ctx, req.ChatID, p.userMessage(cause))
	p.queue.Complete(ctx, req.UserID, false)
	metrics.IncJob("failed")
	p.record(req, info, nil, model.StatusFailed, cause.Error(), started)
}

func (p *Pipeline) userMessage(cause error) string {
	switch {
	case errors.Is(cause, domain.ErrVideoUnavailable):
		return p.tr.T("err_video_unavailable")
	case errors.Is(cause, domain.ErrNoTranscript):
		return p.tr.T("err_no_transcript")
	case errors.Is(cause, domain.ErrVideoTooLong):
		return p.tr.T("err_video_too_long", p.maxVideoDurationSec/60)
	case errors.Is(cause, domain.ErrDelivery):
		return p.tr.T("err_delivery")
	default:
		return p.tr.T("err_processing")
	}
}

func (p *Pipeline) caption(req *model.ProcessingRequest, info *model.VideoInfo, transcript *model.Transcript, summary *model.VideoSummary) string {
	duration := formatDuration(info.DurationSeconds)
	if req.Operation == model.OpSummarize && summary != nil {
		return p.tr.T("msg_done_caption", info.Title, duration, summary.ModelUsed, summary.TokensUsed)
	}
	lang := ""
	if transcript != nil {
		lang = transcript.LanguageCode
	}
	return p.tr.T("msg_transcript_caption", info.Title, duration, lang)
}

func (p *Pipeline) notify(ctx context.Context, chatID int64, text string) {
	if err := p.notifier.SendMessage(ctx, chatID, text); err != nil {
		p.log.Warn().Err(err).Int64("chat_id", chatID).Msg("progress message failed")
	}
}

func (p *Pipeline) record(req *model.ProcessingRequest, info *model.VideoInfo, summary *model.VideoSummary, status model.RequestStatus, errText string, started time.Time) {
	rec := analytics.ProcessingRecord{
		UserID:       req.UserID,
		VideoID:      req.VideoID,
		Operation:    string(req.Operation),
		OutputFormat: string(req.OutputFormat),
		Status:       string(status),
		Error:        errText,
	}
	if info != nil {
		rec.VideoTitle = info.Title
		rec.DurationSeconds = info.DurationSeconds
	}
	if summary != nil {
		rec.TokensUsed = summary.TokensUsed
	}
	if !started.IsZero() {
		rec.Elapsed = time.Since(started)
	}
	p.recorder.RecordProcessing(context.Background(), rec)
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
