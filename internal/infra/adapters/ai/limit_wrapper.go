package ai

import (
	"context"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIService = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIService
	sem   chan struct{}
}

// NewLimitedAI caps concurrent in-flight AI calls. maxConcurrent <= 0 means
// no cap.
func NewLimitedAI(inner adapter.AIService, maxConcurrent int) adapter.AIService {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Summarize(ctx context.Context, info *model.VideoInfo, transcript *model.Transcript) (*model.VideoSummary, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Summarize(ctx, info, transcript)
}

func (l *limitedAI) CorrectTranscript(ctx context.Context, transcript *model.Transcript, languageHint string) (*model.Transcript, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.CorrectTranscript(ctx, transcript, languageHint)
}
