package ai

import (
	"context"
	"time"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

var _ adapter.AIService = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIService for local/dev runs without an
// API key. It returns canned output instead of calling a real model.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Summarize(ctx context.Context, info *model.VideoInfo, transcript *model.Transcript) (*model.VideoSummary, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &model.VideoSummary{
		ExecutiveSummary: "This is a noop summary of \"" + info.Title + "\".",
		KeyPoints:        []string{"noop key point"},
		Raw:              "noop",
		ModelUsed:        "noop",
	}, nil
}

func (a *NoopAIAdapter) CorrectTranscript(ctx context.Context, transcript *model.Transcript, languageHint string) (*model.Transcript, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := *transcript
	out.Corrected = true
	return &out, nil
}
