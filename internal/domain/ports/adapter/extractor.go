package adapter

import (
	"context"

	"telegram-yt-summarizer/internal/domain/model"
)

// ContentExtractor is the port for fetching video metadata and transcripts.
// FetchMetadata fails with domain.ErrVideoUnavailable when the source is
// private, removed or malformed; FetchTranscript fails with
// domain.ErrNoTranscript when no caption track exists.
type ContentExtractor interface {
	FetchMetadata(ctx context.Context, videoURL string) (*model.VideoInfo, error)
	FetchTranscript(ctx context.Context, videoID string) (*model.Transcript, error)
}
