package adapter

import (
	"context"

	"telegram-yt-summarizer/internal/domain/model"
)

// RenderInput carries everything a renderer needs for one document. Summary is
// nil for transcript-only operations; Transcript may be nil when a summary
// document is rendered from a video without captions.
type RenderInput struct {
	Info       *model.VideoInfo
	Transcript *model.Transcript
	Summary    *model.VideoSummary
	Operation  model.Operation
}

// DocumentRenderer renders content into a file on local disk and returns its
// path. Fails with domain.ErrUnsupportedFormat for formats outside the
// configured set. The caller owns cleanup of the returned file.
type DocumentRenderer interface {
	Render(ctx context.Context, in *RenderInput, format model.OutputFormat) (string, error)
}
