// Package youtube provides the content extraction adapter backed by the
// public YouTube player API.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ytlib "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

// Compile-time check.
var _ adapter.ContentExtractor = (*Extractor)(nil)

// Extractor fetches metadata and caption tracks. Track selection prefers a
// human-made track in one of the preferred languages, then an auto-generated
// one, then whatever exists.
type Extractor struct {
	client         *ytlib.Client
	httpClient     *http.Client
	preferredLangs []string
	log            *zerolog.Logger
}

func NewExtractor(preferredLangs []string, logger *zerolog.Logger) *Extractor {
	eLog := logger.With().Str("component", "YouTubeExtractor").Logger()
	return &Extractor{
		client:         &ytlib.Client{},
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		preferredLangs: preferredLangs,
		log:            &eLog,
	}
}

func (e *Extractor) FetchMetadata(ctx context.Context, videoURL string) (*model.VideoInfo, error) {
	video, err := e.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		e.log.Warn().Err(err).Str("url", videoURL).Msg("metadata fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrVideoUnavailable, err)
	}

	info := &model.VideoInfo{
		ID:              video.ID,
		Title:           video.Title,
		Uploader:        video.Author,
		DurationSeconds: int(video.Duration / time.Second),
		Description:     video.Description,
		ViewCount:       int64(video.Views),
	}
	if !video.PublishDate.IsZero() {
		info.UploadDate = video.PublishDate.Format("2006-01-02")
	}
	return info, nil
}

func (e *Extractor) FetchTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	video, err := e.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVideoUnavailable, err)
	}
	if len(video.CaptionTracks) == 0 {
		return nil, domain.ErrNoTranscript
	}

	track := e.pickTrack(video.CaptionTracks)

	segments, err := fetchCaptionTrack(ctx, e.httpClient, track.BaseURL)
	if err != nil {
		e.log.Warn().Err(err).Str("video_id", videoID).Str("lang", track.LanguageCode).
			Msg("caption fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrNoTranscript, err)
	}
	if len(segments) == 0 {
		return nil, domain.ErrNoTranscript
	}

	e.log.Debug().Str("video_id", videoID).Str("lang", track.LanguageCode).
		Int("segments", len(segments)).Bool("auto", track.Kind == "asr").
		Msg("transcript fetched")

	return &model.Transcript{
		Segments:      segments,
		LanguageCode:  track.LanguageCode,
		AutoGenerated: track.Kind == "asr",
	}, nil
}

// pickTrack never returns a zero track: the caller has already checked that
// at least one exists.
func (e *Extractor) pickTrack(tracks []ytlib.CaptionTrack) ytlib.CaptionTrack {
	// Manual track in a preferred language beats everything.
	for _, lang := range e.preferredLangs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	// Auto-generated track in a preferred language.
	for _, lang := range e.preferredLangs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	// Any manual track.
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t
		}
	}
	return tracks[0]
}
