// Package document renders extraction results into downloadable files.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

// Compile-time check.
var _ adapter.DocumentRenderer = (*Renderer)(nil)

type Renderer struct {
	tempDir   string
	supported map[model.OutputFormat]bool
	log       *zerolog.Logger
}

func NewRenderer(tempDir string, supportedFormats []string, logger *zerolog.Logger) (*Renderer, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	supported := make(map[model.OutputFormat]bool, len(supportedFormats))
	for _, f := range supportedFormats {
		supported[model.OutputFormat(strings.ToLower(f))] = true
	}
	rLog := logger.With().Str("component", "DocumentRenderer").Logger()
	return &Renderer{tempDir: tempDir, supported: supported, log: &rLog}, nil
}

func (r *Renderer) Render(ctx context.Context, in *adapter.RenderInput, format model.OutputFormat) (string, error) {
	if !r.supported[format] {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title := "Unknown Video"
	if in.Info != nil && in.Info.Title != "" {
		title = in.Info.Title
	}
	filename := fmt.Sprintf("%s_%s.%s", sanitizeFilename(title), time.Now().Format("20060102_150405"), format)
	outPath := filepath.Join(r.tempDir, filename)

	var err error
	switch format {
	case model.FormatTXT:
		err = writeTXT(in, outPath)
	case model.FormatDOCX:
		err = writeDOCX(in, outPath)
	case model.FormatPDF:
		err = writePDF(in, outPath)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		// Half-written files are garbage; remove before reporting.
		os.Remove(outPath)
		return "", err
	}

	r.log.Debug().Str("path", outPath).Str("format", string(format)).Msg("document rendered")
	return outPath, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// sanitizeFilename keeps letters, digits, underscore and dash, and bounds the
// length so the full name stays well under filesystem limits.
func sanitizeFilename(title string) string {
	s := unsafeFilenameChars.ReplaceAllString(title, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "video"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

// documentTitle is the heading used by all three writers.
func documentTitle(in *adapter.RenderInput) string {
	name := "Unknown Title"
	if in.Info != nil && in.Info.Title != "" {
		name = in.Info.Title
	}
	if in.Operation == model.OpSummarize {
		return "YouTube Video Summary: " + name
	}
	return "YouTube Video Transcript: " + name
}

func formatClock(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// transcriptLines renders "[MM:SS] text" lines for transcript documents.
func transcriptLines(t *model.Transcript) []string {
	if t == nil {
		return nil
	}
	lines := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		mins := int(seg.Start) / 60
		secs := int(seg.Start) % 60
		lines = append(lines, fmt.Sprintf("[%02d:%02d] %s", mins, secs, text))
	}
	return lines
}

func transcriptKind(t *model.Transcript) string {
	if t == nil {
		return ""
	}
	switch {
	case t.Corrected:
		return "AI-corrected"
	case t.AutoGenerated:
		return "auto-generated"
	default:
		return "manual"
	}
}
