package document

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	l := zerolog.Nop()
	r, err := NewRenderer(t.TempDir(), []string{"txt", "docx", "pdf"}, &l)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func sampleInput(op model.Operation) *adapter.RenderInput {
	return &adapter.RenderInput{
		Info: &model.VideoInfo{
			ID:              "dQw4w9WgXcQ",
			Title:           "Test Video: A/B Results!",
			Uploader:        "Test Channel",
			DurationSeconds: 754,
			UploadDate:      "2024-03-01",
			ViewCount:       1200,
		},
		Transcript: &model.Transcript{
			Segments: []model.TranscriptSegment{
				{Text: "hello world", Start: 0, Duration: 2},
				{Text: "second line", Start: 65, Duration: 3},
			},
			LanguageCode:  "en",
			AutoGenerated: true,
		},
		Summary: &model.VideoSummary{
			ExecutiveSummary: "A short overview.",
			KeyPoints:        []string{"point one", "point two"},
			DetailedSummary:  "The long form.",
			ModelUsed:        "gpt-4o-mini",
			TokensUsed:       321,
		},
		Operation: op,
	}
}

func TestRenderTXTSummary(t *testing.T) {
	r := testRenderer(t)

	path, err := r.Render(context.Background(), sampleInput(model.OpSummarize), model.FormatTXT)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"YouTube Video Summary: Test Video: A/B Results!",
		"Duration: 12:34",
		"EXECUTIVE SUMMARY",
		"A short overview.",
		"• point one",
		"AI Model: gpt-4o-mini",
		"Tokens Used: 321",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("txt output missing %q", want)
		}
	}
}

func TestRenderTXTTranscript(t *testing.T) {
	r := testRenderer(t)

	in := sampleInput(model.OpExtractRaw)
	in.Summary = nil
	path, err := r.Render(context.Background(), in, model.FormatTXT)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer os.Remove(path)

	data, _ := os.ReadFile(path)
	text := string(data)

	if !strings.Contains(text, "YouTube Video Transcript:") {
		t.Error("transcript heading missing")
	}
	if !strings.Contains(text, "[00:00] hello world") {
		t.Error("first timed line missing")
	}
	if !strings.Contains(text, "[01:05] second line") {
		t.Error("second timed line missing")
	}
	if !strings.Contains(text, "auto-generated") {
		t.Error("transcript kind missing")
	}
}

func TestRenderDOCXAndPDFProduceFiles(t *testing.T) {
	r := testRenderer(t)

	for _, format := range []model.OutputFormat{model.FormatDOCX, model.FormatPDF} {
		path, err := r.Render(context.Background(), sampleInput(model.OpSummarize), format)
		if err != nil {
			t.Fatalf("render %s: %v", format, err)
		}
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", format, err)
		}
		if fi.Size() == 0 {
			t.Errorf("%s output is empty", format)
		}
		os.Remove(path)
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	r := testRenderer(t)

	_, err := r.Render(context.Background(), sampleInput(model.OpSummarize), model.OutputFormat("epub"))
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Simple Title", "Simple_Title"},
		{"A/B: results?!", "A_B_results"},
		{"Русское название", "Русское_название"},
		{"///", "video"},
	}
	for _, c := range cases {
		if got := sanitizeFilename(c.in); got != c.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
