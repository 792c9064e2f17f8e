package ai

import (
	"strings"
	"testing"

	"telegram-yt-summarizer/internal/domain/model"
)

func TestParseSummaryResponseEnglishSections(t *testing.T) {
	text := `Executive Summary
The video explains how neural networks learn.

Key Points
- Backpropagation drives learning
- Data quality matters more than model size

Detailed Summary
The presenter walks through gradient descent step by step.

Important Timestamps
- 02:15 gradient descent intro
- 10:40 overfitting demo

Key Takeaways
- Start with a small model`

	s := parseSummaryResponse(text)

	if !strings.Contains(s.ExecutiveSummary, "neural networks") {
		t.Errorf("executive = %q", s.ExecutiveSummary)
	}
	if len(s.KeyPoints) != 2 || s.KeyPoints[0] != "Backpropagation drives learning" {
		t.Errorf("key points = %v", s.KeyPoints)
	}
	if !strings.Contains(s.DetailedSummary, "gradient descent") {
		t.Errorf("detailed = %q", s.DetailedSummary)
	}
	if len(s.Timestamps) != 2 {
		t.Errorf("timestamps = %v", s.Timestamps)
	}
	if len(s.Takeaways) != 1 {
		t.Errorf("takeaways = %v", s.Takeaways)
	}
	if s.Raw != text {
		t.Error("raw does not carry the full response")
	}
}

func TestParseSummaryResponseRussianSections(t *testing.T) {
	text := `Краткое содержание
Видео рассказывает о квантовых компьютерах.

Ключевые моменты
• Кубиты вместо битов
• Декогеренция ограничивает вычисления

Выводы
• Технология пока экспериментальная`

	s := parseSummaryResponse(text)

	if !strings.Contains(s.ExecutiveSummary, "квантовых") {
		t.Errorf("executive = %q", s.ExecutiveSummary)
	}
	if len(s.KeyPoints) != 2 {
		t.Errorf("key points = %v", s.KeyPoints)
	}
	if len(s.Takeaways) != 1 {
		t.Errorf("takeaways = %v", s.Takeaways)
	}
}

func TestParseSummaryResponseUnstructuredFallsBackToRaw(t *testing.T) {
	text := "Just a plain paragraph without any of the requested structure."
	s := parseSummaryResponse(text)
	if s.ExecutiveSummary == "" {
		t.Fatal("unstructured response produced no executive summary")
	}
	if s.Raw != text {
		t.Error("raw lost")
	}
}

func TestMarkSegmentsGrouping(t *testing.T) {
	segments := []model.TranscriptSegment{
		{Text: "hello there", Start: 0, Duration: 2},
		{Text: "this is a test.", Start: 2, Duration: 2},
		{Text: "second sentence", Start: 4, Duration: 2},
	}

	marked := markSegments(segments)
	lines := strings.Split(marked, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d (%q), want sentence break after the period", len(lines), marked)
	}
	if !strings.HasPrefix(lines[0], "[0]hello there") || !strings.Contains(lines[0], "[1]this is a test.") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[2]second sentence") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestParseCorrectedResponseAlignsTimings(t *testing.T) {
	original := []model.TranscriptSegment{
		{Text: "uh hello", Start: 0, Duration: 2},
		{Text: "world um", Start: 2, Duration: 3},
	}

	corrected := parseCorrectedResponse("[0]Hello, [1]world!", original)
	if len(corrected) != 1 {
		t.Fatalf("segments = %d, want 1 merged line", len(corrected))
	}
	if corrected[0].Text != "Hello, world!" {
		t.Errorf("text = %q", corrected[0].Text)
	}
	// The merged line inherits the first marker's timing.
	if corrected[0].Start != 0 || corrected[0].Duration != 2 {
		t.Errorf("timing = %v/%v, want 0/2", corrected[0].Start, corrected[0].Duration)
	}
}

func TestParseCorrectedResponseRejectsUnalignable(t *testing.T) {
	original := []model.TranscriptSegment{{Text: "hello", Start: 0, Duration: 1}}

	for _, response := range []string{
		"The corrected text is: hello there",  // markers stripped by the model
		"[7]out of range marker",              // unknown index
		"",                                    // empty response
	} {
		if got := parseCorrectedResponse(response, original); got != nil {
			t.Errorf("parseCorrectedResponse(%q) = %v, want nil", response, got)
		}
	}
}
