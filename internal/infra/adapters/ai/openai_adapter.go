// Package ai implements the LLM port against any OpenAI-compatible chat
// completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/config"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
	"telegram-yt-summarizer/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIService = (*OpenAIAdapter)(nil)

const summarySystemPrompt = `You are an expert video content summarizer. You analyze YouTube video transcripts and create comprehensive, well-structured summaries.

Always respond in the requested output language, regardless of the transcript language.

Structure your response with these sections:
- Executive Summary (2-3 sentences)
- Key Points (bullet points of main topics)
- Detailed Summary (structured narrative)
- Timestamps of important segments
- Takeaways (if applicable)

Format your response as plain structured text that is easy to read.`

const correctionSystemPrompt = `You are an expert text editor. Your task is to improve the quality of video subtitles while preserving their meaning and timestamp-marker structure.`

// maxTranscriptChars bounds the prompt so long videos do not blow the context
// window. Truncation happens at a line boundary.
const maxTranscriptChars = 8000

// OpenAIAdapter implements adapter.AIService using the Chat Completions API.
type OpenAIAdapter struct {
	apiKey    string
	base      string // e.g., https://api.openai.com/v1
	model     string
	maxTokens int
	client    *http.Client
	log       *zerolog.Logger
}

func NewOpenAIAdapter(cfg config.AIConfig, logger *zerolog.Logger) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai api key empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = "gpt-4o-mini"
	}
	aLog := logger.With().Str("component", "OpenAIAdapter").Str("model", mdl).Logger()
	return &OpenAIAdapter{
		apiKey:    cfg.APIKey,
		base:      strings.TrimRight(base, "/"),
		model:     mdl,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: 120 * time.Second},
		log:       &aLog,
	}, nil
}

func (o *OpenAIAdapter) Summarize(ctx context.Context, info *model.VideoInfo, transcript *model.Transcript) (*model.VideoSummary, error) {
	prompt := buildSummaryPrompt(info, transcript)

	content, usage, err := o.chat(ctx, "summarize", []adapter.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	summary := parseSummaryResponse(content)
	summary.ModelUsed = o.model
	summary.TokensUsed = usage.TotalTokens
	o.log.Info().Str("video_id", info.ID).Int("tokens", usage.TotalTokens).Msg("summary generated")
	return summary, nil
}

// CorrectTranscript sends the transcript with [n] index markers and aligns
// the corrected lines back to the original timings via those markers. Output
// that cannot be aligned falls back to the original segments.
func (o *OpenAIAdapter) CorrectTranscript(ctx context.Context, transcript *model.Transcript, languageHint string) (*model.Transcript, error) {
	marked := markSegments(transcript.Segments)
	if marked == "" {
		return transcript, nil
	}

	content, _, err := o.chat(ctx, "correct", []adapter.Message{
		{Role: "system", Content: correctionSystemPrompt},
		{Role: "user", Content: buildCorrectionPrompt(marked, transcript, languageHint)},
	})
	if err != nil {
		return nil, err
	}

	corrected := parseCorrectedResponse(content, transcript.Segments)
	if corrected == nil {
		o.log.Warn().Msg("could not align corrected subtitles; keeping original")
		return &model.Transcript{
			Segments:      transcript.Segments,
			LanguageCode:  transcript.LanguageCode,
			AutoGenerated: transcript.AutoGenerated,
			Corrected:     false,
		}, nil
	}

	return &model.Transcript{
		Segments:      corrected,
		LanguageCode:  transcript.LanguageCode,
		AutoGenerated: transcript.AutoGenerated,
		Corrected:     true,
	}, nil
}

func (o *OpenAIAdapter) chat(ctx context.Context, operation string, messages []adapter.Message) (string, adapter.Usage, error) {
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		MaxTokens   int               `json:"max_tokens,omitempty"`
		Temperature float64           `json:"temperature"`
	}{Model: o.model, Messages: messages, MaxTokens: o.maxTokens, Temperature: 0.3}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	started := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		metrics.ObserveAICall(o.model, operation, 0, int(time.Since(started).Milliseconds()), false)
		return "", adapter.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.ObserveAICall(o.model, operation, 0, int(time.Since(started).Milliseconds()), false)
		return "", adapter.Usage{}, fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", adapter.Usage{}, err
	}

	usage := adapter.Usage{
		PromptTokens:     payload.Usage.PromptTokens,
		CompletionTokens: payload.Usage.CompletionTokens,
		TotalTokens:      payload.Usage.TotalTokens,
	}
	metrics.ObserveAICall(o.model, operation, usage.TotalTokens, int(time.Since(started).Milliseconds()), true)

	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return strings.TrimSpace(c.Message.Content), usage, nil
		}
	}
	return "", usage, errors.New("no choice content")
}

func buildSummaryPrompt(info *model.VideoInfo, transcript *model.Transcript) string {
	description := info.Description
	if len(description) > 500 {
		description = description[:500] + "..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please summarize this YouTube video.\n\n")
	fmt.Fprintf(&sb, "**Video Information:**\n")
	fmt.Fprintf(&sb, "- Title: %s\n", info.Title)
	fmt.Fprintf(&sb, "- Duration: %d:%02d\n", info.DurationSeconds/60, info.DurationSeconds%60)
	fmt.Fprintf(&sb, "- Uploader: %s\n", info.Uploader)
	if info.UploadDate != "" {
		fmt.Fprintf(&sb, "- Upload Date: %s\n", info.UploadDate)
	}
	fmt.Fprintf(&sb, "- Description: %s\n", description)
	fmt.Fprintf(&sb, "- Transcript Language: %s\n\n", transcript.LanguageCode)
	fmt.Fprintf(&sb, "**Video Transcript:**\n%s\n", formatTimedTranscript(transcript.Segments))
	return sb.String()
}

// formatTimedTranscript renders "[MM:SS] text" lines, truncated at a line
// boundary when the total exceeds the prompt budget.
func formatTimedTranscript(segments []model.TranscriptSegment) string {
	if len(segments) == 0 {
		return "No transcript available."
	}
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		mins := int(s.Start) / 60
		secs := int(s.Start) % 60
		lines = append(lines, fmt.Sprintf("[%02d:%02d] %s", mins, secs, text))
	}
	full := strings.Join(lines, "\n")
	if len(full) > maxTranscriptChars {
		truncated := full[:maxTranscriptChars]
		if i := strings.LastIndexByte(truncated, '\n'); i > 0 {
			truncated = truncated[:i]
		}
		full = truncated + "\n\n[Transcript truncated for length...]"
	}
	return full
}

func buildCorrectionPrompt(marked string, transcript *model.Transcript, languageHint string) string {
	kind := "manually written"
	if transcript.AutoGenerated {
		kind = "auto-generated"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: fix the grammar, punctuation and sentence structure of these %s video subtitles.\n\n", kind)
	fmt.Fprintf(&sb, "Subtitle language: %s\n", transcript.LanguageCode)
	if languageHint != "" {
		fmt.Fprintf(&sb, "Reader language: %s\n", languageHint)
	}
	sb.WriteString(`
IMPORTANT:
1. Keep the [number] markers at the start of each segment, they are needed for time alignment
2. Fix only grammar, punctuation and sentence structure
3. Do NOT change the meaning or content
4. Do NOT add new information
5. Merge short fragments into full sentences where it reads naturally
6. Remove filler words, repetitions and stutters
7. Keep the natural flow of speech

Source subtitles:
`)
	sb.WriteString(marked)
	sb.WriteString("\n\nCorrected text:")
	return sb.String()
}
