package adapter

import (
	"context"

	"telegram-yt-summarizer/internal/domain/model"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIService is the port for LLM transforms over extracted video content.
type AIService interface {
	// Summarize produces a structured summary of the video content.
	Summarize(ctx context.Context, info *model.VideoInfo, transcript *model.Transcript) (*model.VideoSummary, error)

	// CorrectTranscript fixes grammar/readability of transcript segments while
	// preserving each segment's time alignment. Implementations must never
	// return fewer segments than they could align: when the model output
	// cannot be parsed back, the original transcript is returned with
	// Corrected=false.
	CorrectTranscript(ctx context.Context, transcript *model.Transcript, languageHint string) (*model.Transcript, error)
}
