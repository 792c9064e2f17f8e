package telegram

import (
	"context"
	"log"
	"time"

	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

var _ adapter.NotificationSink = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.NotificationSink for local/dev runs. It
// logs instead of talking to Telegram.
type NoopBotAdapter struct{}

func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return nil
}

func (b *NoopBotAdapter) SendDocument(ctx context.Context, chatID int64, filePath, filename, caption string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To chat %d: document %s (%s)\n", chatID, filename, filePath)
	return nil
}
