package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-yt-summarizer/internal/infra/adapters/youtube"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":      r.handleStartCommand,
		"help":       r.handleHelpCommand,
		"formats":    r.handleFormatsCommand,
		"summarize":  r.handleSummarizeCommand,
		"transcript": r.handleTranscriptCommand,
		"status":     r.handleStatusCommand,
		"cancel":     r.handleCancelCommand,
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}

	if message.IsCommand() {
		handler, ok := r.commandRoutes()[message.Command()]
		if !ok {
			return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp(ctx, message.From.ID, message.From.UserName))
		}
		return handler(ctx, message)
	}

	// A bare message carrying a video link reads as a summarize request.
	if url := firstYouTubeURL(message.Text); url != "" {
		text := r.facade.HandleSummarize(ctx, message.From.ID, message.Chat.ID, message.From.UserName, url, "")
		return r.SendMessage(ctx, message.Chat.ID, text)
	}
	return nil
}

func (r *RealBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStart(ctx, message.From.ID, message.From.UserName))
}

func (r *RealBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp(ctx, message.From.ID, message.From.UserName))
}

func (r *RealBotAdapter) handleFormatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleFormats(ctx, message.From.ID, message.From.UserName))
}

// handleSummarizeCommand handles "/summarize <url> [format]".
func (r *RealBotAdapter) handleSummarizeCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	url, format := "", ""
	if len(args) > 0 {
		url = args[0]
	}
	if len(args) > 1 {
		format = args[1]
	}
	text := r.facade.HandleSummarize(ctx, message.From.ID, message.Chat.ID, message.From.UserName, url, format)
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleTranscriptCommand handles "/transcript <url> [raw|corrected] [format]".
func (r *RealBotAdapter) handleTranscriptCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	url, mode, format := "", "", ""
	if len(args) > 0 {
		url = args[0]
	}
	if len(args) > 1 {
		mode = args[1]
	}
	if len(args) > 2 {
		format = args[2]
	}
	text := r.facade.HandleTranscript(ctx, message.From.ID, message.Chat.ID, message.From.UserName, url, mode, format)
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealBotAdapter) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStatus(ctx, message.From.ID, message.From.UserName))
}

func (r *RealBotAdapter) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleCancel(ctx, message.From.ID, message.From.UserName))
}

// firstYouTubeURL scans message text for the first token that parses as a
// video link.
func firstYouTubeURL(text string) string {
	for _, token := range strings.Fields(text) {
		if youtube.IsValidURL(token) {
			return token
		}
	}
	return ""
}
