// Package telegram wires the bot API to the application facade: it polls
// updates, routes commands and delivers messages and documents.
package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/application"
	"telegram-yt-summarizer/internal/config"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

// Compile-time check.
var _ adapter.NotificationSink = (*RealBotAdapter)(nil)

// RealBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade

	updateWorkers int
	cancelPolling context.CancelFunc
	log           *zerolog.Logger
}

func NewRealBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bLog := logger.With().Str("component", "TelegramBot").Logger()
	bLog.Info().Str("bot_username", bot.Self.UserName).Msg("authorized on telegram")

	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		updateWorkers: workers,
		log:           &bLog,
	}, nil
}

// StartPolling blocks until ctx is cancelled, fanning updates out to a small
// worker pool so one slow handler does not stall the poll loop.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) SendDocument(ctx context.Context, chatID int64, filePath, filename, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = caption
	_, err := r.bot.Send(doc)
	return err
}
