package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-yt-summarizer/internal/application"
	"telegram-yt-summarizer/internal/config"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
	aiAdapters "telegram-yt-summarizer/internal/infra/adapters/ai"
	docAdapters "telegram-yt-summarizer/internal/infra/adapters/document"
	tele "telegram-yt-summarizer/internal/infra/adapters/telegram"
	ytAdapters "telegram-yt-summarizer/internal/infra/adapters/youtube"
	"telegram-yt-summarizer/internal/infra/analytics"
	httpapi "telegram-yt-summarizer/internal/infra/http"
	"telegram-yt-summarizer/internal/infra/i18n"
	"telegram-yt-summarizer/internal/infra/logging"
	"telegram-yt-summarizer/internal/infra/metrics"
	"telegram-yt-summarizer/internal/infra/store"
	"telegram-yt-summarizer/internal/infra/worker"
	"telegram-yt-summarizer/internal/queue"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop adapters where keys are missing)")
	flag.Parse()

	// Secrets in .env are a local-dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Store (redis with in-memory fallback, chosen once) ----
	st := store.Connect(ctx, &cfg.Redis, logger)
	defer st.Close()

	// ---- Queue + rate limiter ----
	requestQueue := queue.NewRequestQueue(st, cfg.Processing.MaxQueueSize, cfg.Processing.EstimatedJobTime.Std(), logger)
	rateLimiter := queue.NewRateLimiter(st, cfg.Limits.RateLimitMessages, cfg.Limits.RateLimitWindow.Std(), logger)

	// ---- i18n ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Analytics (optional) ----
	var recorder *analytics.Recorder
	if cfg.Analytics.Path != "" {
		recorder, err = analytics.Open(cfg.Analytics.Path, logger)
		if err != nil {
			log.Fatalf("analytics: %v", err)
		}
		defer recorder.Close()
	}

	// ---- AI adapter ----
	var ai adapter.AIService
	if cfg.AI.APIKey != "" {
		openai, err := aiAdapters.NewOpenAIAdapter(cfg.AI, logger)
		if err != nil {
			log.Fatalf("ai adapter: %v", err)
		}
		ai = aiAdapters.NewLimitedAI(openai, 2)
		logger.Info().Str("model", cfg.AI.Model).Str("base_url", cfg.AI.BaseURL).Msg("AI adapter: OpenAI-compatible")
	} else if cfg.Runtime.Dev {
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (no api key, dev mode)")
	} else {
		log.Fatalf("no AI provider configured: set ai.api_key or OPENAI_API_KEY")
	}

	// ---- Extraction + rendering ----
	extractor := ytAdapters.NewExtractor([]string{cfg.Bot.Language, "en", "ru"}, logger)
	renderer, err := docAdapters.NewRenderer(cfg.Documents.TempDir, cfg.Documents.SupportedFormats, logger)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	// ---- Facade ----
	facade := application.NewBotFacade(requestQueue, rateLimiter, recorder, translator, application.FacadeConfig{
		AllowedUsers:        cfg.Bot.AllowedUsers,
		SupportedFormats:    cfg.Documents.SupportedFormats,
		DefaultFormat:       cfg.Documents.DefaultFormat,
		MaxVideoDurationSec: cfg.Processing.MaxVideoDurationSec,
		RateLimitMessages:   cfg.Limits.RateLimitMessages,
		RateLimitWindow:     cfg.Limits.RateLimitWindow.Std(),
	}, logger)

	// ---- Telegram ----
	var notifier adapter.NotificationSink
	if cfg.Runtime.Dev && cfg.Bot.Token == "noop" {
		notifier = tele.NewNoopBotAdapter()
	} else {
		botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, logger)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		notifier = botAdapter
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Worker ----
	pipeline := worker.NewPipeline(
		requestQueue, extractor, ai, renderer, notifier, recorder, translator,
		cfg.Processing.MaxVideoDurationSec, cfg.Processing.PopTimeout.Std(), cfg.Processing.CleanupInterval.Std(),
		logger,
	)
	go pipeline.Run(ctx)

	// ---- Admin HTTP server ----
	adminSrv := httpapi.NewServer(cfg.Admin.Port, requestQueue, logger)
	go func() {
		if err := adminSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = adminSrv.Shutdown(shutdownCtx)
}
