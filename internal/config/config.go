package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes yaml values like "30s" or "5m". A bare number reads as
// seconds, matching how deployments usually write these knobs.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := value.Value
	if n, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token        string  `yaml:"token"`
	Language     string  `yaml:"language"` // en | ru
	Workers      int     `yaml:"workers"`  // polling update workers
	AllowedUsers []int64 `yaml:"allowed_users"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"` // any OpenAI-compatible endpoint
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type ProcessingConfig struct {
	MaxVideoDurationSec int      `yaml:"max_video_duration"`
	MaxQueueSize        int      `yaml:"max_queue_size"`
	PopTimeout          Duration `yaml:"pop_timeout"`
	CleanupInterval     Duration `yaml:"cleanup_interval"`
	EstimatedJobTime    Duration `yaml:"estimated_job_time"`
}

type LimitsConfig struct {
	RateLimitMessages int      `yaml:"rate_limit_messages"`
	RateLimitWindow   Duration `yaml:"rate_limit_window"`
}

type DocumentsConfig struct {
	SupportedFormats []string `yaml:"supported_formats"`
	DefaultFormat    string   `yaml:"default_format"`
	TempDir          string   `yaml:"temp_dir"`
}

type AnalyticsConfig struct {
	Path string `yaml:"path"` // sqlite file; empty disables analytics
}

type AdminConfig struct {
	Port int `yaml:"port"` // health + metrics HTTP server
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Processing ProcessingConfig `yaml:"processing"`
	Limits     LimitsConfig     `yaml:"limits"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Admin      AdminConfig      `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Secrets may come from the environment instead of the file.
	if cfg.Bot.Token == "" {
		cfg.Bot.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Documents.DefaultFormat != "" && !contains(cfg.Documents.SupportedFormats, cfg.Documents.DefaultFormat) {
		return nil, fmt.Errorf("documents.default_format %q not in supported_formats", cfg.Documents.DefaultFormat)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 4000
	}
	if cfg.Processing.MaxVideoDurationSec <= 0 {
		cfg.Processing.MaxVideoDurationSec = 3600
	}
	if cfg.Processing.MaxQueueSize <= 0 {
		cfg.Processing.MaxQueueSize = 100
	}
	if cfg.Processing.PopTimeout <= 0 {
		cfg.Processing.PopTimeout = Duration(time.Second)
	}
	if cfg.Processing.CleanupInterval <= 0 {
		cfg.Processing.CleanupInterval = Duration(5 * time.Minute)
	}
	if cfg.Processing.EstimatedJobTime <= 0 {
		cfg.Processing.EstimatedJobTime = Duration(3 * time.Minute)
	}
	if cfg.Limits.RateLimitMessages <= 0 {
		cfg.Limits.RateLimitMessages = 10
	}
	if cfg.Limits.RateLimitWindow <= 0 {
		cfg.Limits.RateLimitWindow = Duration(time.Minute)
	}
	if len(cfg.Documents.SupportedFormats) == 0 {
		cfg.Documents.SupportedFormats = []string{"txt", "docx", "pdf"}
	}
	if cfg.Documents.DefaultFormat == "" {
		cfg.Documents.DefaultFormat = "txt"
	}
	if cfg.Documents.TempDir == "" {
		cfg.Documents.TempDir = os.TempDir()
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8080
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
