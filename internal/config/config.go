package config

import (
	"flag"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/docqa-bot/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Telegram accepts 1-256 characters A-Z, a-z, 0-9, _ and - as secret_token
var webhookSecretPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr    string `env:"SERVER_ADDR" envDefault:":5000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Persisted state layout
	IndexPath string `env:"INDEX_PATH" envDefault:"faiss_index"`
	DataDir   string `env:"DATA_DIR" envDefault:"data"`

	// Model provider selection and credentials
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	LegacyAPIKey string `env:"VITE_API_KEY"`

	// External service configurations
	GeminiCfg   GeminiConfig   `envPrefix:"GEMINI_"`
	OpenAICfg   OpenAIConfig   `envPrefix:"OPENAI_"`
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`
	TwilioCfg   TwilioConfig   `envPrefix:"TWILIO_"`

	// Pipelines
	IngestCfg    IngestConfig    `envPrefix:"INGEST_"`
	AnswerCfg    AnswerConfig    `envPrefix:"ANSWER_"`
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Metered UniDoc key; .docx sources and output need it
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string

	// Warnings collected while loading; logged once the logger exists
	Warnings []string
}

type GeminiConfig struct {
	HTTPClientConfig
	EmbeddingModel string               `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	ChatModel      string               `env:"CHAT_MODEL" envDefault:"gemma-3-27b-it"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type OpenAIConfig struct {
	APIKey         string        `env:"API_KEY"`
	BaseURL        string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	RequestTimeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"2"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string               `env:"BOT_TOKEN"`
	APIEndpoint     string               `env:"API_ENDPOINT" envDefault:"https://api.telegram.org/bot%s/%s"`
	WebhookPath     string               `env:"WEBHOOK_PATH" envDefault:"/telegram/webhook"`
	WebhookSecret   string               `env:"WEBHOOK_SECRET"`
	RegisterOnStart bool                 `env:"REGISTER_ON_START" envDefault:"false"`
	RequestTimeout  time.Duration        `env:"TIMEOUT" envDefault:"30s"`
	DedupTTL        time.Duration        `env:"DEDUP_TTL" envDefault:"10m"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TwilioConfig holds the Twilio REST credentials and webhook settings.
// ValidateSignature rejects webhook calls without a valid X-Twilio-Signature;
// it takes effect when AuthToken and PUBLIC_BASE_URL are set.
type TwilioConfig struct {
	HTTPClientConfig
	AccountSID        string               `env:"ACCOUNT_SID"`
	AuthToken         string               `env:"AUTH_TOKEN"`
	WhatsAppFrom      string               `env:"WHATSAPP_FROM"`
	PhoneNumberSID    string               `env:"PHONE_NUMBER_SID"`
	WebhookPath       string               `env:"WEBHOOK_PATH" envDefault:"/whatsapp"`
	ValidateSignature bool                 `env:"VALIDATE_SIGNATURE" envDefault:"true"`
	Retry             pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Url                   string        `env:"SERVICE_URL"`
}

// IngestConfig controls how source documents are split and embedded
type IngestConfig struct {
	ChunkSize    int      `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int      `env:"CHUNK_OVERLAP" envDefault:"200"`
	BatchSize    int      `env:"BATCH_SIZE" envDefault:"100"`
	Extensions   []string `env:"EXTENSIONS" envDefault:".pdf"`

	MaxFileSize  int64 `env:"MAX_FILE_SIZE" envDefault:"52428800"`   // 50 MiB
	MaxTotalSize int64 `env:"MAX_TOTAL_SIZE" envDefault:"524288000"` // 500 MiB
	MaxFileCount int   `env:"MAX_FILE_COUNT" envDefault:"256"`
}

// AnswerConfig controls retrieval and generation for a single question
type AnswerConfig struct {
	TopK              int           `env:"TOP_K" envDefault:"3"`
	Temperature       float64       `env:"TEMPERATURE" envDefault:"0.3"`
	MaxAnswerRunes    int           `env:"MAX_ANSWER_RUNES" envDefault:"4000"`
	EmbeddingCacheTTL time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"10m"`
}

// RateLimitConfig limits how often a single sender may ask questions
type RateLimitConfig struct {
	PerMinute int `env:"PER_MINUTE" envDefault:"20"`
	Burst     int `env:"BURST" envDefault:"5"`
}

// LoadConfig reads the -env flag and loads configuration for that environment
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load loads configuration from the env file of the given environment and the process environment
func Load(environment string) (*Config, error) {
	var warnings []string

	// Try to load env files, but don't fail if they are missing.
	// In containerized/prod environments variables are usually set externally.
	for _, envFile := range []string{getEnvFile(environment), ".env"} {
		if err := godotenv.Load(envFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not load %s file (this is ok if env vars are set externally)", envFile))
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment
	cfg.Warnings = warnings
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	collectWarnings(cfg)

	return cfg, nil
}

// ModelAPIKey returns the credential of the selected model provider.
// GOOGLE_API_KEY wins over the legacy VITE_API_KEY.
func (c *Config) ModelAPIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAICfg.APIKey
	}
	if c.GoogleAPIKey != "" {
		return c.GoogleAPIKey
	}
	return c.LegacyAPIKey
}

// TelegramEnabled reports whether the Telegram adapter can be served
func (c *Config) TelegramEnabled() bool {
	return c.TelegramCfg.BotToken != ""
}

// TwilioEnabled reports whether answers can be pushed through the Twilio REST API.
// Without it the WhatsApp webhook replies inline with TwiML.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioCfg.AccountSID != "" && c.TwilioCfg.AuthToken != "" && c.TwilioCfg.WhatsAppFrom != ""
}

// TwilioSignatureEnabled reports whether inbound WhatsApp requests are authenticated
func (c *Config) TwilioSignatureEnabled() bool {
	return c.TwilioCfg.ValidateSignature && c.TwilioCfg.AuthToken != "" && c.PublicBaseURL != ""
}

// DocxEnabled reports whether .docx sources are requested for ingestion
func (c *Config) DocxEnabled() bool {
	for _, ext := range c.IngestCfg.Extensions {
		if ext == ".docx" {
			return true
		}
	}
	return false
}

// WebhookURL joins the public base URL with an adapter path
func (c *Config) WebhookURL(path string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func applyDefaults(cfg *Config) {
	if cfg.GeminiCfg.Url == "" {
		cfg.GeminiCfg.Url = "https://generativelanguage.googleapis.com"
	}
	if cfg.TwilioCfg.Url == "" {
		cfg.TwilioCfg.Url = "https://api.twilio.com"
	}
	for i, ext := range cfg.IngestCfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.IngestCfg.Extensions[i] = ext
	}
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.LLMProvider != ProviderGemini && cfg.LLMProvider != ProviderOpenAI {
		errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, cfg.LLMProvider))
	}

	if cfg.IngestCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_OVERLAP must be between 0 and INGEST_CHUNK_SIZE(%d), got %d", cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap))
	}

	if cfg.IngestCfg.BatchSize < 1 || cfg.IngestCfg.BatchSize > 100 {
		errors = append(errors, fmt.Sprintf("INGEST_BATCH_SIZE must be between 1 and 100, got %d", cfg.IngestCfg.BatchSize))
	}

	if cfg.AnswerCfg.TopK < 1 {
		errors = append(errors, fmt.Sprintf("ANSWER_TOP_K must be positive, got %d", cfg.AnswerCfg.TopK))
	}

	if cfg.AnswerCfg.Temperature < 0 || cfg.AnswerCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("ANSWER_TEMPERATURE must be between 0 and 2, got %g", cfg.AnswerCfg.Temperature))
	}

	if cfg.AnswerCfg.MaxAnswerRunes < 16 {
		errors = append(errors, fmt.Sprintf("ANSWER_MAX_ANSWER_RUNES must be at least 16, got %d", cfg.AnswerCfg.MaxAnswerRunes))
	}

	if cfg.RateLimitCfg.PerMinute < 1 || cfg.RateLimitCfg.PerMinute > 60 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.RateLimitCfg.PerMinute))
	}

	if cfg.RateLimitCfg.Burst < 1 || cfg.RateLimitCfg.Burst > 20 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.RateLimitCfg.Burst))
	}

	if cfg.TelegramCfg.WebhookSecret != "" && !webhookSecretPattern.MatchString(cfg.TelegramCfg.WebhookSecret) {
		errors = append(errors, "TELEGRAM_WEBHOOK_SECRET must be 1-256 characters of A-Z, a-z, 0-9, _ or -")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// collectWarnings records recoverable configuration gaps. A missing model key
// is re-checked on every question, so it must not stop the process.
func collectWarnings(cfg *Config) {
	if cfg.ModelAPIKey() == "" && !cfg.EnableMocks {
		cfg.Warnings = append(cfg.Warnings, "no model API key found (GOOGLE_API_KEY / VITE_API_KEY / OPENAI_API_KEY); questions will be answered with a configuration error")
	}
	if !cfg.TelegramEnabled() {
		cfg.Warnings = append(cfg.Warnings, "TELEGRAM_BOT_TOKEN is not set; telegram webhook is disabled")
	}
	if !cfg.TwilioEnabled() {
		cfg.Warnings = append(cfg.Warnings, "TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_WHATSAPP_FROM are not all set; whatsapp answers are returned inline as TwiML")
	}
	if cfg.TelegramEnabled() && cfg.TelegramCfg.WebhookSecret == "" {
		cfg.Warnings = append(cfg.Warnings, "TELEGRAM_WEBHOOK_SECRET is not set; telegram webhook accepts updates from any caller")
	}
	if !cfg.TwilioSignatureEnabled() {
		cfg.Warnings = append(cfg.Warnings, "twilio signature validation is off (needs TWILIO_AUTH_TOKEN and PUBLIC_BASE_URL); whatsapp webhook accepts requests from any caller")
	}
	if cfg.UnidocLicenseKey == "" && cfg.DocxEnabled() {
		cfg.Warnings = append(cfg.Warnings, "INGEST_EXTENSIONS lists .docx but UNIDOC_LICENSE_API_KEY is not set; .docx sources will be skipped")
	}
	if cfg.PublicBaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "PUBLIC_BASE_URL is not set; webhooks cannot be registered")
	}
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
