package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/docqa-bot/internal/api"
	telegramapi "github.com/futig/docqa-bot/internal/api/telegram"
	twilioapi "github.com/futig/docqa-bot/internal/api/twilio"
	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/index"
	"github.com/futig/docqa-bot/internal/integration/telegram"
	"github.com/futig/docqa-bot/internal/integration/twilio"
	"github.com/futig/docqa-bot/internal/pkg/document"
	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
	"github.com/futig/docqa-bot/internal/pkg/splitter"
	"github.com/futig/docqa-bot/internal/pkg/unidoc"
	"github.com/futig/docqa-bot/internal/pkg/validator"
	"github.com/futig/docqa-bot/internal/usecase/answer"
	"github.com/futig/docqa-bot/internal/usecase/ingest"
	"go.uber.org/zap"
)

// Build wires the webhook server
func Build() (*App, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("index_path", cfg.IndexPath),
	)

	provider := buildProvider(cfg, logger)

	answerUC := answer.NewUsecase(
		provider,
		provider,
		index.NewCache(),
		buildCredentials(cfg),
		cfg.AnswerCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	limiter := ratelimit.New(cfg.RateLimitCfg.PerMinute, cfg.RateLimitCfg.Burst)

	routerCfg := api.RouterConfig{
		TelegramPath: cfg.TelegramCfg.WebhookPath,
		WhatsAppPath: cfg.TwilioCfg.WebhookPath,
	}

	if cfg.TelegramEnabled() {
		routerCfg.TelegramHandler = telegramapi.NewHandler(
			answerUC,
			telegram.NewConnector(cfg.TelegramCfg, logger),
			limiter,
			cfg.IndexPath,
			cfg.TelegramCfg.DedupTTL,
			logger,
			telegramapi.WithSecretToken(cfg.TelegramCfg.WebhookSecret),
		)
	}

	// Without REST credentials the answer goes back inline as TwiML
	var whatsappSender twilioapi.WhatsAppSender
	if cfg.TwilioEnabled() {
		whatsappSender = twilio.NewConnector(cfg.TwilioCfg, logger)
	}
	var whatsappOpts []twilioapi.HandlerOption
	if cfg.TwilioSignatureEnabled() {
		whatsappOpts = append(whatsappOpts, twilioapi.WithSignatureCheck(
			cfg.TwilioCfg.AuthToken,
			cfg.WebhookURL(cfg.TwilioCfg.WebhookPath),
		))
	}
	routerCfg.WhatsAppHandler = twilioapi.NewHandler(answerUC, whatsappSender, limiter, cfg.IndexPath, whatsappOpts...)
	logger.Info("API handlers initialized",
		zap.Bool("telegram", cfg.TelegramEnabled()),
		zap.Bool("telegram_secret_token", cfg.TelegramCfg.WebhookSecret != ""),
		zap.Bool("twilio_rest", cfg.TwilioEnabled()),
		zap.Bool("twilio_signature", cfg.TwilioSignatureEnabled()),
	)

	router := api.SetupRouter(routerCfg, logger)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	app := &App{
		server:  server,
		limiter: limiter,
		logger:  logger,
	}
	if cfg.TelegramCfg.RegisterOnStart {
		app.registrar = newWebhookRegistrar(cfg, logger)
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return app, nil
}

// BuildIngest wires the ingestion pipeline over the configured data directory
func BuildIngest() (*IngestJob, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}

	if buildCredentials(cfg).ModelAPIKey() == "" {
		return nil, fmt.Errorf("model API key is not configured (GOOGLE_API_KEY / VITE_API_KEY / OPENAI_API_KEY)")
	}

	textSplitter, err := splitter.New(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("setup splitter: %w", err)
	}

	usecase := ingest.NewUsecase(
		document.NewLoader(cfg.IngestCfg.Extensions, loaderOptions(cfg)...),
		textSplitter,
		buildProvider(cfg, logger),
		cfg.IngestCfg.BatchSize,
		logger,
	)

	return &IngestJob{
		usecase:   usecase,
		sourceDir: cfg.DataDir,
		indexPath: cfg.IndexPath,
		logger:    logger,
	}, nil
}

// BuildCredentialCheck wires a single generation round trip against the configured provider
func BuildCredentialCheck() (*CredentialCheck, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}

	return &CredentialCheck{
		generator:   buildProvider(cfg, logger),
		credentials: buildCredentials(cfg),
		temperature: cfg.AnswerCfg.Temperature,
		logger:      logger,
	}, nil
}

// BuildWebhookRegistrar wires the webhook registration of every configured platform
func BuildWebhookRegistrar() (*WebhookRegistrar, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, err
	}

	return newWebhookRegistrar(cfg, logger), nil
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := unidoc.Activate(cfg.UnidocLicenseKey); err != nil {
		logger.Warn("docx support disabled", zap.Error(err))
	}

	return cfg, logger, nil
}

func loaderOptions(cfg *config.Config) []document.LoaderOption {
	opts := []document.LoaderOption{
		document.WithValidator(validator.NewFileValidator(cfg.IngestCfg)),
	}
	if !unidoc.Licensed() {
		opts = append(opts, document.WithSkipped(unidoc.EnvKey+" is not set", ".docx"))
	}
	return opts
}

func newWebhookRegistrar(cfg *config.Config, logger *zap.Logger) *WebhookRegistrar {
	r := &WebhookRegistrar{
		baseURL: cfg.PublicBaseURL,
		logger:  logger,
	}
	if cfg.TelegramEnabled() {
		r.telegram = telegram.NewConnector(cfg.TelegramCfg, logger)
		r.telegramURL = cfg.WebhookURL(cfg.TelegramCfg.WebhookPath)
	}
	if cfg.TwilioCfg.AccountSID != "" && cfg.TwilioCfg.AuthToken != "" && cfg.TwilioCfg.PhoneNumberSID != "" {
		r.twilio = twilio.NewConnector(cfg.TwilioCfg, logger)
		r.twilioURL = cfg.WebhookURL(cfg.TwilioCfg.WebhookPath)
	}
	return r
}
