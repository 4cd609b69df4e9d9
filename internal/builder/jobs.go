package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/pkg/logger"
	"github.com/futig/docqa-bot/internal/usecase/answer"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const CheckPrompt = "Say 'Hello! The API is working correctly.'"

type indexBuilder interface {
	Ingest(ctx context.Context, sourceDir, indexPath string) (*entity.IngestReport, error)
}

// IngestJob builds the index once and exits
type IngestJob struct {
	usecase   indexBuilder
	sourceDir string
	indexPath string
	logger    *zap.Logger
}

func (j *IngestJob) Run(ctx context.Context) (*entity.IngestReport, error) {
	ctx = logger.WithAction(ctxzap.ToContext(ctx, j.logger), "Ingest")
	return j.usecase.Ingest(ctx, j.sourceDir, j.indexPath)
}

func (j *IngestJob) Logger() *zap.Logger {
	return j.logger
}

type generator interface {
	Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error)
}

// CredentialCheck proves the configured key can reach the model
type CredentialCheck struct {
	generator   generator
	credentials answer.CredentialSource
	temperature float64
	logger      *zap.Logger
}

func (c *CredentialCheck) Run(ctx context.Context) (string, error) {
	ctx = logger.WithAction(ctxzap.ToContext(ctx, c.logger), "CheckAPI")

	if c.credentials.ModelAPIKey() == "" {
		return "", entity.ErrMissingAPIKey
	}

	reply, err := c.generator.Generate(ctx, CheckPrompt, entity.GenerateOptions{Temperature: c.temperature})
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrProvider, err)
	}
	return reply, nil
}

func (c *CredentialCheck) Logger() *zap.Logger {
	return c.logger
}

type telegramWebhook interface {
	SetWebhook(ctx context.Context, url string) error
}

type twilioWebhook interface {
	RegisterWebhook(ctx context.Context, webhookURL string) error
}

// WebhookRegistrar points every configured platform at this deployment
type WebhookRegistrar struct {
	baseURL     string
	telegram    telegramWebhook
	telegramURL string
	twilio      twilioWebhook
	twilioURL   string
	logger      *zap.Logger
}

var errNothingToRegister = errors.New("no messaging platform is configured")

// Run registers all webhooks and reports every failure
func (r *WebhookRegistrar) Run(ctx context.Context) error {
	ctx = logger.WithAction(ctxzap.ToContext(ctx, r.logger), "RegisterWebhooks")

	if r.baseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is not set")
	}
	if r.telegram == nil && r.twilio == nil {
		return errNothingToRegister
	}

	var errs []error
	if r.telegram != nil {
		if err := r.telegram.SetWebhook(ctx, r.telegramURL); err != nil {
			errs = append(errs, fmt.Errorf("telegram: %w", err))
		}
	}
	if r.twilio != nil {
		if err := r.twilio.RegisterWebhook(ctx, r.twilioURL); err != nil {
			errs = append(errs, fmt.Errorf("twilio: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (r *WebhookRegistrar) Logger() *zap.Logger {
	return r.logger
}
