package builder

import (
	"context"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/integration/gemini"
	"github.com/futig/docqa-bot/internal/integration/openai"
	"github.com/futig/docqa-bot/internal/usecase/answer"
	"go.uber.org/zap"
)

// modelProvider is satisfied by every embedding + generation backend
type modelProvider interface {
	EmbeddingModel() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error)
}

// mockCredentials stands in for a model key when the offline provider is used
type mockCredentials struct{}

func (mockCredentials) ModelAPIKey() string { return "mock" }

func buildProvider(cfg *config.Config, logger *zap.Logger) modelProvider {
	if cfg.EnableMocks {
		logger.Info("Using mock model provider")
		return gemini.NewMockConnector(logger)
	}

	logger.Info("Using model provider", zap.String("provider", cfg.LLMProvider))
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewConnector(cfg.OpenAICfg, logger)
	default:
		return gemini.NewConnector(cfg.GeminiCfg, cfg.ModelAPIKey(), logger)
	}
}

func buildCredentials(cfg *config.Config) answer.CredentialSource {
	if cfg.EnableMocks {
		return mockCredentials{}
	}
	return cfg
}
