package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	pkghttp "github.com/futig/docqa-bot/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const maxBatch = 100

// Connector serves embeddings and chat completions from any OpenAI-compatible endpoint
type Connector struct {
	config config.OpenAIConfig
	client openai.Client
	logger *zap.Logger
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	httpClient := pkghttp.NewClient(
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithRequestLogging(),
	)

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	)

	return &Connector{
		config: cfg,
		client: client,
		logger: logger,
	}
}

func (c *Connector) EmbeddingModel() string {
	return c.config.EmbeddingModel
}

func (c *Connector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		batch, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *Connector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Connector) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.config.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("create embeddings: index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

func (c *Connector) Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error) {
	ctxzap.Info(ctx, "generating answer via openai", zap.String("model", c.config.ChatModel))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.config.ChatModel),
		Temperature: openai.Float(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}

	ctxzap.Info(ctx, "answer generated", zap.Int("result_length", len(text)))
	return text, nil
}
