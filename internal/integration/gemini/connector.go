package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/integration/common"
	pkgRetry "github.com/futig/docqa-bot/internal/pkg/retry"
	pkghttp "github.com/futig/docqa-bot/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	apiVersion = "/v1beta"

	// batchEmbedContents accepts at most this many requests per call
	maxBatch = 100
)

// Connector talks to the Generative Language REST API (embeddings and text generation)
type Connector struct {
	config    config.GeminiConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.GeminiConfig, apiKey string, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyQuery("key", apiKey)),
		config:    cfg,
		logger:    logger,
	}
}

// EmbeddingModel identifies the vectors this connector produces
func (c *Connector) EmbeddingModel() string {
	return c.config.EmbeddingModel
}

// EmbedDocuments embeds texts for storage in the index
func (c *Connector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		batch, err := c.embed(ctx, texts[start:end], entity.TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	ctxzap.Debug(ctx, "documents embedded", zap.Int("count", len(vectors)))
	return vectors, nil
}

// EmbedQuery embeds a single user question
func (c *Connector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, entity.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Connector) embed(ctx context.Context, texts []string, task entity.EmbeddingTask) ([][]float32, error) {
	model := modelName(c.config.EmbeddingModel)
	req := entity.GeminiBatchEmbedRequest{Requests: make([]entity.GeminiEmbedRequest, len(texts))}
	for i, text := range texts {
		req.Requests[i] = entity.GeminiEmbedRequest{
			Model:    model,
			Content:  entity.GeminiContent{Parts: []entity.GeminiPart{{Text: text}}},
			TaskType: task,
		}
	}

	endpoint := fmt.Sprintf("%s/%s:batchEmbedContents", apiVersion, model)

	var resp entity.GeminiBatchEmbedResponse
	err := pkgRetry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() error {
		resp = entity.GeminiBatchEmbedResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("batch embed contents: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed contents: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("batch embed contents: empty embedding at position %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Generate sends a single-turn prompt to the chat model
func (c *Connector) Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error) {
	ctxzap.Info(ctx, "generating answer via gemini", zap.String("model", c.config.ChatModel))

	temperature := opts.Temperature
	req := entity.GeminiGenerateRequest{
		Contents: []entity.GeminiContent{{
			Role:  "user",
			Parts: []entity.GeminiPart{{Text: prompt}},
		}},
		GenerationConfig: &entity.GeminiGenerationConfig{Temperature: &temperature},
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", apiVersion, modelName(c.config.ChatModel))

	var resp entity.GeminiGenerateResponse
	err := pkgRetry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() error {
		resp = entity.GeminiGenerateResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generate content: empty response")
	}

	ctxzap.Info(ctx, "answer generated", zap.Int("result_length", len(text)))
	return text, nil
}

func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
