package answer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const ellipsis = "…"

// AnswerUsecase answers a question from the documents of an index
type AnswerUsecase struct {
	embedder    Embedder
	generator   Generator
	indices     IndexProvider
	credentials CredentialSource
	config      config.AnswerConfig
	embeddings  *cache.Cache
	logger      *zap.Logger
}

func NewUsecase(
	embedder Embedder,
	generator Generator,
	indices IndexProvider,
	credentials CredentialSource,
	cfg config.AnswerConfig,
	logger *zap.Logger,
) *AnswerUsecase {
	uc := &AnswerUsecase{
		embedder:    embedder,
		generator:   generator,
		indices:     indices,
		credentials: credentials,
		config:      cfg,
		logger:      logger,
	}
	if cfg.EmbeddingCacheTTL > 0 {
		uc.embeddings = cache.New(cfg.EmbeddingCacheTTL, 2*cfg.EmbeddingCacheTTL)
	}
	return uc
}

// Answer never fails: every error is logged and replaced by a fixed reply
func (uc *AnswerUsecase) Answer(ctx context.Context, query, indexPath string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			ctxzap.Error(ctx, "answer pipeline panicked", zap.Any("panic", r))
			reply = MsgProviderDown
		}
	}()

	answer, err := uc.Ask(ctx, query, indexPath)
	if err == nil {
		return answer
	}

	failure := Classify(err)
	fields := []zap.Field{
		zap.Error(failure.Err),
		zap.String("kind", string(failure.Kind)),
		zap.String("severity", failure.Severity.String()),
		zap.String("index_path", indexPath),
	}
	if failure.Severity == SeverityWarning {
		ctxzap.Warn(ctx, failure.LogMessage, fields...)
	} else {
		ctxzap.Error(ctx, failure.LogMessage, fields...)
	}
	return failure.UserMessage
}

// Ask runs the retrieval-augmented pipeline and reports failures as typed errors
func (uc *AnswerUsecase) Ask(ctx context.Context, query, indexPath string) (string, error) {
	if uc.credentials.ModelAPIKey() == "" {
		return "", entity.ErrMissingAPIKey
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", entity.ErrEmptyQuery
	}

	ix, err := uc.indices.Get(indexPath)
	if err != nil {
		return "", fmt.Errorf("load index: %w", err)
	}
	if ix.Model() != uc.embedder.EmbeddingModel() {
		ctxzap.Warn(ctx, "index was built with a different embedding model",
			zap.String("index_model", ix.Model()),
			zap.String("query_model", uc.embedder.EmbeddingModel()),
		)
	}

	started := time.Now()
	vector, err := uc.embedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: embed query: %w", entity.ErrProvider, err)
	}

	results, err := ix.Search(vector, uc.config.TopK)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrIndexUnavailable, err)
	}

	ctxzap.Info(ctx, "context retrieved",
		zap.Int("chunk_count", len(results)),
		zap.Strings("chunk_ids", chunkIDs(results)),
	)

	answer, err := uc.generator.Generate(ctx, BuildPrompt(query, results), entity.GenerateOptions{
		Temperature: uc.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: generate: %w", entity.ErrProvider, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", entity.ErrProvider)
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int("answer_length", utf8.RuneCountInString(answer)),
		zap.Duration("duration", time.Since(started)),
	)
	return truncate(answer, uc.config.MaxAnswerRunes), nil
}

func (uc *AnswerUsecase) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if uc.embeddings != nil {
		if v, ok := uc.embeddings.Get(query); ok {
			return v.([]float32), nil
		}
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	if uc.embeddings != nil {
		uc.embeddings.SetDefault(query, vector)
	}
	return vector, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-1]), " \n") + ellipsis
}

func chunkIDs(results []entity.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Chunk.ID
	}
	return ids
}
