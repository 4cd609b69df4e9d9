package answer

import (
	"context"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/index"
)

type Embedder interface {
	EmbeddingModel() string
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error)
}

type IndexProvider interface {
	Get(path string) (*index.Index, error)
}

// CredentialSource is consulted before every question
type CredentialSource interface {
	ModelAPIKey() string
}
