package ingest

import (
	"context"

	"github.com/futig/docqa-bot/internal/entity"
)

type DocumentLoader interface {
	LoadDir(ctx context.Context, dir string) ([]entity.Document, error)
}

type Splitter interface {
	SplitDocuments(docs []entity.Document) []entity.Chunk
}

type Embedder interface {
	EmbeddingModel() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
