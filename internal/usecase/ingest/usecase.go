package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/index"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const defaultBatchSize = 100

// IngestUsecase turns a directory of source documents into a persisted index
type IngestUsecase struct {
	loader    DocumentLoader
	splitter  Splitter
	embedder  Embedder
	batchSize int
	logger    *zap.Logger
}

func NewUsecase(
	loader DocumentLoader,
	splitter Splitter,
	embedder Embedder,
	batchSize int,
	logger *zap.Logger,
) *IngestUsecase {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &IngestUsecase{
		loader:    loader,
		splitter:  splitter,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Ingest builds the index at indexPath from the files in sourceDir.
// An existing index is left untouched and reported as skipped.
func (uc *IngestUsecase) Ingest(ctx context.Context, sourceDir, indexPath string) (*entity.IngestReport, error) {
	started := time.Now()
	report := &entity.IngestReport{IndexPath: indexPath}

	if index.Exists(indexPath) {
		ctxzap.Info(ctx, "index already exists, skipping ingestion", zap.String("index_path", indexPath))
		report.Skipped = true
		report.Duration = time.Since(started)
		return report, nil
	}

	docs, err := uc.loader.LoadDir(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	report.Pages = len(docs)
	report.Documents = countSources(docs)

	ctxzap.Info(ctx, "documents loaded",
		zap.String("source_dir", sourceDir),
		zap.Int("document_count", report.Documents),
		zap.Int("page_count", report.Pages),
	)

	chunks := uc.splitter.SplitDocuments(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("split documents: %w", entity.ErrNoInput)
	}
	report.Chunks = len(chunks)

	ctxzap.Info(ctx, "documents split", zap.Int("chunk_count", len(chunks)))

	vectors, err := uc.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	ix := index.New(uc.embedder.EmbeddingModel(), 0)
	if err := ix.Add(chunks, vectors); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrEmbeddingFailed, err)
	}
	report.Dimension = ix.Dimension()

	if err := index.Save(ix, indexPath); err != nil {
		if errors.Is(err, entity.ErrIndexExists) {
			// another run published first
			report.Skipped = true
			report.Duration = time.Since(started)
			return report, nil
		}
		return nil, fmt.Errorf("save index: %w", err)
	}

	report.Duration = time.Since(started)
	ctxzap.Info(ctx, "index saved",
		zap.String("index_path", indexPath),
		zap.Int("chunk_count", report.Chunks),
		zap.Int("dimension", report.Dimension),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (uc *IngestUsecase) embed(ctx context.Context, chunks []entity.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += uc.batchSize {
		end := min(start+uc.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := uc.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrEmbeddingFailed, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", entity.ErrEmbeddingFailed, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		ctxzap.Debug(ctx, "batch embedded", zap.Int("done", end), zap.Int("total", len(chunks)))
	}
	return vectors, nil
}

func countSources(docs []entity.Document) int {
	seen := make(map[string]struct{})
	for _, d := range docs {
		seen[d.Metadata[entity.MetaPath]] = struct{}{}
	}
	return len(seen)
}
