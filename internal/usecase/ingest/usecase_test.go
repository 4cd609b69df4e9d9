package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/index"
	"github.com/futig/docqa-bot/internal/integration/gemini"
	"github.com/futig/docqa-bot/internal/pkg/document"
	"github.com/futig/docqa-bot/internal/pkg/formatter"
	"github.com/futig/docqa-bot/internal/pkg/splitter"
	"go.uber.org/zap"
)

type countingEmbedder struct {
	Embedder
	calls int
	err   error
}

func (e *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.Embedder.EmbedDocuments(ctx, texts)
}

func newUsecase(t *testing.T, emb Embedder, batch int) *IngestUsecase {
	t.Helper()
	sp, err := splitter.New(1000, 200)
	if err != nil {
		t.Fatal(err)
	}
	return NewUsecase(document.NewLoader([]string{".pdf"}), sp, emb, batch, zap.NewNop())
}

func writeSamplePDF(t *testing.T, dir string) {
	t.Helper()
	raw, err := formatter.NewPDFFormatter().Format(entity.SampleHandbook())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test_company_policy.pdf"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestBuildsIndex(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	indexPath := filepath.Join(root, "faiss_index")
	writeSamplePDF(t, dataDir)

	emb := &countingEmbedder{Embedder: gemini.NewMockConnector(zap.NewNop())}
	report, err := newUsecase(t, emb, 2).Ingest(context.Background(), dataDir, indexPath)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if report.Skipped || report.Documents != 1 || report.Pages != 3 || report.Chunks != 3 {
		t.Errorf("report = %+v", report)
	}
	if report.Dimension != gemini.MockDimension {
		t.Errorf("dimension = %d", report.Dimension)
	}
	// 3 chunks in batches of 2
	if emb.calls != 2 {
		t.Errorf("embed calls = %d, want 2", emb.calls)
	}

	ix, err := index.Load(indexPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ix.Len() != 3 {
		t.Errorf("index len = %d", ix.Len())
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	indexPath := filepath.Join(root, "faiss_index")
	writeSamplePDF(t, dataDir)

	emb := &countingEmbedder{Embedder: gemini.NewMockConnector(zap.NewNop())}
	uc := newUsecase(t, emb, 100)

	if _, err := uc.Ingest(context.Background(), dataDir, indexPath); err != nil {
		t.Fatal(err)
	}
	manifest, _ := os.ReadFile(filepath.Join(indexPath, index.ManifestFile))
	data, _ := os.ReadFile(filepath.Join(indexPath, index.DataFile))
	calls := emb.calls

	report, err := uc.Ingest(context.Background(), dataDir, indexPath)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !report.Skipped {
		t.Error("second run was not skipped")
	}
	if emb.calls != calls {
		t.Error("second run called the embedder")
	}

	manifest2, _ := os.ReadFile(filepath.Join(indexPath, index.ManifestFile))
	data2, _ := os.ReadFile(filepath.Join(indexPath, index.DataFile))
	if !bytes.Equal(manifest, manifest2) || !bytes.Equal(data, data2) {
		t.Error("index files changed on re-run")
	}
}

func TestIngestNoInput(t *testing.T) {
	root := t.TempDir()
	indexPath := filepath.Join(root, "faiss_index")
	uc := newUsecase(t, gemini.NewMockConnector(zap.NewNop()), 100)

	empty := filepath.Join(root, "empty")
	os.Mkdir(empty, 0o755)

	for _, dir := range []string{filepath.Join(root, "missing"), empty} {
		_, err := uc.Ingest(context.Background(), dir, indexPath)
		if !errors.Is(err, entity.ErrNoInput) {
			t.Errorf("%s: err = %v, want ErrNoInput", dir, err)
		}
		if entity.KindOf(err) != entity.KindNoInput {
			t.Errorf("%s: kind = %s", dir, entity.KindOf(err))
		}
		if _, statErr := os.Stat(indexPath); !os.IsNotExist(statErr) {
			t.Errorf("%s: index directory was created", dir)
		}
	}
}

func TestIngestEmbeddingFailureLeavesNoIndex(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	indexPath := filepath.Join(root, "faiss_index")
	writeSamplePDF(t, dataDir)

	emb := &countingEmbedder{
		Embedder: gemini.NewMockConnector(zap.NewNop()),
		err:      errors.New("HTTP 403: API key not valid"),
	}
	_, err := newUsecase(t, emb, 100).Ingest(context.Background(), dataDir, indexPath)
	if !errors.Is(err, entity.ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
	if entity.KindOf(err) != entity.KindProvider {
		t.Errorf("kind = %s", entity.KindOf(err))
	}

	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if e.Name() == "faiss_index" || strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("unexpected entry %s after failed ingestion", e.Name())
		}
	}
}
