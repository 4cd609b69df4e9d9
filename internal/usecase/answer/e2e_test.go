package answer

import (
	"context"
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
	"github.com/futig/docqa-bot/internal/usecase/ingest"
	"go.uber.org/zap"
)

type promptRecorder struct {
	Generator
	prompt string
}

func (p *promptRecorder) Generate(ctx context.Context, prompt string, opts entity.GenerateOptions) (string, error) {
	p.prompt = prompt
	return p.Generator.Generate(ctx, prompt, opts)
}

func TestHandbookQuestionEndToEnd(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	indexPath := filepath.Join(root, "faiss_index")

	raw, err := formatter.NewPDFFormatter().Format(entity.SampleHandbook())
	if err != nil {
		t.Fatal(err)
	}
	os.MkdirAll(dataDir, 0o755)
	if err := os.WriteFile(filepath.Join(dataDir, "test_company_policy.pdf"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	provider := gemini.NewMockConnector(zap.NewNop())
	sp, _ := splitter.New(1000, 200)
	ingestor := ingest.NewUsecase(document.NewLoader([]string{".pdf"}), sp, provider, 100, zap.NewNop())
	if _, err := ingestor.Ingest(context.Background(), dataDir, indexPath); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	gen := &promptRecorder{Generator: provider}
	uc := NewUsecase(provider, gen, index.NewCache(), staticKey("key"), testConfig(), zap.NewNop())

	reply := uc.Answer(context.Background(), "How many annual leave days do I get?", indexPath)

	if !strings.Contains(gen.prompt, "25 days per year") {
		t.Errorf("leave chunk not in retrieved context:\n%s", gen.prompt)
	}
	if !strings.Contains(reply, "25") {
		t.Errorf("reply %q does not mention 25", reply)
	}
}
