package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/pkg/formatter"
	"github.com/futig/docqa-bot/internal/pkg/unidoc"
)

func requireDocxLicense(t *testing.T) {
	t.Helper()
	if err := unidoc.Activate(os.Getenv(unidoc.EnvKey)); err != nil {
		t.Fatal(err)
	}
	if !unidoc.Licensed() {
		t.Skip(unidoc.EnvKey + " is not set")
	}
}

func writeHandbook(t *testing.T, dir, format string) string {
	t.Helper()
	f, err := formatter.NewFactory().Create(format)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := f.Format(entity.SampleHandbook())
	if err != nil {
		t.Fatalf("format %s: %v", format, err)
	}
	path := filepath.Join(dir, "policy"+f.FileExtension())
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPDFKeepsPages(t *testing.T) {
	path := writeHandbook(t, t.TempDir(), "pdf")

	docs, err := LoadPDF(path)
	if err != nil {
		t.Fatalf("LoadPDF: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("pages = %d, want 3", len(docs))
	}
	if !strings.Contains(docs[0].Text, "25 days per year") {
		t.Errorf("page 1 text = %q", docs[0].Text)
	}
	if docs[2].Metadata[entity.MetaPage] != "3" || docs[2].Metadata[entity.MetaSource] != "policy.pdf" {
		t.Errorf("metadata = %v", docs[2].Metadata)
	}
}

func TestLoadDOCX(t *testing.T) {
	requireDocxLicense(t)
	path := writeHandbook(t, t.TempDir(), "docx")

	docs, err := LoadDOCX(path)
	if err != nil {
		t.Fatalf("LoadDOCX: %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Text, "Economy class is mandatory") {
		t.Errorf("docs = %+v", docs)
	}
}

func TestLoadDirSelectsByExtension(t *testing.T) {
	dir := t.TempDir()
	writeHandbook(t, dir, "pdf")
	writeHandbook(t, dir, "md")
	os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("a,b"), 0o644)

	l := NewLoader([]string{".pdf"})
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	for _, d := range docs {
		if d.Metadata[entity.MetaSource] != "policy.pdf" {
			t.Errorf("unexpected source %s", d.Metadata[entity.MetaSource])
		}
	}

	l = NewLoader([]string{".pdf", ".md"})
	docs, err = l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 4 {
		t.Errorf("documents = %d, want 3 pages + 1 markdown file", len(docs))
	}
}

func TestLoadDirNoInput(t *testing.T) {
	l := NewLoader([]string{".pdf"})

	if _, err := l.LoadDir(context.Background(), filepath.Join(t.TempDir(), "data")); !errors.Is(err, entity.ErrNoInput) {
		t.Errorf("missing dir: err = %v, want ErrNoInput", err)
	}

	empty := t.TempDir()
	os.WriteFile(filepath.Join(empty, "readme.txt"), []byte("hello"), 0o644)
	if _, err := l.LoadDir(context.Background(), empty); !errors.Is(err, entity.ErrNoInput) {
		t.Errorf("no pdfs: err = %v, want ErrNoInput", err)
	}
}

func TestLoadFileCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	os.WriteFile(path, []byte("not a pdf"), 0o644)

	_, err := NewLoader([]string{".pdf"}).LoadFile(path)
	if !errors.Is(err, entity.ErrLoadFailed) {
		t.Errorf("err = %v, want ErrLoadFailed", err)
	}
}

type rejectAll struct{ seen []string }

func (r *rejectAll) ValidateSources(files []string) error {
	r.seen = files
	return entity.ErrTooManyFiles
}

func TestLoadDirRunsValidator(t *testing.T) {
	dir := t.TempDir()
	writeHandbook(t, dir, "md")

	v := &rejectAll{}
	_, err := NewLoader([]string{".md"}, WithValidator(v)).LoadDir(context.Background(), dir)
	if !errors.Is(err, entity.ErrTooManyFiles) {
		t.Fatalf("err = %v", err)
	}
	if len(v.seen) != 1 {
		t.Errorf("validator saw %d files", len(v.seen))
	}
}

func TestLoadDirSkipsDisabledExtension(t *testing.T) {
	dir := t.TempDir()
	writeHandbook(t, dir, "pdf")
	// unreadable without a license, and not even a valid container here
	os.WriteFile(filepath.Join(dir, "benefits.docx"), []byte("PK\x03\x04 stray"), 0o644)

	l := NewLoader([]string{".pdf", ".docx"}, WithSkipped("no license", ".docx"))
	if got := l.Extensions(); len(got) != 1 || got[0] != ".pdf" {
		t.Fatalf("extensions = %v", got)
	}

	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("documents = %d, want the 3 pdf pages", len(docs))
	}
}

func TestLoadDirOnlySkippedFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "benefits.docx"), []byte("stray"), 0o644)

	_, err := NewLoader([]string{".pdf", ".docx"}, WithSkipped("no license", ".docx")).LoadDir(context.Background(), dir)
	if !errors.Is(err, entity.ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
}
