package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/pkg/formatter"
	"github.com/futig/docqa-bot/internal/pkg/unidoc"
)

const defaultName = "test_company_policy"

func main() {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	format := flag.String("format", "pdf", "Output format (pdf, docx, md)")
	out := flag.String("out", "", "Output file (default test_company_policy.<ext>)")
	flag.Parse()

	f, err := formatter.NewFactory().Create(*format)
	if err != nil {
		log.Fatal("Unsupported format:", err)
	}

	if f.FileExtension() == ".docx" {
		cfg, err := config.Load(*envFlag)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
		if err := unidoc.Activate(cfg.UnidocLicenseKey); err != nil {
			log.Fatal("Failed to activate docx support:", err)
		}
		if !unidoc.Licensed() {
			log.Fatalf("docx output needs %s", unidoc.EnvKey)
		}
	}

	data, err := f.Format(entity.SampleHandbook())
	if err != nil {
		log.Fatal("Failed to render handbook:", err)
	}

	path := *out
	if path == "" {
		path = defaultName + "." + strings.TrimPrefix(f.FileExtension(), ".")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create output directory:", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatal("Failed to write handbook:", err)
	}

	log.Printf("Created %s", path)
}
