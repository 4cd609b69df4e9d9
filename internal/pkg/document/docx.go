package document

import (
	"fmt"
	"strings"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/unidoc/unioffice/document"
)

// LoadDOCX returns the whole file as one document, a line per paragraph
func LoadDOCX(path string) ([]entity.Document, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}

	return []entity.Document{{Text: b.String(), Metadata: metadata(path)}}, nil
}
