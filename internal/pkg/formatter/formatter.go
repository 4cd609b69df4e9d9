package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/docqa-bot/internal/entity"
)

type Formatter interface {
	Format(h *entity.Handbook) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the formatter for a file extension or format name ("pdf", ".docx", "md")
func (f *Factory) Create(format string) (Formatter, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "md", "markdown":
		return NewMarkdownFormatter(), nil
	case "docx":
		return NewDOCXFormatter(), nil
	case "pdf":
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
