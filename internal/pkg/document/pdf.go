package document

import (
	"fmt"
	"strconv"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/ledongthuc/pdf"
)

// LoadPDF returns one document per page, keeping the 1-based page number
func LoadPDF(path string) (docs []entity.Document, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		meta := metadata(path)
		meta[entity.MetaPage] = strconv.Itoa(i)
		docs = append(docs, entity.Document{Text: text, Metadata: meta})
	}
	return docs, nil
}
