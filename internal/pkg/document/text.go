package document

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/futig/docqa-bot/internal/entity"
)

func LoadText(path string) ([]entity.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s is not valid UTF-8", path)
	}
	return []entity.Document{{Text: string(raw), Metadata: metadata(path)}}, nil
}
