package splitter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/futig/docqa-bot/internal/entity"
)

// DefaultSeparators go from paragraphs down to single characters
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter is a recursive character splitter: text is cut on the coarsest
// separator present, oversized pieces are split again with the next one, and
// small pieces are merged back into chunks of at most chunkSize runes that
// overlap their predecessor by at most chunkOverlap runes.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

type Option func(*Splitter)

func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		s.separators = separators
	}
}

func New(chunkSize, chunkOverlap int, opts ...Option) (*Splitter, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", chunkOverlap, chunkSize)
	}

	s := &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SplitDocuments splits every document on its own; chunks inherit the
// document metadata plus their position within it.
func (s *Splitter) SplitDocuments(docs []entity.Document) []entity.Chunk {
	var chunks []entity.Chunk
	for _, doc := range docs {
		for i, text := range s.SplitText(doc.Text) {
			meta := make(map[string]string, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta[entity.MetaChunk] = strconv.Itoa(i)

			chunks = append(chunks, entity.Chunk{
				ID:       chunkID(doc.Metadata, i),
				Text:     text,
				Metadata: meta,
			})
		}
	}
	return chunks
}

func (s *Splitter) SplitText(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := ""
	var rest []string
	if len(separators) > 0 {
		separator = separators[len(separators)-1]
	}
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			// nothing finer to cut with
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				final = append(final, trimmed)
			}
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs pieces into chunks. Separators are already attached to the
// pieces, so they are joined without a delimiter.
func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := length(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// keep a tail of the previous chunk as overlap
			for total > s.chunkOverlap || (total+n > s.chunkSize && total > 0) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator cuts text on sep and prefixes every piece but the
// first with the separator. An empty separator yields single runes.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	for i, part := range strings.Split(text, sep) {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func chunkID(meta map[string]string, i int) string {
	source := meta[entity.MetaSource]
	if source == "" {
		source = "doc"
	}
	if page := meta[entity.MetaPage]; page != "" {
		return fmt.Sprintf("%s#p%s-c%d", source, page, i)
	}
	return fmt.Sprintf("%s#c%d", source, i)
}
