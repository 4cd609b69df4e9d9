package entity

import "time"

// Metadata keys attached to documents and chunks
const (
	MetaSource = "source"
	MetaPath   = "path"
	MetaPage   = "page"
	MetaChunk  = "chunk"
)

// Document is the text of a single page extracted from a source file
type Document struct {
	Text     string
	Metadata map[string]string
}

// Chunk is a bounded, overlapping window of a Document, the unit of retrieval
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a chunk returned by the index together with its similarity score
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// IngestReport summarizes a single ingestion run
type IngestReport struct {
	Skipped   bool
	IndexPath string
	Documents int
	Pages     int
	Chunks    int
	Dimension int
	Duration  time.Duration
}
