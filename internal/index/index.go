package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/futig/docqa-bot/internal/entity"
)

// Index is a flat (exhaustive) cosine-similarity index. It is filled once
// while building and only read afterwards, so concurrent searches need no locking.
type Index struct {
	model     string
	dimension int
	chunks    []entity.Chunk
	vectors   [][]float32
	norms     []float64
}

// New creates an empty index. A zero dimension is taken from the first added vector.
func New(model string, dimension int) *Index {
	return &Index{
		model:     model,
		dimension: dimension,
	}
}

func (ix *Index) Model() string {
	return ix.model
}

func (ix *Index) Dimension() int {
	return ix.dimension
}

func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Add appends chunks with their embeddings, one vector per chunk
func (ix *Index) Add(chunks []entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add to index: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	for i, vec := range vectors {
		if ix.dimension == 0 {
			ix.dimension = len(vec)
		}
		if len(vec) == 0 || len(vec) != ix.dimension {
			return fmt.Errorf("add to index: vector %d has dimension %d, want %d", i, len(vec), ix.dimension)
		}
	}

	for i, vec := range vectors {
		ix.chunks = append(ix.chunks, chunks[i])
		ix.vectors = append(ix.vectors, vec)
		ix.norms = append(ix.norms, norm(vec))
	}
	return nil
}

// Search returns up to k chunks ordered by descending cosine similarity.
// Equal scores keep insertion order.
func (ix *Index) Search(query []float32, k int) ([]entity.SearchResult, error) {
	if k <= 0 || len(ix.chunks) == 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("search index: query has dimension %d, want %d", len(query), ix.dimension)
	}

	qNorm := norm(query)
	results := make([]entity.SearchResult, len(ix.chunks))
	for i, vec := range ix.vectors {
		results[i] = entity.SearchResult{
			Chunk: ix.chunks[i],
			Score: cosine(query, vec, qNorm, ix.norms[i]),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32, aNorm, bNorm float64) float32 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (aNorm * bNorm))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
