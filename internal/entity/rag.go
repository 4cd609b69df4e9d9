package entity

// EmbeddingTask tells the embedding provider how a text will be used.
type EmbeddingTask string

const (
	TaskRetrievalDocument EmbeddingTask = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    EmbeddingTask = "RETRIEVAL_QUERY"
)

// GenerateOptions tunes a single generation request
type GenerateOptions struct {
	Temperature float64
}
