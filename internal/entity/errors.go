package entity

import "errors"

// Domain errors
var (
	// Configuration errors
	ErrMissingAPIKey = errors.New("model API key is missing")

	// Index errors
	ErrIndexUnavailable = errors.New("index unavailable")
	ErrIndexExists      = errors.New("index already exists")

	// Provider errors
	ErrProvider        = errors.New("model provider failed")
	ErrEmbeddingFailed = errors.New("embedding failed")

	// Ingestion errors
	ErrNoInput           = errors.New("no input documents")
	ErrLoadFailed        = errors.New("failed to load document")
	ErrTooManyFiles      = errors.New("too many source files")
	ErrFileTooLarge      = errors.New("source file too large")
	ErrTotalSizeTooLarge = errors.New("total source size too large")

	// Query errors
	ErrEmptyQuery = errors.New("empty query")
)

// ErrorKind groups domain errors into the categories reported in logs.
type ErrorKind string

const (
	KindConfig           ErrorKind = "config"
	KindIndexUnavailable ErrorKind = "index_unavailable"
	KindProvider         ErrorKind = "provider"
	KindNoInput          ErrorKind = "no_input"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindEmptyQuery       ErrorKind = "empty_query"
	KindUnknown          ErrorKind = "unknown"
)

// KindOf maps an error chain onto its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return KindConfig
	case errors.Is(err, ErrIndexUnavailable):
		return KindIndexUnavailable
	case errors.Is(err, ErrProvider), errors.Is(err, ErrEmbeddingFailed):
		return KindProvider
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrLoadFailed):
		return KindNoInput
	case errors.Is(err, ErrTooManyFiles), errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrTotalSizeTooLarge):
		return KindInvalidInput
	case errors.Is(err, ErrEmptyQuery):
		return KindEmptyQuery
	default:
		return KindUnknown
	}
}
