package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Returned when a chunk id is added to a collection twice.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension with no registered extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDirectoryNotFound indicates the ingestion target is missing or not a directory.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrEmptyQuery indicates a blank question was asked.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrExtraction indicates a file of a supported type could not be parsed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrDimensionMismatch indicates a vector whose length differs from the collection's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreUnavailable indicates the index store could not be opened or queried.
	ErrStoreUnavailable = errors.New("index store unavailable")

	// ErrLLMUnavailable indicates the language model backend failed or is unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend failed or is unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ErrorKind classifies errors for reporting and tests.
type ErrorKind string

// Error kinds.
const (
	KindUnknown     ErrorKind = "unknown"
	KindUserInput   ErrorKind = "user_input"
	KindExtraction  ErrorKind = "extraction"
	KindUnsupported ErrorKind = "unsupported"
	KindStore       ErrorKind = "store"
	KindEmbedding   ErrorKind = "embedding"
	KindLLM         ErrorKind = "llm"
)

// String returns the string representation.
func (k ErrorKind) String() string {
	return string(k)
}

// Fatal reports whether errors of this kind abort the whole command.
// Extraction, store and embedding failures only abort the current file.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindExtraction, KindUnsupported, KindStore, KindEmbedding:
		return false
	default:
		return true
	}
}

// KindOf classifies err by the first sentinel it wraps.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrDirectoryNotFound),
		errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrInvalidInput):
		return KindUserInput
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrUnsupportedType):
		return KindUnsupported
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrNotFound):
		return KindStore
	case errors.Is(err, ErrEmbeddingUnavailable):
		return KindEmbedding
	case errors.Is(err, ErrLLMUnavailable):
		return KindLLM
	default:
		return KindUnknown
	}
}
