package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when a registry repository is not provided.
	ErrRegistryRequired = errors.New("registry repository required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrGraphStoreRequired is returned when a graph store is not provided.
	ErrGraphStoreRequired = errors.New("graph store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")
)

// Stage failures. Each pipeline step wraps its underlying error in one of
// these so callers can tell which stage aborted the job.
var (
	// ErrExtraction marks a text extraction failure.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding marks an embedding failure after retries.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage marks a chunk persistence failure.
	ErrStorage = errors.New("chunk storage failed")

	// ErrGraphExtraction marks a graph extraction or persistence failure.
	// It never aborts the job; it surfaces as IngestResult.GraphWarning.
	ErrGraphExtraction = errors.New("graph extraction failed")
)
