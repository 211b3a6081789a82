package query

import "errors"

var (
	// ErrVectorStoreRequired is returned when an answerer is constructed
	// without a vector store.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrGraphStoreRequired is returned when an answerer is constructed
	// without a graph store.
	ErrGraphStoreRequired = errors.New("graph store is required")

	// ErrAIProviderRequired is returned when an answerer is constructed
	// without an AI provider.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrEmptyQuery is returned for empty or whitespace-only queries.
	ErrEmptyQuery = errors.New("query must not be empty")
)
