package ai

import (
	"context"

	"haystack/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails after the
	// implementation's own retry policy is exhausted.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice has the same length and order as the input; an
	// empty input yields an empty result without any provider call.
	// Fails as a whole if any single element cannot be embedded.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a prompt.
//
// Generate is the one soft-failing boundary in the system: on provider
// error after retries it returns a human-readable error string and a nil
// error, so the query path always produces output. Callers that need to
// distinguish degraded answers should not exist; if one appears, this
// contract needs revisiting.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GraphExtractor extracts a knowledge graph from full document text.
// Implementations must be thread-safe for concurrent use.
type GraphExtractor interface {
	// ExtractGraph analyzes text and returns the entities and relations it
	// mentions. Zero nodes and edges is a valid result; an unparseable
	// provider response is an error.
	ExtractGraph(ctx context.Context, text string) (*core.KnowledgeGraph, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder, Generator
// and GraphExtractor instances sharing configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// GraphExtractor returns the knowledge-graph extraction service.
	GraphExtractor() GraphExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
