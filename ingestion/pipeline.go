// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"

	"haystack/ai"
	"haystack/core"
	"haystack/storage"
)

// TextExtractor turns a document file into plain text.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// IngestionRecorder receives usage notifications for completed ingestions.
type IngestionRecorder interface {
	LogIngestion(ctx context.Context, tenantID string, chunks int, filename string) error
}

// Pipeline orchestrates the ingestion of one document: extract text,
// chunk, embed, persist chunks, extract and persist the knowledge graph.
// Stages run strictly in order; only the per-chunk embedding calls fan
// out, and that pool is fully joined before the stage returns.
type Pipeline struct {
	registry  storage.RegistryRepository
	vectors   storage.VectorStore
	graphs    storage.GraphStore
	provider  ai.Provider
	extractor TextExtractor
	recorder  IngestionRecorder
	embedPool *ants.Pool
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding calls.
// Default is 4.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embedPool != nil {
			p.embedPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap. Defaults are 800 and 100.
func WithChunking(chunkSize, overlap int) Option {
	return func(p *Pipeline) error {
		if chunkSize < 1 {
			return fmt.Errorf("chunk size must be positive")
		}
		p.chunkSize = chunkSize
		p.overlap = overlap
		return nil
	}
}

// WithRecorder sets the usage recorder. Without one, ingestions are not
// logged.
func WithRecorder(recorder IngestionRecorder) Option {
	return func(p *Pipeline) error {
		p.recorder = recorder
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// defaultEmbedConcurrency bounds the embedding fan-out. The calls are
// network-bound; a small pool keeps the provider rate limits happy.
const defaultEmbedConcurrency = 4

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	registry storage.RegistryRepository,
	vectors storage.VectorStore,
	graphs storage.GraphStore,
	provider ai.Provider,
	extractor TextExtractor,
	opts ...Option,
) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if graphs == nil {
		return nil, ErrGraphStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	pool, err := ants.NewPool(defaultEmbedConcurrency)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registry:  registry,
		vectors:   vectors,
		graphs:    graphs,
		provider:  provider,
		extractor: extractor,
		embedPool: pool,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		logger:    slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest runs the full pipeline for one document against the tenant's
// active knowledge base.
//
// The active KB is resolved before any I/O; a tenant without one fails
// with core.ErrNoActiveKnowledgeBase immediately. Graph extraction and
// graph persistence failures do not fail the ingestion once chunks are
// stored; they surface in IngestResult.GraphWarning.
func (p *Pipeline) Ingest(ctx context.Context, path, tenantID string) (*core.IngestResult, error) {
	kbID, err := p.registry.GetActiveKB(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	text, err := p.extractor.ExtractText(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	parts := SplitText(text, p.chunkSize, p.overlap)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, core.ErrEmptyDocument)
	}

	documentID := core.NewDocumentID()
	p.logger.Info("ingesting document",
		"tenant", tenantID, "kb", kbID, "document", documentID,
		"path", path, "chunks", len(parts))

	vectors, err := p.embedAll(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	chunks := make([]core.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = core.Chunk{
			Text:       part,
			TenantID:   tenantID,
			KBID:       kbID,
			DocumentID: documentID,
			Index:      i,
		}
	}

	if err := p.vectors.UpsertChunks(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result := &core.IngestResult{
		Chunks:     len(chunks),
		KBID:       kbID,
		DocumentID: documentID,
	}

	// Chunks are durable from here on; the graph stage only degrades.
	nodes, edges, err := p.extractGraph(ctx, text, tenantID, kbID, documentID)
	if err != nil {
		result.GraphWarning = fmt.Sprintf("%v: %v", ErrGraphExtraction, err)
		p.logger.Warn("graph stage failed, chunks kept",
			"tenant", tenantID, "document", documentID, "err", err)
	} else {
		result.GraphNodes = nodes
		result.GraphEdges = edges
	}

	if p.recorder != nil {
		if err := p.recorder.LogIngestion(ctx, tenantID, len(chunks), filepath.Base(path)); err != nil {
			p.logger.Error("failed to record ingestion", "tenant", tenantID, "err", err)
		}
	}

	return result, nil
}

// embedAll embeds every chunk through the bounded worker pool. Results
// keep input order and the pool is fully joined before returning. Fails
// as a whole if any single chunk cannot be embedded.
func (p *Pipeline) embedAll(ctx context.Context, parts []string) ([][]float32, error) {
	embedder := p.provider.Embedder()
	vectors := make([][]float32, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		submitErr := p.embedPool.Submit(func() {
			defer wg.Done()
			vectors[i], errs[i] = embedder.EmbedText(ctx, part)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return vectors, nil
}

// extractGraph runs graph extraction on the full text, tags the result
// with the tenant/kb/document and persists it. Returns the stored node
// and edge counts.
func (p *Pipeline) extractGraph(ctx context.Context, text, tenantID, kbID, documentID string) (int, int, error) {
	graph, err := p.provider.GraphExtractor().ExtractGraph(ctx, text)
	if err != nil {
		return 0, 0, err
	}

	nodes := make([]core.GraphNode, len(graph.Nodes))
	for i, n := range graph.Nodes {
		n.TenantID = tenantID
		n.KBID = kbID
		n.DocumentID = documentID
		nodes[i] = n
	}
	edges := make([]core.GraphEdge, len(graph.Edges))
	for i, e := range graph.Edges {
		e.TenantID = tenantID
		e.KBID = kbID
		e.DocumentID = documentID
		edges[i] = e
	}

	if err := p.graphs.UpsertGraph(ctx, nodes, edges); err != nil {
		return 0, 0, err
	}
	return len(nodes), len(edges), nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
