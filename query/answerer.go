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


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"haystack/ai"
	"haystack/core"
	"haystack/storage"
)

// graphQueryPrefix routes a query to the knowledge-graph path.
const graphQueryPrefix = "kg "

// DefaultTopK is the number of chunks retrieved when the caller passes a
// non-positive topK.
const DefaultTopK = 5

// graphNodeLimit bounds the node lookup on the graph path.
const graphNodeLimit = 10

// answerPromptTemplate embeds retrieved context and the question.
const answerPromptTemplate = "Use the context below to answer the question.\n\nContext:\n%s\n\nQuestion: %s\nAnswer:"

// QueryRecorder receives usage notifications for answered queries.
type QueryRecorder interface {
	LogQuery(ctx context.Context, tenantID, queryText string) error
}

// Answerer orchestrates query answering. Plain queries go embed ->
// retrieve -> generate; queries prefixed with "kg " go to the
// knowledge-graph lookup path instead and never touch the generator.
// No caching: every call re-embeds and re-retrieves.
type Answerer struct {
	vectors  storage.VectorStore
	graphs   storage.GraphStore
	provider ai.Provider
	recorder QueryRecorder
	logger   *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer)

// WithRecorder sets the usage recorder. Without one, queries are not
// logged.
func WithRecorder(recorder QueryRecorder) Option {
	return func(a *Answerer) {
		a.recorder = recorder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnswerer creates a query answerer over the given stores and
// provider.
func NewAnswerer(vectors storage.VectorStore, graphs storage.GraphStore, provider ai.Provider, opts ...Option) (*Answerer, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if graphs == nil {
		return nil, ErrGraphStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Answerer{
		vectors:  vectors,
		graphs:   graphs,
		provider: provider,
		logger:   slog.Default().With("component", "query"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Answer answers a tenant's query. topK bounds chunk retrieval; values
// below 1 fall back to DefaultTopK. Generation failures surface in the
// returned text, not as an error, per the Generator contract.
func (a *Answerer) Answer(ctx context.Context, queryText, tenantID string, topK int) (string, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return "", ErrEmptyQuery
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	var answer string
	var err error
	if rest, ok := strings.CutPrefix(queryText, graphQueryPrefix); ok {
		answer, err = a.answerFromGraph(ctx, strings.TrimSpace(rest), tenantID)
	} else {
		answer, err = a.answerFromChunks(ctx, queryText, tenantID, topK)
	}
	if err != nil {
		return "", err
	}

	if a.recorder != nil {
		if recErr := a.recorder.LogQuery(ctx, tenantID, queryText); recErr != nil {
			a.logger.Error("failed to record query", "tenant", tenantID, "err", recErr)
		}
	}
	return answer, nil
}

// answerFromChunks is the retrieval-augmented generation path.
func (a *Answerer) answerFromChunks(ctx context.Context, queryText, tenantID string, topK int) (string, error) {
	vector, err := a.provider.Embedder().EmbedText(ctx, queryText)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	hits, err := a.vectors.NearestChunks(ctx, vector, topK, tenantID)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(texts, "\n"), queryText)

	a.logger.Debug("answering query", "tenant", tenantID, "chunks", len(hits))
	return a.provider.Generator().Generate(ctx, prompt)
}

// answerFromGraph looks up nodes matching the query remainder and the
// edges touching them. The generator is never invoked on this path; a
// tenant with no matching nodes gets a literal fallback.
func (a *Answerer) answerFromGraph(ctx context.Context, queryText, tenantID string) (string, error) {
	nodes, err := a.graphs.NearestNodes(ctx, queryText, tenantID, graphNodeLimit)
	if err != nil {
		return "", fmt.Errorf("graph node lookup: %w", err)
	}
	if len(nodes) == 0 {
		return fmt.Sprintf("No knowledge-graph information found for %q.", queryText), nil
	}

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.NodeID
	}
	edges, err := a.graphs.EdgesTouching(ctx, ids, tenantID)
	if err != nil {
		return "", fmt.Errorf("graph edge lookup: %w", err)
	}

	return renderGraph(queryText, nodes, edges), nil
}

// renderGraph formats a node/edge listing for terminal display. Edge
// endpoints are shown by label when the node is in the result set,
// otherwise by raw id.
func renderGraph(queryText string, nodes []core.GraphNode, edges []core.GraphEdge) string {
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		labels[n.NodeID] = n.Label
	}
	endpoint := func(id string) string {
		if label, ok := labels[id]; ok {
			return label
		}
		return id
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Knowledge graph results for %q:\n\nNodes:\n", queryText)
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  - %s (%s)\n", n.Label, n.Type)
	}

	if len(edges) > 0 {
		sb.WriteString("\nEdges:\n")
		for _, e := range edges {
			fmt.Fprintf(&sb, "  - %s -[%s]-> %s\n", endpoint(e.Source), e.Relation, endpoint(e.Target))
		}
	}
	return sb.String()
}
