package mock

import (
	"context"
	"fmt"
	"strings"

	"haystack/core"
)

// MockGraphExtractor is a test double for ai.GraphExtractor.
// It allows custom behavior injection via function fields.
type MockGraphExtractor struct {
	// ExtractGraphFunc is called by ExtractGraph if set.
	// If nil, uses default simple word-based extraction.
	ExtractGraphFunc func(ctx context.Context, text string) (*core.KnowledgeGraph, error)

	callCount int
}

// NewMockGraphExtractor creates a mock graph extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockGraphExtractor() *MockGraphExtractor {
	return &MockGraphExtractor{}
}

// ExtractGraph builds a small deterministic graph from the words in text.
// Default behavior: the first few distinct words become nodes, each chained
// to the previous one by a "follows" edge.
func (m *MockGraphExtractor) ExtractGraph(ctx context.Context, text string) (*core.KnowledgeGraph, error) {
	m.callCount++

	if m.ExtractGraphFunc != nil {
		return m.ExtractGraphFunc(ctx, text)
	}

	words := strings.Fields(strings.ToLower(text))
	graph := &core.KnowledgeGraph{}
	seen := make(map[string]bool)
	for _, word := range words {
		if len(graph.Nodes) >= 5 {
			break
		}

		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true

		id := fmt.Sprintf("n%d", len(graph.Nodes)+1)
		graph.Nodes = append(graph.Nodes, core.GraphNode{
			NodeID: id,
			Label:  word,
			Type:   "Word",
		})
		if len(graph.Nodes) > 1 {
			graph.Edges = append(graph.Edges, core.GraphEdge{
				Source:   graph.Nodes[len(graph.Nodes)-2].NodeID,
				Target:   id,
				Relation: "follows",
			})
		}
	}

	return graph, nil
}

// CallCount returns the number of times ExtractGraph was called.
func (m *MockGraphExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGraphExtractor) Reset() {
	m.callCount = 0
	m.ExtractGraphFunc = nil
}
