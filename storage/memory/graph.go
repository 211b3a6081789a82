package memory

import (
	"context"
	"strings"
	"sync"

	"haystack/core"
	"haystack/storage"
)

// GraphStore implements storage.GraphStore in memory. NearestNodes uses
// case-insensitive substring matching on labels, a rough stand-in for
// the keyword ranking of the weaviate store.
type GraphStore struct {
	mu    sync.RWMutex
	nodes []core.GraphNode
	edges []core.GraphEdge
}

// NewGraphStore creates an empty in-memory graph store.
//
// Returns storage.GraphStore interface for parity with the weaviate
// constructor.
func NewGraphStore() storage.GraphStore {
	return &GraphStore{}
}

// UpsertGraph appends the nodes and edges of one extraction batch.
func (s *GraphStore) UpsertGraph(ctx context.Context, nodes []core.GraphNode, edges []core.GraphEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, nodes...)
	s.edges = append(s.edges, edges...)
	return nil
}

// NearestNodes returns up to limit nodes of the tenant whose label
// contains any word of the query text.
func (s *GraphStore) NearestNodes(ctx context.Context, text, tenantID string, limit int) ([]core.GraphNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := strings.Fields(strings.ToLower(text))

	var matches []core.GraphNode
	for _, n := range s.nodes {
		if n.TenantID != tenantID {
			continue
		}
		label := strings.ToLower(n.Label)
		for _, w := range words {
			if strings.Contains(label, w) {
				matches = append(matches, n)
				break
			}
		}
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// EdgesTouching returns the tenant's edges whose source or target is in
// nodeIDs.
func (s *GraphStore) EdgesTouching(ctx context.Context, nodeIDs []string, tenantID string) ([]core.GraphEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		ids[id] = true
	}

	var matches []core.GraphEdge
	for _, e := range s.edges {
		if e.TenantID != tenantID {
			continue
		}
		if ids[e.Source] || ids[e.Target] {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// Close is a no-op for the in-memory store.
func (s *GraphStore) Close() error {
	return nil
}
