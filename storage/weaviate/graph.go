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


package weaviate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"haystack/core"
	"haystack/storage"
)

// GraphStore implements storage.GraphStore on Weaviate. Nodes and edges
// are plain keyword-searchable objects; no vectors are attached.
type GraphStore struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewGraphStore creates a graph store on the client. EnsureSchema must
// have been called before the first write.
//
// Returns storage.GraphStore interface to enforce abstraction.
func NewGraphStore(client *weaviate.Client) (storage.GraphStore, error) {
	if client == nil {
		return nil, fmt.Errorf("weaviate client is required")
	}
	return &GraphStore{
		client: client,
		logger: slog.Default().With("component", "weaviate-graph"),
	}, nil
}

// UpsertGraph stores the nodes and edges of one extraction batch.
func (s *GraphStore) UpsertGraph(ctx context.Context, nodes []core.GraphNode, edges []core.GraphEdge) error {
	if len(nodes) == 0 && len(edges) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(nodes)+len(edges))
	for _, n := range nodes {
		objects = append(objects, &models.Object{
			Class: nodeClass,
			Properties: map[string]any{
				"node_id":   n.NodeID,
				"label":     n.Label,
				"type":      n.Type,
				"tenant_id": n.TenantID,
				"kb_id":     n.KBID,
				"pdf_id":    n.DocumentID,
			},
		})
	}
	for _, e := range edges {
		objects = append(objects, &models.Object{
			Class: edgeClass,
			Properties: map[string]any{
				"source":    e.Source,
				"target":    e.Target,
				"relation":  e.Relation,
				"tenant_id": e.TenantID,
				"kb_id":     e.KBID,
				"pdf_id":    e.DocumentID,
			},
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("weaviate batch: %s", r.Result.Errors.Error[0].Message)
		}
	}

	s.logger.Debug("stored graph", "nodes", len(nodes), "edges", len(edges))
	return nil
}

// NearestNodes returns up to limit nodes of the tenant whose labels best
// match the query text, using BM25 keyword ranking.
func (s *GraphStore) NearestNodes(ctx context.Context, text, tenantID string, limit int) ([]core.GraphNode, error) {
	bm25 := s.client.GraphQL().Bm25ArgBuilder().
		WithQuery(text).
		WithProperties("label")

	where := filters.Where().
		WithPath([]string{"tenant_id"}).
		WithOperator(filters.Equal).
		WithValueText(tenantID)

	fields := []graphql.Field{
		{Name: "node_id"},
		{Name: "label"},
		{Name: "type"},
		{Name: "tenant_id"},
		{Name: "kb_id"},
		{Name: "pdf_id"},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(nodeClass).
		WithBM25(bm25).
		WithWhere(where).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %v", res.Errors[0].Message)
	}

	var nodes []core.GraphNode
	for _, props := range objectsOf(res.Data, nodeClass) {
		nodes = append(nodes, core.GraphNode{
			NodeID:     stringProp(props, "node_id"),
			Label:      stringProp(props, "label"),
			Type:       stringProp(props, "type"),
			TenantID:   stringProp(props, "tenant_id"),
			KBID:       stringProp(props, "kb_id"),
			DocumentID: stringProp(props, "pdf_id"),
		})
	}
	return nodes, nil
}

// EdgesTouching returns the tenant's edges whose source or target is in
// nodeIDs.
func (s *GraphStore) EdgesTouching(ctx context.Context, nodeIDs []string, tenantID string) ([]core.GraphEdge, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	where := filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			filters.Where().
				WithPath([]string{"tenant_id"}).
				WithOperator(filters.Equal).
				WithValueText(tenantID),
			filters.Where().
				WithOperator(filters.Or).
				WithOperands([]*filters.WhereBuilder{
					filters.Where().
						WithPath([]string{"source"}).
						WithOperator(filters.ContainsAny).
						WithValueText(nodeIDs...),
					filters.Where().
						WithPath([]string{"target"}).
						WithOperator(filters.ContainsAny).
						WithValueText(nodeIDs...),
				}),
		})

	fields := []graphql.Field{
		{Name: "source"},
		{Name: "target"},
		{Name: "relation"},
		{Name: "tenant_id"},
		{Name: "kb_id"},
		{Name: "pdf_id"},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(edgeClass).
		WithWhere(where).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %v", res.Errors[0].Message)
	}

	var edges []core.GraphEdge
	for _, props := range objectsOf(res.Data, edgeClass) {
		edges = append(edges, core.GraphEdge{
			Source:     stringProp(props, "source"),
			Target:     stringProp(props, "target"),
			Relation:   stringProp(props, "relation"),
			TenantID:   stringProp(props, "tenant_id"),
			KBID:       stringProp(props, "kb_id"),
			DocumentID: stringProp(props, "pdf_id"),
		})
	}
	return edges, nil
}

// Close releases the store. The HTTP client needs no explicit cleanup.
func (s *GraphStore) Close() error {
	return nil
}
