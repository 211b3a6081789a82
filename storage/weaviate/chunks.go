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

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"haystack/core"
	"haystack/storage"
)

// VectorStore implements storage.VectorStore on Weaviate.
type VectorStore struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewVectorStore creates a chunk store on the client. EnsureSchema must
// have been called before the first write.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(client *weaviate.Client) (storage.VectorStore, error) {
	if client == nil {
		return nil, fmt.Errorf("weaviate client is required")
	}
	return &VectorStore{
		client: client,
		logger: slog.Default().With("component", "weaviate-chunks"),
	}, nil
}

// chunkObjectID derives a deterministic object id so re-ingesting
// identical content overwrites instead of duplicating.
func chunkObjectID(c core.Chunk) strfmt.UUID {
	seed := c.TenantID + "/" + c.KBID + "/" + c.Text
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String())
}

// UpsertChunks stores the chunks with their vectors in one batch.
func (s *VectorStore) UpsertChunks(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return storage.ErrVectorLengthMismatch
	}
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(chunks))
	for i, c := range chunks {
		objects = append(objects, &models.Object{
			Class: chunkClass,
			ID:    chunkObjectID(c),
			Properties: map[string]any{
				"text":        c.Text,
				"tenant_id":   c.TenantID,
				"kb_id":       c.KBID,
				"pdf_id":      c.DocumentID,
				"chunk_index": c.Index,
			},
			Vector: vectors[i],
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

	s.logger.Debug("stored chunks", "count", len(chunks))
	return nil
}

// NearestChunks returns up to topK chunks of the tenant closest to the
// query vector, best first.
func (s *VectorStore) NearestChunks(ctx context.Context, vector []float32, topK int, tenantID string) ([]core.RetrievedChunk, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	where := filters.Where().
		WithPath([]string{"tenant_id"}).
		WithOperator(filters.Equal).
		WithValueText(tenantID)

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "tenant_id"},
		{Name: "kb_id"},
		{Name: "pdf_id"},
		{Name: "chunk_index"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(chunkClass).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(topK).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %v", res.Errors[0].Message)
	}

	var results []core.RetrievedChunk
	for _, props := range objectsOf(res.Data, chunkClass) {
		chunk := core.Chunk{
			Text:       stringProp(props, "text"),
			TenantID:   stringProp(props, "tenant_id"),
			KBID:       stringProp(props, "kb_id"),
			DocumentID: stringProp(props, "pdf_id"),
			Index:      intProp(props, "chunk_index"),
		}

		score := float32(0)
		if additional, ok := props["_additional"].(map[string]any); ok {
			if distance, ok := additional["distance"].(float64); ok {
				// Cosine distance in [0,2]; closer means higher score.
				score = 1 - float32(distance)
			}
		}

		results = append(results, core.RetrievedChunk{Chunk: chunk, Score: score})
	}
	return results, nil
}

// Close releases the store. The HTTP client needs no explicit cleanup.
func (s *VectorStore) Close() error {
	return nil
}

// objectsOf unwraps a GraphQL Get response down to the property maps of
// the named class.
func objectsOf(data map[string]models.JSONObject, class string) []map[string]any {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := get[class].([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(raw))
	for _, o := range raw {
		if props, ok := o.(map[string]any); ok {
			out = append(out, props)
		}
	}
	return out
}

func stringProp(props map[string]any, name string) string {
	s, _ := props[name].(string)
	return s
}

func intProp(props map[string]any, name string) int {
	f, _ := props[name].(float64)
	return int(f)
}
