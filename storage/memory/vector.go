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


// Package memory provides in-memory vector and graph stores for tests
// and offline runs. Both stores are thread-safe and keep everything in
// process memory; nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"haystack/core"
	"haystack/storage"
)

type storedChunk struct {
	chunk  core.Chunk
	vector []float32
}

// VectorStore implements storage.VectorStore with a linear dot-product
// scan. Good enough for tests and small offline corpora.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]storedChunk // keyed by tenant/kb/text
}

// NewVectorStore creates an empty in-memory vector store.
//
// Returns storage.VectorStore interface for parity with the weaviate
// constructor.
func NewVectorStore() storage.VectorStore {
	return &VectorStore{chunks: make(map[string]storedChunk)}
}

// UpsertChunks stores the chunks with their vectors. Identical content
// within a tenant's KB overwrites the previous object.
func (s *VectorStore) UpsertChunks(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return storage.ErrVectorLengthMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		key := c.TenantID + "/" + c.KBID + "/" + c.Text
		s.chunks[key] = storedChunk{chunk: c, vector: vectors[i]}
	}
	return nil
}

// NearestChunks returns up to topK chunks of the tenant closest to the
// query vector by dot product, best first.
func (s *VectorStore) NearestChunks(ctx context.Context, vector []float32, topK int, tenantID string) ([]core.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []core.RetrievedChunk
	for _, sc := range s.chunks {
		if sc.chunk.TenantID != tenantID {
			continue
		}
		results = append(results, core.RetrievedChunk{
			Chunk: sc.chunk,
			Score: dotProduct(vector, sc.vector),
		})
	}

	slices.SortFunc(results, func(a, b core.RetrievedChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Len reports the number of stored chunks, for test assertions.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
