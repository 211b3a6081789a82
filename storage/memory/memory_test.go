package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haystack/core"
)

func TestVectorStoreNearestChunks(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	chunks := []core.Chunk{
		{Text: "alpha", TenantID: "acme", KBID: "kb1", Index: 0},
		{Text: "beta", TenantID: "acme", KBID: "kb1", Index: 1},
		{Text: "gamma", TenantID: "globex", KBID: "kb9", Index: 0},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{1, 0, 0},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks, vectors))

	t.Run("ranked by dot product", func(t *testing.T) {
		hits, err := store.NearestChunks(ctx, []float32{1, 0.1, 0}, 10, "acme")
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "alpha", hits[0].Chunk.Text)
		assert.Equal(t, "beta", hits[1].Chunk.Text)
		assert.Greater(t, hits[0].Score, hits[1].Score)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		hits, err := store.NearestChunks(ctx, []float32{1, 0, 0}, 10, "globex")
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "gamma", hits[0].Chunk.Text)
	})

	t.Run("topK limit", func(t *testing.T) {
		hits, err := store.NearestChunks(ctx, []float32{1, 1, 1}, 1, "acme")
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("identical content overwrites", func(t *testing.T) {
		before := store.(*VectorStore).Len()
		require.NoError(t, store.UpsertChunks(ctx,
			[]core.Chunk{{Text: "alpha", TenantID: "acme", KBID: "kb1", Index: 0}},
			[][]float32{{0.5, 0, 0}}))
		assert.Equal(t, before, store.(*VectorStore).Len())
	})
}

func TestVectorStoreLengthMismatch(t *testing.T) {
	store := NewVectorStore()
	err := store.UpsertChunks(context.Background(),
		[]core.Chunk{{Text: "a"}}, [][]float32{})
	assert.Error(t, err)
}

func TestGraphStore(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	nodes := []core.GraphNode{
		{NodeID: "n1", Label: "Eiffel Tower", Type: "Building", TenantID: "acme"},
		{NodeID: "n2", Label: "Paris", Type: "Place", TenantID: "acme"},
		{NodeID: "n1", Label: "Paris", Type: "Place", TenantID: "globex"},
	}
	edges := []core.GraphEdge{
		{Source: "n1", Target: "n2", Relation: "located_in", TenantID: "acme"},
		{Source: "n2", Target: "n9", Relation: "capital_of", TenantID: "acme"},
		{Source: "n1", Target: "n3", Relation: "other", TenantID: "globex"},
	}
	require.NoError(t, store.UpsertGraph(ctx, nodes, edges))

	t.Run("nearest nodes by label substring", func(t *testing.T) {
		found, err := store.NearestNodes(ctx, "tell me about paris", "acme", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "n2", found[0].NodeID)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := store.NearestNodes(ctx, "unrelated query", "acme", 10)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("edges touching node set respect tenant", func(t *testing.T) {
		found, err := store.EdgesTouching(ctx, []string{"n1"}, "acme")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "located_in", found[0].Relation)
	})

	t.Run("touches by target too", func(t *testing.T) {
		found, err := store.EdgesTouching(ctx, []string{"n9"}, "acme")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "capital_of", found[0].Relation)
	})

	t.Run("empty id set", func(t *testing.T) {
		found, err := store.EdgesTouching(ctx, nil, "acme")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
