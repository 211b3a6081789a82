package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder()
	ctx := context.Background()

	a, err := e.EmbedText(ctx, "same input")
	require.NoError(t, err)
	b, err := e.EmbedText(ctx, "same input")
	require.NoError(t, err)
	c, err := e.EmbedText(ctx, "different input")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 384)
	assert.Equal(t, 3, e.CallCount())
}

func TestMockEmbedderEmptyBatch(t *testing.T) {
	e := NewMockEmbedder()

	vectors, err := e.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestMockEmbedderBatchOrder(t *testing.T) {
	e := NewMockEmbedder()
	texts := []string{"alpha", "beta", "gamma"}

	vectors, err := e.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		single, err := e.EmbedText(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "vector %d must match its text", i)
	}
}

func TestMockExtractorDefaultGraph(t *testing.T) {
	x := NewMockGraphExtractor()

	graph, err := x.ExtractGraph(context.Background(), "alice knows bob")
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 3)
	assert.Equal(t, "alice", graph.Nodes[0].Label)
	require.Len(t, graph.Edges, 2)
	assert.Equal(t, "n1", graph.Edges[0].Source)
	assert.Equal(t, "n2", graph.Edges[0].Target)
}
