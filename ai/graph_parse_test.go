package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnowledgeGraph(t *testing.T) {
	t.Run("clean JSON", func(t *testing.T) {
		raw := `{"nodes":[{"id":"n1","label":"Alice","type":"Person"}],"edges":[{"source":"n1","target":"n2","relation":"knows"}]}`
		graph, err := ParseKnowledgeGraph(raw)
		require.NoError(t, err)
		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "n1", graph.Nodes[0].NodeID)
		assert.Equal(t, "Alice", graph.Nodes[0].Label)
		assert.Equal(t, "Person", graph.Nodes[0].Type)
		require.Len(t, graph.Edges, 1)
		assert.Equal(t, "knows", graph.Edges[0].Relation)
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		raw := "```json\n{\"nodes\":[],\"edges\":[]}\n```"
		graph, err := ParseKnowledgeGraph(raw)
		require.NoError(t, err)
		assert.Empty(t, graph.Nodes)
		assert.Empty(t, graph.Edges)
	})

	t.Run("missing opening quote on key is repaired", func(t *testing.T) {
		raw := `{"nodes":[{"id":"n1", label":"Bob","type":"Person"}],"edges":[]}`
		graph, err := ParseKnowledgeGraph(raw)
		require.NoError(t, err)
		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "Bob", graph.Nodes[0].Label)
	})

	t.Run("arrays salvaged from chatty response", func(t *testing.T) {
		raw := `Here is the graph you asked for:
"nodes": [{"id":"n1","label":"Go","type":"Language"}]
"edges": [{"source":"n1","target":"n1","relation":"self"}]
hope that helps`
		graph, err := ParseKnowledgeGraph(raw)
		require.NoError(t, err)
		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "Go", graph.Nodes[0].Label)
		require.Len(t, graph.Edges, 1)
	})

	t.Run("unsalvageable response errors", func(t *testing.T) {
		_, err := ParseKnowledgeGraph("I cannot produce a graph for this document.")
		assert.Error(t, err)
	})
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid passes through", `{"a":1}`, `{"a":1}`},
		{"missing quote after comma", `{"a":1, b":2}`, `{"a":1, "b":2}`},
		{"missing quote after brace", `{b":2}`, `{"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}
