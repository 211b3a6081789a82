package query

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haystack/ai/mock"
	"haystack/core"
	"haystack/storage"
	"haystack/storage/memory"
)

type recordedQuery struct {
	tenantID string
	text     string
}

type captureRecorder struct {
	mu      sync.Mutex
	queries []recordedQuery
}

func (c *captureRecorder) LogQuery(ctx context.Context, tenantID, queryText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, recordedQuery{tenantID: tenantID, text: queryText})
	return nil
}

type answererFixture struct {
	answerer *Answerer
	vectors  storage.VectorStore
	graphs   storage.GraphStore
	provider *mock.MockProvider
	recorder *captureRecorder
}

func newFixture(t *testing.T) *answererFixture {
	t.Helper()

	vectors := memory.NewVectorStore()
	graphs := memory.NewGraphStore()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	recorder := &captureRecorder{}

	answerer, err := NewAnswerer(vectors, graphs, provider, WithRecorder(recorder))
	require.NoError(t, err)

	return &answererFixture{
		answerer: answerer,
		vectors:  vectors,
		graphs:   graphs,
		provider: provider,
		recorder: recorder,
	}
}

func (f *answererFixture) seedChunks(t *testing.T, tenantID string, texts ...string) {
	t.Helper()
	chunks := make([]core.Chunk, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{Text: text, TenantID: tenantID, KBID: "kb-1", Index: i}
		vec, err := f.provider.Embedder().EmbedText(context.Background(), text)
		require.NoError(t, err)
		vectors[i] = vec
	}
	require.NoError(t, f.vectors.UpsertChunks(context.Background(), chunks, vectors))
	f.provider.GetMockEmbedder().Reset()
}

func TestAnswerFromChunks(t *testing.T) {
	f := newFixture(t)
	f.seedChunks(t, "acme", "the contract expires in June", "the penalty clause is strict")

	var prompt string
	f.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "June", nil
	}

	answer, err := f.answerer.Answer(context.Background(), "when does the contract expire?", "acme", 5)
	require.NoError(t, err)
	assert.Equal(t, "June", answer)

	assert.Contains(t, prompt, "Use the context below to answer the question.")
	assert.Contains(t, prompt, "the contract expires in June")
	assert.Contains(t, prompt, "Question: when does the contract expire?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))

	require.Len(t, f.recorder.queries, 1)
	assert.Equal(t, "acme", f.recorder.queries[0].tenantID)
}

func TestAnswerTenantScoping(t *testing.T) {
	f := newFixture(t)
	f.seedChunks(t, "acme", "acme secret roadmap")
	f.seedChunks(t, "globex", "globex merger plans")

	var prompt string
	f.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "ok", nil
	}

	_, err := f.answerer.Answer(context.Background(), "what are the plans?", "acme", 5)
	require.NoError(t, err)
	assert.Contains(t, prompt, "acme secret roadmap")
	assert.NotContains(t, prompt, "globex merger plans")
}

func TestAnswerTopKDefault(t *testing.T) {
	f := newFixture(t)
	texts := make([]string, 8)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}
	f.seedChunks(t, "acme", texts...)

	var prompt string
	f.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "ok", nil
	}

	_, err := f.answerer.Answer(context.Background(), "anything", "acme", 0)
	require.NoError(t, err)

	contextSection := strings.TrimSuffix(strings.SplitAfter(prompt, "Question:")[0], "Question:")
	lines := 0
	for _, l := range strings.Split(contextSection, "\n") {
		if strings.HasPrefix(l, "x") {
			lines++
		}
	}
	assert.Equal(t, DefaultTopK, lines)
}

func TestAnswerGraphPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.graphs.UpsertGraph(context.Background(),
		[]core.GraphNode{
			{NodeID: "n1", Label: "Acme Corp", Type: "Organization", TenantID: "acme"},
			{NodeID: "n2", Label: "John Smith", Type: "Person", TenantID: "acme"},
		},
		[]core.GraphEdge{
			{Source: "n1", Target: "n2", Relation: "employs", TenantID: "acme"},
		},
	))

	answer, err := f.answerer.Answer(context.Background(), "kg Acme", "acme", 5)
	require.NoError(t, err)

	assert.Contains(t, answer, "Acme Corp (Organization)")
	assert.Contains(t, answer, "Acme Corp -[employs]-> John Smith")
	assert.Zero(t, f.provider.GetMockGenerator().CallCount(), "generator must not run on the graph path")
	assert.Zero(t, f.provider.GetMockEmbedder().CallCount(), "no embedding on the graph path")

	require.Len(t, f.recorder.queries, 1)
	assert.Equal(t, "kg Acme", f.recorder.queries[0].text)
}

func TestAnswerGraphFallback(t *testing.T) {
	f := newFixture(t)

	answer, err := f.answerer.Answer(context.Background(), "kg Acme Corp", "acme", 5)
	require.NoError(t, err)

	assert.Equal(t, `No knowledge-graph information found for "Acme Corp".`, answer)
	assert.Zero(t, f.provider.GetMockGenerator().CallCount(), "generator must not run on fallback")
	require.Len(t, f.recorder.queries, 1)
}

func TestAnswerGraphTenantScoping(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.graphs.UpsertGraph(context.Background(),
		[]core.GraphNode{{NodeID: "n1", Label: "Acme Corp", Type: "Organization", TenantID: "globex"}},
		nil,
	))

	answer, err := f.answerer.Answer(context.Background(), "kg Acme", "acme", 5)
	require.NoError(t, err)
	assert.Contains(t, answer, "No knowledge-graph information found")
}

func TestAnswerEmptyQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.answerer.Answer(context.Background(), "   ", "acme", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, f.recorder.queries)
}

func TestAnswerGenerationSoftFailure(t *testing.T) {
	f := newFixture(t)
	f.seedChunks(t, "acme", "some context")
	f.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, p string) (string, error) {
		return "[generation failed: model overloaded]", nil
	}

	answer, err := f.answerer.Answer(context.Background(), "anything", "acme", 5)
	require.NoError(t, err, "generation failures surface in the text, not as errors")
	assert.Contains(t, answer, "generation failed")
	require.Len(t, f.recorder.queries, 1, "degraded answers are still logged")
}

func TestNewAnswererValidation(t *testing.T) {
	vectors := memory.NewVectorStore()
	graphs := memory.NewGraphStore()
	provider := mock.NewMockProvider()

	_, err := NewAnswerer(nil, graphs, provider)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)

	_, err = NewAnswerer(vectors, nil, provider)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewAnswerer(vectors, graphs, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
