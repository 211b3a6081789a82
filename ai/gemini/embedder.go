package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"

	"haystack/ai"
)

// batchSize caps how many texts are sent in a single BatchEmbedContents
// call. The API rejects larger batches.
const batchSize = 100

// Embedder implements ai.Embedder using the Gemini embedding API.
type Embedder struct {
	model  *genai.EmbeddingModel
	config *ai.Config
	logger *slog.Logger
}

func newEmbedder(client *genai.Client, config *ai.Config) *Embedder {
	return &Embedder{
		model:  client.EmbeddingModel(config.EmbeddingModel),
		config: config,
		logger: slog.Default().With("component", "gemini-embedder"),
	}
}

// EmbedText generates a vector embedding for a single text string.
// Calls are retried with exponential backoff before the failure propagates.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	var values []float32
	err := ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()

		res, err := e.model.EmbedContent(callCtx, genai.Text(text))
		if err != nil {
			return err
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			return fmt.Errorf("gemini: empty embedding in response")
		}
		values = res.Embedding.Values
		return nil
	}, e.config.MaxRetries, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	return values, nil
}

// EmbedTexts generates vector embeddings for multiple text strings. The
// texts are sent in API-sized batches; the result preserves input order.
// An empty input yields an empty result without any provider call.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		vecs, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
			return nil, err
		}
		out = append(out, vecs...)
	}

	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := e.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	var vecs [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()

		res, err := e.model.BatchEmbedContents(callCtx, batch)
		if err != nil {
			return err
		}
		if len(res.Embeddings) != len(texts) {
			return fmt.Errorf("gemini: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
		}
		vecs = make([][]float32, len(res.Embeddings))
		for i, emb := range res.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return fmt.Errorf("gemini: empty embedding at index %d", i)
			}
			vecs[i] = emb.Values
		}
		return nil
	}, e.config.MaxRetries, e.config.RetryBaseDelay)
	if err != nil {
		return nil, err
	}

	return vecs, nil
}
