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


package openai

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"haystack/ai"
	"haystack/core"
)

// GraphExtractor implements ai.GraphExtractor using OpenAI-compatible chat APIs.
type GraphExtractor struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

// newGraphExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGraphExtractor(config *ai.Config) (*GraphExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for graph extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	token := config.APIKey
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &GraphExtractor{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewGraphExtractor creates a new graph extractor using the provided configuration.
//
// Returns ai.GraphExtractor interface to enforce abstraction.
func NewGraphExtractor(config *ai.Config) (ai.GraphExtractor, error) {
	return newGraphExtractor(config)
}

// ExtractGraph extracts entities and relations from full document text.
// It retries up to 3 times in case of malformed JSON before the failure
// propagates; a response with zero nodes and edges is a valid result.
func (e *GraphExtractor) ExtractGraph(ctx context.Context, text string) (*core.KnowledgeGraph, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(graphSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var graph *core.KnowledgeGraph
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var response *llms.ContentResponse
		err := ai.RetryWithBackoff(ctx, func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
			defer cancel()
			var callErr error
			response, callErr = e.client.GenerateContent(callCtx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
			return callErr
		}, e.config.MaxRetries, e.config.RetryBaseDelay)
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return &core.KnowledgeGraph{}, nil
		}

		graph, err = ai.ParseKnowledgeGraph(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing graph response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse graph response after retries", "err", lastErr)
		return nil, lastErr
	}

	e.logger.Debug("extracted graph", "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	return graph, nil
}
