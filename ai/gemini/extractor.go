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


package gemini

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"

	"haystack/ai"
	"haystack/core"
)

// GraphExtractor implements ai.GraphExtractor using the Gemini generation
// API in JSON mode.
type GraphExtractor struct {
	model  *genai.GenerativeModel
	config *ai.Config
	logger *slog.Logger
}

func newGraphExtractor(client *genai.Client, config *ai.Config) *GraphExtractor {
	model := client.GenerativeModel(config.GenerationModel)
	model.SetTemperature(0.0)
	model.ResponseMIMEType = "application/json"

	return &GraphExtractor{
		model:  model,
		config: config,
		logger: slog.Default().With("component", "gemini-extractor"),
	}
}

// ExtractGraph extracts entities and relations from full document text.
// Malformed responses are retried up to 3 times before the failure
// propagates; a response with zero nodes and edges is a valid result.
func (e *GraphExtractor) ExtractGraph(ctx context.Context, text string) (*core.KnowledgeGraph, error) {
	prompt := buildGraphPrompt(text)

	// Try up to 3 times in case of malformed JSON
	var graph *core.KnowledgeGraph
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var resp *genai.GenerateContentResponse
		err := ai.RetryWithBackoff(ctx, func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
			defer cancel()
			var callErr error
			resp, callErr = e.model.GenerateContent(callCtx, genai.Text(prompt))
			return callErr
		}, e.config.MaxRetries, e.config.RetryBaseDelay)
		if err != nil {
			e.logger.Error("failed to generate graph content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		raw := responseText(resp)
		graph, err = ai.ParseKnowledgeGraph(raw)
		if err != nil {
			lastErr = err
			e.logger.Warn("error parsing graph response",
				"attempt", attempt+1,
				"response", truncateForLog(raw),
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

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
