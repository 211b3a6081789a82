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
	"errors"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"haystack/ai"
)

// Provider implements ai.Provider using Google's hosted Gemini models.
// All services share a single genai client connection.
type Provider struct {
	client    *genai.Client
	config    *ai.Config
	embedder  *Embedder
	generator *Generator
	extractor *GraphExtractor
	logger    *slog.Logger
}

// NewProvider creates a new AI provider backed by the Gemini API.
// The config is validated before use; an API key is required.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to Gemini-specific implementation details.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIKey == "" {
		return nil, errors.New("gemini: APIKey is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:    client,
		config:    config,
		embedder:  newEmbedder(client, config),
		generator: newGenerator(client, config),
		extractor: newGraphExtractor(client, config),
		logger:    slog.Default().With("component", "gemini-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// GraphExtractor returns the knowledge-graph extraction service.
func (p *Provider) GraphExtractor() ai.GraphExtractor {
	return p.extractor
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return p.client.Close()
}
