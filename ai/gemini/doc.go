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


// Package gemini provides AI service implementations backed by Google's
// hosted Gemini models.
//
// This package implements the ai.Provider interface using the official
// generative-ai-go client. It is the default provider: embeddings use
// text-embedding-004 and generation plus graph extraction use
// gemini-2.5-flash.
//
// # Usage
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//
//	provider, err := gemini.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "sample text")
//	graph, err := provider.GraphExtractor().ExtractGraph(ctx, documentText)
package gemini
