// Package ai defines the provider-neutral interfaces for the external
// model services: text embedding, answer generation, and knowledge-graph
// extraction. Concrete providers live in subpackages (gemini, openai) and
// mock test doubles in ai/mock.
package ai
