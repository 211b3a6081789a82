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


package haystack

import (
	"context"
	"fmt"
	"log/slog"

	"haystack/ai"
	"haystack/ai/gemini"
	"haystack/ai/mock"
	"haystack/ai/openai"
	"haystack/ingestion"
	"haystack/jobs"
	"haystack/monitor"
	"haystack/pdf"
	"haystack/query"
	"haystack/storage"
	badgerstore "haystack/storage/badger"
	"haystack/storage/memory"
	weaviatestore "haystack/storage/weaviate"
)

// Provider names accepted by WithProvider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// App wires the full system: badger-backed repositories, the AI
// provider, vector and graph stores, the ingestion pipeline, the job
// queue, the usage monitor and the query answerer.
type App struct {
	backend  *badgerstore.Backend
	registry storage.RegistryRepository
	tenants  storage.TenantRepository
	usage    storage.UsageRepository
	vectors  storage.VectorStore
	graphs   storage.GraphStore
	provider ai.Provider
	pipeline *ingestion.Pipeline
	queue    *jobs.Queue
	monitor  *monitor.Monitor
	answerer *query.Answerer
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig    *ai.Config
	provider    string
	weaviateURL string
	offline     bool
	inMemoryDB  bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) AppOption {
	return func(o *appOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider selects the AI provider backend, ProviderGemini or
// ProviderOpenAI. Default is ProviderGemini.
func WithProvider(name string) AppOption {
	return func(o *appOptions) {
		o.provider = name
	}
}

// WithWeaviateURL sets the weaviate endpoint for chunk and graph
// storage. Default is http://localhost:8080.
func WithWeaviateURL(url string) AppOption {
	return func(o *appOptions) {
		if url != "" {
			o.weaviateURL = url
		}
	}
}

// WithOffline replaces the AI provider with deterministic mocks and the
// weaviate stores with in-memory ones. No network calls are made.
func WithOffline() AppOption {
	return func(o *appOptions) {
		o.offline = true
	}
}

// WithInMemoryDB keeps the badger repositories in memory instead of on
// disk. Used by tests.
func WithInMemoryDB() AppOption {
	return func(o *appOptions) {
		o.inMemoryDB = true
	}
}

// NewApp assembles the application around the badger database at
// filePath.
func NewApp(ctx context.Context, filePath string, opts ...AppOption) (*App, error) {
	options := &appOptions{
		aiConfig:    ai.DefaultConfig(),
		provider:    ProviderGemini,
		weaviateURL: "http://localhost:8080",
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(filePath, options.inMemoryDB)
	if err != nil {
		return nil, err
	}

	app := &App{backend: backend, logger: slog.Default().With("component", "app")}
	if err := app.wire(ctx, options); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, options *appOptions) error {
	var err error
	if a.registry, err = badgerstore.NewRegistryRepository(a.backend); err != nil {
		return err
	}
	if a.tenants, err = badgerstore.NewTenantRepository(a.backend); err != nil {
		return err
	}
	if a.usage, err = badgerstore.NewUsageRepository(a.backend); err != nil {
		return err
	}

	if options.offline {
		a.provider = mock.NewMockProvider()
		a.vectors = memory.NewVectorStore()
		a.graphs = memory.NewGraphStore()
	} else {
		switch options.provider {
		case ProviderGemini:
			a.provider, err = gemini.NewProvider(ctx, options.aiConfig)
		case ProviderOpenAI:
			a.provider, err = openai.NewProvider(options.aiConfig)
		default:
			err = fmt.Errorf("unknown AI provider %q", options.provider)
		}
		if err != nil {
			return err
		}

		client, cerr := weaviatestore.NewClient(options.weaviateURL)
		if cerr != nil {
			return cerr
		}
		if err = weaviatestore.EnsureSchema(ctx, client); err != nil {
			return fmt.Errorf("weaviate schema: %w", err)
		}
		if a.vectors, err = weaviatestore.NewVectorStore(client); err != nil {
			return err
		}
		if a.graphs, err = weaviatestore.NewGraphStore(client); err != nil {
			return err
		}
	}

	if a.monitor, err = monitor.NewMonitor(a.usage); err != nil {
		return err
	}

	a.pipeline, err = ingestion.NewPipeline(a.registry, a.vectors, a.graphs, a.provider,
		&pdf.Extractor{}, ingestion.WithRecorder(a.monitor))
	if err != nil {
		return err
	}

	if a.queue, err = jobs.NewQueue(a.pipeline, jobs.WithRecorder(a.monitor)); err != nil {
		return err
	}

	a.answerer, err = query.NewAnswerer(a.vectors, a.graphs, a.provider, query.WithRecorder(a.monitor))
	return err
}

// Start launches the background job worker. Safe to call once; later
// calls are no-ops.
func (a *App) Start(ctx context.Context) {
	a.queue.Start(ctx)
}

// Close stops the worker and releases every resource in reverse wiring
// order.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Stop()
	}
	if a.pipeline != nil {
		a.pipeline.Release()
	}
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
		}
	}
	if a.vectors != nil {
		if err := a.vectors.Close(); err != nil {
			a.logger.Error("error closing vector store", "err", err)
		}
	}
	if a.graphs != nil {
		if err := a.graphs.Close(); err != nil {
			a.logger.Error("error closing graph store", "err", err)
		}
	}
	if a.usage != nil {
		if err := a.usage.Close(); err != nil {
			a.logger.Error("error closing usage repository", "err", err)
		}
	}
	if a.tenants != nil {
		if err := a.tenants.Close(); err != nil {
			a.logger.Error("error closing tenant repository", "err", err)
		}
	}
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			a.logger.Error("error closing registry repository", "err", err)
		}
	}
	return a.backend.Close()
}

// Registry returns the knowledge-base registry.
func (a *App) Registry() storage.RegistryRepository {
	return a.registry
}

// Tenants returns the tenant account repository.
func (a *App) Tenants() storage.TenantRepository {
	return a.tenants
}

// Monitor returns the usage monitor.
func (a *App) Monitor() *monitor.Monitor {
	return a.monitor
}

// Queue returns the ingestion job queue.
func (a *App) Queue() *jobs.Queue {
	return a.queue
}

// Answerer returns the query answerer.
func (a *App) Answerer() *query.Answerer {
	return a.answerer
}

// Pipeline returns the ingestion pipeline for synchronous use.
func (a *App) Pipeline() *ingestion.Pipeline {
	return a.pipeline
}
