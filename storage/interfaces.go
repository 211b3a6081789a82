package storage

import (
	"context"

	"haystack/core"
)

// RegistryRepository manages a tenant's knowledge bases and the active-KB
// selection. Implementations must be thread-safe; the active flip in
// SetActiveKB must be atomic so no reader ever observes zero or two
// active knowledge bases for a tenant.
type RegistryRepository interface {
	// CreateKB registers a new knowledge base under the tenant and
	// returns its generated id. The new knowledge base is not active;
	// activation is a separate SetActiveKB call.
	CreateKB(ctx context.Context, tenantID, name string) (string, error)

	// ListKBs returns all knowledge bases of the tenant keyed by id.
	// An unknown tenant yields an empty map, not an error.
	ListKBs(ctx context.Context, tenantID string) (map[string]core.KnowledgeBase, error)

	// SetActiveKB marks the given knowledge base active and deactivates
	// every other one of the tenant in the same write.
	// Returns core.ErrUnknownKnowledgeBase if the id is not registered.
	SetActiveKB(ctx context.Context, tenantID, kbID string) error

	// GetActiveKB returns the id of the tenant's active knowledge base.
	// Returns core.ErrNoActiveKnowledgeBase if the tenant has none.
	GetActiveKB(ctx context.Context, tenantID string) (string, error)

	// DeleteKB removes the knowledge base record. Stored chunks and graph
	// data are not cascaded. If the deleted KB was active the tenant is
	// left with no active KB.
	// Returns core.ErrUnknownKnowledgeBase if the id is not registered.
	DeleteKB(ctx context.Context, tenantID, kbID string) error

	// Close closes the repository and releases resources.
	Close() error
}

// TenantRepository manages tenant accounts and their credentials.
// Credentials are stored as BLAKE2b digests, never as plaintext.
type TenantRepository interface {
	// CreateTenant registers a tenant with the digest of the given
	// credential. Returns core.ErrTenantExists if the id is taken.
	CreateTenant(ctx context.Context, tenantID, credential string) error

	// DeleteTenant removes the tenant account.
	// Returns core.ErrTenantNotFound if the tenant does not exist.
	DeleteTenant(ctx context.Context, tenantID string) error

	// UpdatePassword replaces the tenant's credential digest.
	// Returns core.ErrTenantNotFound if the tenant does not exist.
	UpdatePassword(ctx context.Context, tenantID, credential string) error

	// ListTenants returns all registered tenants.
	ListTenants(ctx context.Context) ([]core.Tenant, error)

	// VerifyCredentials reports whether the credential matches the
	// tenant's stored digest. An unknown tenant verifies false without
	// error so callers cannot probe for account existence.
	VerifyCredentials(ctx context.Context, tenantID, credential string) (bool, error)

	// Close closes the repository and releases resources.
	Close() error
}

// UsageRepository persists per-tenant usage records.
type UsageRepository interface {
	// Update applies mutate to the tenant's usage record inside a single
	// transaction. The record passed to mutate is the current stored
	// state, or a zero-value record on first touch. Concurrent updates
	// for the same tenant serialize; no increment is lost.
	Update(ctx context.Context, tenantID string, mutate func(*core.TenantUsage)) error

	// Get returns the tenant's usage record, or a zero-value record if
	// the tenant has never been logged.
	Get(ctx context.Context, tenantID string) (*core.TenantUsage, error)

	// All returns every tenant's usage record keyed by tenant id.
	All(ctx context.Context) (map[string]*core.TenantUsage, error)

	// Close closes the repository and releases resources.
	Close() error
}

// VectorStore persists chunk embeddings and serves similarity search.
// Implementations must be thread-safe.
type VectorStore interface {
	// UpsertChunks stores the chunks with their vectors. vectors[i]
	// belongs to chunks[i]; the two slices must be the same length.
	// Identical chunk content maps to the same stored object.
	UpsertChunks(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error

	// NearestChunks returns up to topK chunks of the tenant closest to
	// the query vector, best first.
	NearestChunks(ctx context.Context, vector []float32, topK int, tenantID string) ([]core.RetrievedChunk, error)

	// Close closes the store and releases resources.
	Close() error
}

// GraphStore persists extracted knowledge-graph nodes and edges.
// Implementations must be thread-safe.
type GraphStore interface {
	// UpsertGraph stores the nodes and edges of one extraction batch.
	UpsertGraph(ctx context.Context, nodes []core.GraphNode, edges []core.GraphEdge) error

	// NearestNodes returns up to limit nodes of the tenant whose labels
	// best match the query text.
	NearestNodes(ctx context.Context, text, tenantID string, limit int) ([]core.GraphNode, error)

	// EdgesTouching returns the tenant's edges whose source or target is
	// in nodeIDs.
	EdgesTouching(ctx context.Context, nodeIDs []string, tenantID string) ([]core.GraphEdge, error)

	// Close closes the store and releases resources.
	Close() error
}
