package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// NewKBID generates a fresh unique knowledge-base identifier.
func NewKBID() string {
	return uuid.NewString()
}

// NewDocumentID generates a fresh unique document identifier.
// A document id is a correlation key attached to every chunk, node and edge
// derived from one ingested file; it is not an entity of its own.
func NewDocumentID() string {
	return uuid.NewString()
}

// NewJobID generates a fresh unique ingestion-job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// CredentialDigest hashes a tenant credential with BLAKE2b so the
// credential store never holds plaintext.
func CredentialDigest(secret string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkContentID generates a deterministic ID from chunk text using BLAKE2b
// hashing. Identical content produces identical IDs.
func ChunkContentID(text string) string {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Tenant is an isolated customer namespace. All stored data carries its id.
type Tenant struct {
	ID               string
	CredentialDigest string
	CreatedAt        time.Time
}

// KnowledgeBase is a named partition of a tenant's ingested documents.
// At most one knowledge base per tenant is active at a time; ingestion
// always targets the active one.
type KnowledgeBase struct {
	ID       string
	TenantID string
	Name     string
	Active   bool
}

// Chunk is a fixed-size overlapping substring of a document's extracted
// text, the unit of vector retrieval. Chunks are immutable once created.
type Chunk struct {
	Text       string
	TenantID   string
	KBID       string
	DocumentID string
	Index      int
}

// GraphNode is an entity extracted from one document.
//
// NodeID is only unique within a single extraction batch; two documents may
// both produce "n1". There is no cross-document merge.
type GraphNode struct {
	NodeID     string
	Label      string
	Type       string
	TenantID   string
	KBID       string
	DocumentID string
}

// GraphEdge is a relation between two nodes of the same extraction batch.
type GraphEdge struct {
	Source     string
	Target     string
	Relation   string
	TenantID   string
	KBID       string
	DocumentID string
}

// KnowledgeGraph is the raw output of graph extraction for one document,
// before tenant/kb/document tags are applied.
type KnowledgeGraph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// JobStatus tracks the lifecycle of an ingestion job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status has no outgoing transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// IngestionJob is one asynchronous ingestion request. Created when
// submitted, mutated only by the worker executing it, retained for the
// process lifetime.
type IngestionJob struct {
	ID         string
	TenantID   string
	Path       string
	Status     JobStatus
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
	Result     *IngestResult
}

// IngestResult summarizes a completed ingestion.
//
// GraphWarning is set when chunk storage succeeded but graph extraction or
// graph persistence failed; node/edge counts are zero in that case. This is
// a degraded success, not a failure.
type IngestResult struct {
	Chunks       int
	KBID         string
	DocumentID   string
	GraphNodes   int
	GraphEdges   int
	GraphWarning string
}

// Degraded reports whether the graph stage failed after chunks were stored.
func (r *IngestResult) Degraded() bool {
	return r.GraphWarning != ""
}

// JobSummary mirrors an IngestionJob's terminal fields inside a tenant's
// usage record.
type JobSummary struct {
	Status     JobStatus `json:"status"`
	Filename   string    `json:"filename"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Error      string    `json:"error,omitempty"`
	Chunks     int       `json:"chunks"`
}

// TenantUsage holds per-tenant monotonically increasing counters and the
// job summary map. Counters only ever grow; LastIngest/LastQuery are
// human-readable markers in the form "timestamp | detail".
type TenantUsage struct {
	Ingestions int                   `json:"ingestions"`
	Queries    int                   `json:"queries"`
	Chunks     int                   `json:"chunks"`
	LastIngest string                `json:"last_ingest,omitempty"`
	LastQuery  string                `json:"last_query,omitempty"`
	Jobs       map[string]JobSummary `json:"jobs"`
}

// RetrievedChunk is a chunk returned from vector search with its score.
type RetrievedChunk struct {
	Chunk Chunk
	Score float32
}
