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


package jobs

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"haystack/core"
)

// Ingestor runs the ingestion pipeline for one document.
type Ingestor interface {
	Ingest(ctx context.Context, path, tenantID string) (*core.IngestResult, error)
}

// JobRecorder receives job lifecycle notifications for usage tracking.
type JobRecorder interface {
	LogJobStart(ctx context.Context, tenantID, jobID, filename string) error
	LogJobEnd(ctx context.Context, tenantID, jobID string, success bool, errMsg string, chunks int) error
}

// Queue is an in-process FIFO ingestion job queue with a single worker.
// Submit is non-blocking and may be called before Start; submitted jobs
// buffer until the worker runs. Job records live for the process
// lifetime and are lost on restart.
type Queue struct {
	ingestor Ingestor
	recorder JobRecorder
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    map[string]*core.IngestionJob
	order   []string // submission order, pending and finished alike
	pending []string // FIFO of not-yet-started job ids
	stopped bool
	started bool

	startOnce sync.Once
	done      chan struct{}
}

// Option configures a Queue.
type Option func(*Queue)

// WithRecorder sets the job lifecycle recorder. Without one, job starts
// and ends are not recorded in usage stats.
func WithRecorder(recorder JobRecorder) Option {
	return func(q *Queue) {
		q.recorder = recorder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// NewQueue creates a job queue over the given ingestor. The worker does
// not run until Start is called.
func NewQueue(ingestor Ingestor, opts ...Option) (*Queue, error) {
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}

	q := &Queue{
		ingestor: ingestor,
		logger:   slog.Default().With("component", "jobs"),
		now:      time.Now,
		jobs:     make(map[string]*core.IngestionJob),
		done:     make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Submit enqueues an ingestion job for the tenant's document and returns
// the job id immediately. The job runs when the worker reaches it.
func (q *Queue) Submit(path, tenantID string) string {
	job := &core.IngestionJob{
		ID:        core.NewJobID(),
		TenantID:  tenantID,
		Path:      path,
		Status:    core.JobQueued,
		CreatedAt: q.now().UTC(),
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.order = append(q.order, job.ID)
	q.pending = append(q.pending, job.ID)
	q.mu.Unlock()
	q.cond.Signal()

	q.logger.Info("job queued", "job", job.ID, "tenant", tenantID, "path", path)
	return job.ID
}

// Get returns a snapshot of the job with the given id.
// Returns ErrJobNotFound if the id is unknown.
func (q *Queue) Get(jobID string) (core.IngestionJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[jobID]
	if !ok {
		return core.IngestionJob{}, ErrJobNotFound
	}
	return *job, nil
}

// List returns snapshots of the tenant's jobs in submission order. An
// empty tenantID lists every tenant's jobs.
func (q *Queue) List(tenantID string) []core.IngestionJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []core.IngestionJob
	for _, id := range q.order {
		job := q.jobs[id]
		if tenantID == "" || job.TenantID == tenantID {
			out = append(out, *job)
		}
	}
	return out
}

// Start launches the worker goroutine. Subsequent calls are no-ops; the
// queue has exactly one worker for its lifetime. The worker stops when
// ctx is cancelled or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		q.mu.Lock()
		q.started = true
		q.mu.Unlock()

		go func() {
			<-ctx.Done()
			q.wake()
		}()
		go q.run(ctx)
	})
}

// Stop signals the worker to exit after its current job and waits for
// it. Safe to call before Start; a worker started afterwards exits
// immediately.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	started := q.started
	q.mu.Unlock()
	q.cond.Broadcast()

	if started {
		<-q.done
	}
}

// wake marks the queue stopped and wakes the worker.
func (q *Queue) wake() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// run is the worker loop. One job at a time, FIFO. A failed job marks
// itself failed and the loop continues; the worker only exits on stop.
func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for {
		job := q.dequeue()
		if job == nil {
			return
		}
		q.execute(ctx, job)
	}
}

// dequeue blocks until a job is pending or the queue is stopped.
// Returns nil on stop.
func (q *Queue) dequeue() *core.IngestionJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && !q.stopped {
		q.cond.Wait()
	}
	if q.stopped {
		return nil
	}

	id := q.pending[0]
	q.pending = q.pending[1:]
	return q.jobs[id]
}

// execute runs one job through the pipeline and records the outcome.
func (q *Queue) execute(ctx context.Context, job *core.IngestionJob) {
	filename := filepath.Base(job.Path)

	q.transition(job, core.JobRunning)
	if q.recorder != nil {
		if err := q.recorder.LogJobStart(ctx, job.TenantID, job.ID, filename); err != nil {
			q.logger.Error("failed to record job start", "job", job.ID, "err", err)
		}
	}

	result, err := q.ingestor.Ingest(ctx, job.Path, job.TenantID)

	q.mu.Lock()
	job.FinishedAt = q.now().UTC()
	if err != nil {
		job.Status = core.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = core.JobCompleted
		job.Result = result
	}
	q.mu.Unlock()

	chunks := 0
	if result != nil {
		chunks = result.Chunks
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		q.logger.Warn("job failed", "job", job.ID, "tenant", job.TenantID, "err", err)
	} else {
		q.logger.Info("job completed", "job", job.ID, "tenant", job.TenantID, "chunks", chunks)
	}

	if q.recorder != nil {
		if recErr := q.recorder.LogJobEnd(ctx, job.TenantID, job.ID, err == nil, errMsg, chunks); recErr != nil {
			q.logger.Error("failed to record job end", "job", job.ID, "err", recErr)
		}
	}
}

// transition applies a validated status change under the lock.
func (q *Queue) transition(job *core.IngestionJob, to core.JobStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := core.ValidateJobTransition(job.Status, to); err != nil {
		q.logger.Error("illegal job transition", "job", job.ID, "err", err)
		return
	}
	job.Status = to
	if to == core.JobRunning {
		job.StartedAt = q.now().UTC()
	}
}
