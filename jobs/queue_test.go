package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haystack/core"
)

// fakeIngestor records calls and returns canned results per path.
type fakeIngestor struct {
	mu    sync.Mutex
	paths []string
	fn    func(path, tenantID string) (*core.IngestResult, error)
}

func (f *fakeIngestor) Ingest(ctx context.Context, path, tenantID string) (*core.IngestResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(path, tenantID)
	}
	return &core.IngestResult{Chunks: 3, KBID: "kb-1"}, nil
}

func (f *fakeIngestor) ingested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// fakeJobRecorder captures lifecycle notifications.
type fakeJobRecorder struct {
	mu     sync.Mutex
	starts []string
	ends   map[string]bool // job id -> success
}

func (r *fakeJobRecorder) LogJobStart(ctx context.Context, tenantID, jobID, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, jobID)
	return nil
}

func (r *fakeJobRecorder) LogJobEnd(ctx context.Context, tenantID, jobID string, success bool, errMsg string, chunks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ends == nil {
		r.ends = make(map[string]bool)
	}
	r.ends[jobID] = success
	return nil
}

func (r *fakeJobRecorder) endOf(jobID string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	success, ok := r.ends[jobID]
	return success, ok
}

func waitTerminal(t *testing.T, q *Queue, jobID string) core.IngestionJob {
	t.Helper()
	require.Eventually(t, func() bool {
		job, err := q.Get(jobID)
		return err == nil && job.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached a terminal state", jobID)

	job, err := q.Get(jobID)
	require.NoError(t, err)
	return job
}

func TestSubmitBeforeStartBuffers(t *testing.T) {
	ingestor := &fakeIngestor{}
	q, err := NewQueue(ingestor)
	require.NoError(t, err)
	defer q.Stop()

	id1 := q.Submit("/docs/a.pdf", "acme")
	id2 := q.Submit("/docs/b.pdf", "acme")

	job, err := q.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, core.JobQueued, job.Status)
	assert.Empty(t, ingestor.ingested(), "nothing runs before Start")

	q.Start(context.Background())

	first := waitTerminal(t, q, id1)
	second := waitTerminal(t, q, id2)
	assert.Equal(t, core.JobCompleted, first.Status)
	assert.Equal(t, core.JobCompleted, second.Status)
	assert.Equal(t, []string{"/docs/a.pdf", "/docs/b.pdf"}, ingestor.ingested())
}

func TestJobsRunInSubmissionOrder(t *testing.T) {
	ingestor := &fakeIngestor{}
	q, err := NewQueue(ingestor)
	require.NoError(t, err)
	defer q.Stop()

	var ids []string
	for _, path := range []string{"/d/1.pdf", "/d/2.pdf", "/d/3.pdf", "/d/4.pdf"} {
		ids = append(ids, q.Submit(path, "acme"))
	}
	q.Start(context.Background())

	for _, id := range ids {
		waitTerminal(t, q, id)
	}
	assert.Equal(t, []string{"/d/1.pdf", "/d/2.pdf", "/d/3.pdf", "/d/4.pdf"}, ingestor.ingested())
}

func TestFailedJobDoesNotStopWorker(t *testing.T) {
	ingestor := &fakeIngestor{
		fn: func(path, tenantID string) (*core.IngestResult, error) {
			if path == "/docs/bad.pdf" {
				return nil, errors.New("corrupt file")
			}
			return &core.IngestResult{Chunks: 2}, nil
		},
	}
	q, err := NewQueue(ingestor)
	require.NoError(t, err)
	defer q.Stop()
	q.Start(context.Background())

	badID := q.Submit("/docs/bad.pdf", "acme")
	goodID := q.Submit("/docs/good.pdf", "acme")

	bad := waitTerminal(t, q, badID)
	assert.Equal(t, core.JobFailed, bad.Status)
	assert.Contains(t, bad.Error, "corrupt file")
	assert.Nil(t, bad.Result)

	good := waitTerminal(t, q, goodID)
	assert.Equal(t, core.JobCompleted, good.Status)
	require.NotNil(t, good.Result)
	assert.Equal(t, 2, good.Result.Chunks)
	assert.Empty(t, good.Error)
}

func TestStartTwiceIsNoOp(t *testing.T) {
	ingestor := &fakeIngestor{}
	q, err := NewQueue(ingestor)
	require.NoError(t, err)
	defer q.Stop()

	q.Start(context.Background())
	q.Start(context.Background())

	id := q.Submit("/docs/a.pdf", "acme")
	waitTerminal(t, q, id)

	// A second worker would have raced the queue and run jobs twice.
	assert.Equal(t, []string{"/docs/a.pdf"}, ingestor.ingested())
}

func TestRecorderNotified(t *testing.T) {
	ingestor := &fakeIngestor{
		fn: func(path, tenantID string) (*core.IngestResult, error) {
			if path == "/docs/bad.pdf" {
				return nil, errors.New("boom")
			}
			return &core.IngestResult{Chunks: 1}, nil
		},
	}
	recorder := &fakeJobRecorder{}
	q, err := NewQueue(ingestor, WithRecorder(recorder))
	require.NoError(t, err)
	defer q.Stop()
	q.Start(context.Background())

	goodID := q.Submit("/docs/good.pdf", "acme")
	badID := q.Submit("/docs/bad.pdf", "acme")
	waitTerminal(t, q, goodID)
	waitTerminal(t, q, badID)

	success, ok := recorder.endOf(goodID)
	require.True(t, ok)
	assert.True(t, success)

	success, ok = recorder.endOf(badID)
	require.True(t, ok)
	assert.False(t, success)
}

func TestGetUnknownJob(t *testing.T) {
	q, err := NewQueue(&fakeIngestor{})
	require.NoError(t, err)
	defer q.Stop()

	_, err = q.Get("no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListFiltersByTenant(t *testing.T) {
	q, err := NewQueue(&fakeIngestor{})
	require.NoError(t, err)
	defer q.Stop()

	a1 := q.Submit("/docs/a1.pdf", "acme")
	q.Submit("/docs/g1.pdf", "globex")
	a2 := q.Submit("/docs/a2.pdf", "acme")

	listed := q.List("acme")
	require.Len(t, listed, 2)
	assert.Equal(t, a1, listed[0].ID)
	assert.Equal(t, a2, listed[1].ID)
	assert.Empty(t, q.List("ghost"))

	all := q.List("")
	require.Len(t, all, 3, "empty tenant id lists every job")
	assert.Equal(t, a1, all[0].ID)
	assert.Equal(t, a2, all[2].ID)
}

func TestJobTimestamps(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q, err := NewQueue(&fakeIngestor{}, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	defer q.Stop()
	q.Start(context.Background())

	id := q.Submit("/docs/a.pdf", "acme")
	job := waitTerminal(t, q, id)

	assert.Equal(t, fixed, job.CreatedAt)
	assert.Equal(t, fixed, job.StartedAt)
	assert.Equal(t, fixed, job.FinishedAt)
}

func TestStopBeforeStart(t *testing.T) {
	q, err := NewQueue(&fakeIngestor{})
	require.NoError(t, err)

	q.Stop()
	q.Start(context.Background())
	q.Stop()
}

func TestNewQueueRequiresIngestor(t *testing.T) {
	_, err := NewQueue(nil)
	assert.ErrorIs(t, err, ErrIngestorRequired)
}

func TestJobTransitionRules(t *testing.T) {
	tests := []struct {
		from, to core.JobStatus
		ok       bool
	}{
		{core.JobQueued, core.JobRunning, true},
		{core.JobRunning, core.JobCompleted, true},
		{core.JobRunning, core.JobFailed, true},
		{core.JobQueued, core.JobCompleted, false},
		{core.JobCompleted, core.JobRunning, false},
		{core.JobFailed, core.JobQueued, false},
	}
	for _, tt := range tests {
		err := core.ValidateJobTransition(tt.from, tt.to)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.Error(t, err, "%s -> %s", tt.from, tt.to)
		}
	}
}
