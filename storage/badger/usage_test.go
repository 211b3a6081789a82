package badger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haystack/core"
)

func TestUsageFirstTouchIsZeroValued(t *testing.T) {
	_, _, usage, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	rec, err := usage.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Zero(t, rec.Ingestions)
	assert.Zero(t, rec.Queries)
	assert.Zero(t, rec.Chunks)
	assert.NotNil(t, rec.Jobs)
}

func TestUsageUpdate(t *testing.T) {
	_, _, usage, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	err = usage.Update(ctx, "acme", func(u *core.TenantUsage) {
		u.Ingestions++
		u.Chunks += 3
		u.LastIngest = "2026-01-02 15:04 | report.pdf"
	})
	require.NoError(t, err)

	err = usage.Update(ctx, "acme", func(u *core.TenantUsage) {
		u.Queries++
		u.Jobs["job-1"] = core.JobSummary{Status: core.JobCompleted, Filename: "report.pdf", Chunks: 3}
	})
	require.NoError(t, err)

	rec, err := usage.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Ingestions)
	assert.Equal(t, 1, rec.Queries)
	assert.Equal(t, 3, rec.Chunks)
	assert.Equal(t, "2026-01-02 15:04 | report.pdf", rec.LastIngest)
	require.Contains(t, rec.Jobs, "job-1")
	assert.Equal(t, core.JobCompleted, rec.Jobs["job-1"].Status)
}

func TestUsageConcurrentUpdatesLoseNothing(t *testing.T) {
	_, _, usage, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	const writers = 8
	const updates = 25

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range updates {
				err := usage.Update(ctx, "acme", func(u *core.TenantUsage) {
					u.Queries++
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	rec, err := usage.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, writers*updates, rec.Queries)
}

func TestUsageAll(t *testing.T) {
	_, _, usage, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, usage.Update(ctx, "acme", func(u *core.TenantUsage) { u.Ingestions = 2 }))
	require.NoError(t, usage.Update(ctx, "globex", func(u *core.TenantUsage) { u.Queries = 5 }))

	all, err := usage.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all["acme"].Ingestions)
	assert.Equal(t, 5, all["globex"].Queries)
}
