package main

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haystack/core"
	badgerstore "haystack/storage/badger"
)

func TestResolveKB(t *testing.T) {
	registry, _, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	legalID, err := registry.CreateKB(ctx, "acme", "legal")
	require.NoError(t, err)
	hrID, err := registry.CreateKB(ctx, "acme", "hr")
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		got, err := resolveKB(ctx, registry, "acme", legalID)
		require.NoError(t, err)
		assert.Equal(t, legalID, got)
	})

	t.Run("by name", func(t *testing.T) {
		got, err := resolveKB(ctx, registry, "acme", "hr")
		require.NoError(t, err)
		assert.Equal(t, hrID, got)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := resolveKB(ctx, registry, "acme", "finance")
		assert.ErrorContains(t, err, "no knowledge base")
	})

	t.Run("ambiguous name", func(t *testing.T) {
		_, err := registry.CreateKB(ctx, "acme", "legal")
		require.NoError(t, err)

		_, err = resolveKB(ctx, registry, "acme", "legal")
		assert.ErrorContains(t, err, "ambiguous")
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := resolveKB(ctx, registry, "globex", "legal")
		assert.ErrorContains(t, err, "no knowledge base")
	})
}

func TestInteractiveLoopExitCommands(t *testing.T) {
	// Both exit words leave the loop before any app call is made.
	for _, cmd := range []string{"exit", "back", "EXIT", "Back"} {
		t.Run(cmd, func(t *testing.T) {
			orig := stdin
			defer func() { stdin = orig }()
			stdin = bufio.NewReader(strings.NewReader(cmd + "\n"))

			err := interactiveLoop(context.Background(), nil, "acme")
			assert.NoError(t, err)
		})
	}
}

func TestFormatStats(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := &core.TenantUsage{
		Ingestions: 3,
		Queries:    7,
		Chunks:     42,
		LastIngest: "2025-06-01T12:00:00Z | report.pdf",
		Jobs: map[string]core.JobSummary{
			"job-b": {Status: core.JobFailed, Filename: "bad.pdf", StartedAt: started.Add(time.Minute), Error: "corrupt file"},
			"job-a": {Status: core.JobCompleted, Filename: "report.pdf", StartedAt: started, Chunks: 42},
		},
	}

	out := formatStats("acme", stats)
	assert.Contains(t, out, "Tenant acme")
	assert.Contains(t, out, "ingestions: 3")
	assert.Contains(t, out, "queries:    7")
	assert.Contains(t, out, "chunks:     42")
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "(corrupt file)")

	// Jobs print in start order.
	assert.Less(t, strings.Index(out, "job-a"), strings.Index(out, "job-b"))
}
