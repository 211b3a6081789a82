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


// Package monitor tracks per-tenant usage: ingestion and query counters,
// chunk volume, human-readable last-activity markers, and per-job
// summaries. All writes go through the usage repository's atomic
// read-modify-write, so concurrent pipelines never lose an increment.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"haystack/core"
	"haystack/storage"
)

// maxQueryMarkerLen bounds the query text stored in the LastQuery marker.
const maxQueryMarkerLen = 80

// Monitor records tenant activity into a storage.UsageRepository.
type Monitor struct {
	usage  storage.UsageRepository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMonitor creates a monitor over the given usage repository.
func NewMonitor(usage storage.UsageRepository, opts ...Option) (*Monitor, error) {
	if usage == nil {
		return nil, ErrUsageRepositoryRequired
	}

	m := &Monitor{
		usage:  usage,
		logger: slog.Default().With("component", "monitor"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// LogIngestion bumps the tenant's ingestion and chunk counters and stamps
// the last-ingest marker with the filename.
func (m *Monitor) LogIngestion(ctx context.Context, tenantID string, chunks int, filename string) error {
	marker := m.marker(filename)
	return m.usage.Update(ctx, tenantID, func(u *core.TenantUsage) {
		u.Ingestions++
		u.Chunks += chunks
		u.LastIngest = marker
	})
}

// LogQuery bumps the tenant's query counter and stamps the last-query
// marker with the query text, truncated to 80 characters. The cut is
// rune-aligned so a multibyte query never leaves a broken marker.
func (m *Monitor) LogQuery(ctx context.Context, tenantID, queryText string) error {
	if runes := []rune(queryText); len(runes) > maxQueryMarkerLen {
		queryText = string(runes[:maxQueryMarkerLen])
	}
	marker := m.marker(queryText)
	return m.usage.Update(ctx, tenantID, func(u *core.TenantUsage) {
		u.Queries++
		u.LastQuery = marker
	})
}

// LogJobStart records a running job summary under the tenant.
func (m *Monitor) LogJobStart(ctx context.Context, tenantID, jobID, filename string) error {
	startedAt := m.now().UTC()
	return m.usage.Update(ctx, tenantID, func(u *core.TenantUsage) {
		u.Jobs[jobID] = core.JobSummary{
			Status:    core.JobRunning,
			Filename:  filename,
			StartedAt: startedAt,
		}
	})
}

// LogJobEnd moves the job summary to its terminal state. A job id that
// was never started is ignored.
func (m *Monitor) LogJobEnd(ctx context.Context, tenantID, jobID string, success bool, errMsg string, chunks int) error {
	finishedAt := m.now().UTC()
	return m.usage.Update(ctx, tenantID, func(u *core.TenantUsage) {
		job, ok := u.Jobs[jobID]
		if !ok {
			return
		}
		if success {
			job.Status = core.JobCompleted
		} else {
			job.Status = core.JobFailed
		}
		job.FinishedAt = finishedAt
		job.Error = errMsg
		job.Chunks = chunks
		u.Jobs[jobID] = job
	})
}

// Stats returns the tenant's usage record, zero-valued if the tenant has
// never been logged.
func (m *Monitor) Stats(ctx context.Context, tenantID string) (*core.TenantUsage, error) {
	return m.usage.Get(ctx, tenantID)
}

// AllStats returns every tenant's usage record keyed by tenant id.
func (m *Monitor) AllStats(ctx context.Context) (map[string]*core.TenantUsage, error) {
	return m.usage.All(ctx)
}

// marker renders the "timestamp | detail" form used by the last-activity
// fields.
func (m *Monitor) marker(detail string) string {
	return fmt.Sprintf("%s | %s", m.now().UTC().Format(time.RFC3339), detail)
}
