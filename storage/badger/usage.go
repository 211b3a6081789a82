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


package badger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"haystack/core"
	"haystack/storage"
)

// UsageRepository implements storage.UsageRepository on BadgerDB.
// One JSON document per tenant; mu makes every Update a full
// read-modify-write critical section so concurrent increments never
// lose writes.
type UsageRepository struct {
	backend *Backend
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewUsageRepository creates a usage store on the backend.
//
// Returns storage.UsageRepository interface to enforce abstraction.
func NewUsageRepository(backend *Backend) (storage.UsageRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &UsageRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-usage"),
	}, nil
}

// Update applies mutate to the tenant's usage record inside a single
// locked transaction. First touch starts from a zero-value record.
func (r *UsageRepository) Update(ctx context.Context, tenantID string, mutate func(*core.TenantUsage)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		usage, err := loadUsage(tx, tenantID)
		if err != nil {
			return err
		}
		mutate(usage)
		if err := setJSON(tx, makeUsageKey(tenantID), usage); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get returns the tenant's usage record, zero-valued if never logged.
func (r *UsageRepository) Get(ctx context.Context, tenantID string) (*core.TenantUsage, error) {
	var usage *core.TenantUsage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		usage, err = loadUsage(tx, tenantID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// All returns every tenant's usage record keyed by tenant id.
func (r *UsageRepository) All(ctx context.Context) (map[string]*core.TenantUsage, error) {
	all := make(map[string]*core.TenantUsage)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(usagePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			usage := newUsage()
			err := item.Value(func(val []byte) error {
				return unmarshalDoc(val, usage)
			})
			if err != nil {
				return err
			}
			all[tenantFromKey(item.Key(), usagePrefix)] = usage
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Close releases the repository. The shared backend is closed by its owner.
func (r *UsageRepository) Close() error {
	return nil
}

func newUsage() *core.TenantUsage {
	return &core.TenantUsage{Jobs: make(map[string]core.JobSummary)}
}

func loadUsage(tx *badger.Txn, tenantID string) (*core.TenantUsage, error) {
	usage := newUsage()
	err := getJSON(tx, makeUsageKey(tenantID), usage)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	if usage.Jobs == nil {
		usage.Jobs = make(map[string]core.JobSummary)
	}
	return usage, nil
}
