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

// kbDoc is the stored form of one knowledge base inside a tenant's
// registry document.
type kbDoc struct {
	Name   string `json:"kb_name"`
	Active bool   `json:"active"`
}

// registryDoc is a tenant's whole knowledge-base registry, keyed by KB id.
type registryDoc map[string]kbDoc

// RegistryRepository implements storage.RegistryRepository on BadgerDB.
// Each tenant's registry is one JSON document; mu serializes the
// read-modify-write cycles so the active flip stays atomic.
type RegistryRepository struct {
	backend *Backend
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewRegistryRepository creates a knowledge-base registry on the backend.
//
// Returns storage.RegistryRepository interface to enforce abstraction.
func NewRegistryRepository(backend *Backend) (storage.RegistryRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &RegistryRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-registry"),
	}, nil
}

// CreateKB registers a new knowledge base under the tenant.
// The new knowledge base is created inactive.
func (r *RegistryRepository) CreateKB(ctx context.Context, tenantID, name string) (string, error) {
	if err := core.ValidateTenantID(tenantID); err != nil {
		return "", err
	}
	if err := core.ValidateKBName(name); err != nil {
		return "", err
	}

	kbID := core.NewKBID()

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.loadDoc(tx, tenantID)
		if err != nil {
			return err
		}
		doc[kbID] = kbDoc{Name: name, Active: false}
		if err := setJSON(tx, makeRegistryKey(tenantID), doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return "", err
	}

	r.logger.Debug("created knowledge base", "tenant", tenantID, "kb", kbID, "name", name)
	return kbID, nil
}

// ListKBs returns all knowledge bases of the tenant keyed by id.
// An unknown tenant yields an empty map.
func (r *RegistryRepository) ListKBs(ctx context.Context, tenantID string) (map[string]core.KnowledgeBase, error) {
	var doc registryDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = r.loadDoc(tx, tenantID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	kbs := make(map[string]core.KnowledgeBase, len(doc))
	for id, kb := range doc {
		kbs[id] = core.KnowledgeBase{
			ID:       id,
			TenantID: tenantID,
			Name:     kb.Name,
			Active:   kb.Active,
		}
	}
	return kbs, nil
}

// SetActiveKB marks the knowledge base active and deactivates all its
// siblings in the same document write. Idempotent for an already active id.
func (r *RegistryRepository) SetActiveKB(ctx context.Context, tenantID, kbID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.loadDoc(tx, tenantID)
		if err != nil {
			return err
		}
		if _, ok := doc[kbID]; !ok {
			return core.ErrUnknownKnowledgeBase
		}
		for id, kb := range doc {
			kb.Active = id == kbID
			doc[id] = kb
		}
		if err := setJSON(tx, makeRegistryKey(tenantID), doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetActiveKB returns the id of the tenant's active knowledge base.
func (r *RegistryRepository) GetActiveKB(ctx context.Context, tenantID string) (string, error) {
	var active string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.loadDoc(tx, tenantID)
		if err != nil {
			return err
		}
		for id, kb := range doc {
			if kb.Active {
				active = id
				return nil
			}
		}
		return core.ErrNoActiveKnowledgeBase
	}, false)
	if err != nil {
		return "", err
	}
	return active, nil
}

// DeleteKB removes the knowledge base record. Stored chunks and graph
// data are not cascaded.
func (r *RegistryRepository) DeleteKB(ctx context.Context, tenantID, kbID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.loadDoc(tx, tenantID)
		if err != nil {
			return err
		}
		if _, ok := doc[kbID]; !ok {
			return core.ErrUnknownKnowledgeBase
		}
		delete(doc, kbID)
		if err := setJSON(tx, makeRegistryKey(tenantID), doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.logger.Debug("deleted knowledge base", "tenant", tenantID, "kb", kbID)
	return nil
}

// Close releases the repository. The shared backend is closed by its owner.
func (r *RegistryRepository) Close() error {
	return nil
}

// loadDoc reads the tenant's registry document, returning an empty
// document when the tenant has none yet.
func (r *RegistryRepository) loadDoc(tx *badger.Txn, tenantID string) (registryDoc, error) {
	doc := registryDoc{}
	err := getJSON(tx, makeRegistryKey(tenantID), &doc)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return doc, nil
}
