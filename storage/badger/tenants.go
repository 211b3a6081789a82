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
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"haystack/core"
	"haystack/storage"
)

// tenantDoc is the stored form of one tenant account.
type tenantDoc struct {
	CredentialDigest string    `json:"credential_digest"`
	CreatedAt        time.Time `json:"created_at"`
}

// TenantRepository implements storage.TenantRepository on BadgerDB.
// Credentials are stored as BLAKE2b digests only.
type TenantRepository struct {
	backend *Backend
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewTenantRepository creates a tenant account store on the backend.
//
// Returns storage.TenantRepository interface to enforce abstraction.
func NewTenantRepository(backend *Backend) (storage.TenantRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &TenantRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-tenants"),
	}, nil
}

// CreateTenant registers a tenant with the digest of the credential.
func (r *TenantRepository) CreateTenant(ctx context.Context, tenantID, credential string) error {
	if err := core.ValidateTenantID(tenantID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTenantKey(tenantID)
		if _, err := tx.Get(key); err == nil {
			return core.ErrTenantExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		doc := tenantDoc{
			CredentialDigest: core.CredentialDigest(credential),
			CreatedAt:        time.Now().UTC(),
		}
		if err := setJSON(tx, key, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.logger.Info("created tenant", "tenant", tenantID)
	return nil
}

// DeleteTenant removes the tenant account.
func (r *TenantRepository) DeleteTenant(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTenantKey(tenantID)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return core.ErrTenantNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.logger.Info("deleted tenant", "tenant", tenantID)
	return nil
}

// UpdatePassword replaces the tenant's credential digest.
func (r *TenantRepository) UpdatePassword(ctx context.Context, tenantID, credential string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTenantKey(tenantID)
		var doc tenantDoc
		if err := getJSON(tx, key, &doc); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return core.ErrTenantNotFound
			}
			return err
		}
		doc.CredentialDigest = core.CredentialDigest(credential)
		if err := setJSON(tx, key, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListTenants returns all registered tenants.
func (r *TenantRepository) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	var tenants []core.Tenant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tenantPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var doc tenantDoc
			err := item.Value(func(val []byte) error {
				return unmarshalDoc(val, &doc)
			})
			if err != nil {
				return err
			}
			tenants = append(tenants, core.Tenant{
				ID:               tenantFromKey(item.Key(), tenantPrefix),
				CredentialDigest: doc.CredentialDigest,
				CreatedAt:        doc.CreatedAt,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// VerifyCredentials reports whether the credential matches the tenant's
// stored digest. Unknown tenants verify false without error.
func (r *TenantRepository) VerifyCredentials(ctx context.Context, tenantID, credential string) (bool, error) {
	var doc tenantDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return getJSON(tx, makeTenantKey(tenantID), &doc)
	}, false)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}

	digest := core.CredentialDigest(credential)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(doc.CredentialDigest)) == 1, nil
}

// Close releases the repository. The shared backend is closed by its owner.
func (r *TenantRepository) Close() error {
	return nil
}
