package badger

import (
	"encoding/json"
	"fmt"
)

// Key prefixes for different data types
const (
	registryPrefix = "kbreg"
	tenantPrefix   = "tenacct"
	usagePrefix    = "usage"
)

// makeRegistryKey generates the key for a tenant's knowledge-base document.
func makeRegistryKey(tenantID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", registryPrefix, tenantID))
}

// makeTenantKey generates the key for a tenant account document.
func makeTenantKey(tenantID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", tenantPrefix, tenantID))
}

// makeUsageKey generates the key for a tenant's usage document.
func makeUsageKey(tenantID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", usagePrefix, tenantID))
}

// tenantFromKey strips a "prefix:" from a key to recover the tenant id.
func tenantFromKey(key []byte, prefix string) string {
	return string(key[len(prefix)+1:])
}

// Registry, tenant and usage documents are stored as JSON values. One
// document holds the whole per-tenant state of its store, so a single
// badger transaction is the read-modify-write critical section.

func marshalDoc(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalDoc(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
