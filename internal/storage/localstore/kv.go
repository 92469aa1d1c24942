// Package localstore is Backend A: a synchronous key→string store persisted
// as a single JSON file, with a hard byte quota like the browser storage it
// replaces. Writes that would exceed the quota fall through a degradation
// chain (recompress images, then strip them) before failing.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Foetwenny/Penny-collection/internal/storage"
)

// DefaultQuota mirrors the few-megabyte ceiling of the original storage.
const DefaultQuota = 5 * 1024 * 1024

// KV is the quota-limited map. All operations are synchronous; the whole map
// is rewritten atomically (temp file + rename) on every Set.
type KV struct {
	path  string
	quota int
	m     map[string]string
}

// OpenKV loads the store at path, creating the parent directory if needed.
// A quota <= 0 selects DefaultQuota. Failure to open is reported as
// storage.ErrUnavailable.
func OpenKV(path string, quota int) (*KV, error) {
	if quota <= 0 {
		quota = DefaultQuota
	}
	kv := &KV{path: path, quota: quota, m: make(map[string]string)}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create store directory: %v", storage.ErrUnavailable, err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read store file: %v", storage.ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, &kv.m); err != nil {
		return nil, fmt.Errorf("%w: parse store file: %v", storage.ErrMalformed, err)
	}
	return kv, nil
}

// Get returns the value stored under key.
func (kv *KV) Get(key string) (string, bool) {
	v, ok := kv.m[key]
	return v, ok
}

// Set stores value under key and persists the whole map. If the resulting
// store would exceed the quota, nothing changes and storage.ErrQuotaExceeded
// is returned.
func (kv *KV) Set(key, value string) error {
	return kv.SetAll(map[string]string{key: value})
}

// SetAll stores every entry and persists the map once. All entries are
// applied together or not at all: a quota or persist failure leaves the store
// exactly as it was.
func (kv *KV) SetAll(entries map[string]string) error {
	if kv.sizeWith(entries) > kv.quota {
		return storage.ErrQuotaExceeded
	}

	prev := make(map[string]string, len(entries))
	existed := make(map[string]bool, len(entries))
	for k, v := range entries {
		prev[k], existed[k] = kv.m[k]
		kv.m[k] = v
	}
	if err := kv.persist(); err != nil {
		for k := range entries {
			if existed[k] {
				kv.m[k] = prev[k]
			} else {
				delete(kv.m, k)
			}
		}
		return err
	}
	return nil
}

// Remove deletes key and persists.
func (kv *KV) Remove(key string) error {
	if _, ok := kv.m[key]; !ok {
		return nil
	}
	old := kv.m[key]
	delete(kv.m, key)
	if err := kv.persist(); err != nil {
		kv.m[key] = old
		return err
	}
	return nil
}

// sizeWith computes the serialized footprint with entries applied: the sum of
// key and value byte lengths across the store, like the per-origin ceiling
// the original storage enforced.
func (kv *KV) sizeWith(entries map[string]string) int {
	total := 0
	for k, v := range entries {
		total += len(k) + len(v)
	}
	for k, v := range kv.m {
		if _, replaced := entries[k]; replaced {
			continue
		}
		total += len(k) + len(v)
	}
	return total
}

func (kv *KV) persist() error {
	data, err := json.Marshal(kv.m)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, kv.path); err != nil {
		if rerr := os.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
			return fmt.Errorf("replace store file: %w (also failed to clean up: %v)", err, rerr)
		}
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
