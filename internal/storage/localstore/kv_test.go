package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Foetwenny/Penny-collection/internal/storage"
)

func TestKVSetGetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	kv, err := OpenKV(path, 0)
	require.NoError(t, err)
	require.NoError(t, kv.Set("pennyAlbums", `[]`))

	// Reopen and confirm the value survived.
	reopened, err := OpenKV(path, 0)
	require.NoError(t, err)
	v, ok := reopened.Get("pennyAlbums")
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestKVGetMissing(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "store.json"), 0)
	require.NoError(t, err)

	_, ok := kv.Get("nope")
	assert.False(t, ok)
}

func TestKVQuotaEnforced(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "store.json"), 16)
	require.NoError(t, err)

	err = kv.Set("key", "this value is far too large for the quota")
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	_, ok := kv.Get("key")
	assert.False(t, ok, "failed write must not be observable")
}

func TestKVQuotaCountsWholeStore(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "store.json"), 20)
	require.NoError(t, err)

	require.NoError(t, kv.Set("a", "0123456789")) // 11 bytes used
	err = kv.Set("b", "0123456789")               // would make 22
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// Replacing an existing value is measured against the replacement size.
	require.NoError(t, kv.Set("a", "x"))
	require.NoError(t, kv.Set("b", "0123456789"))
}

func TestKVSetAllAppliesAllOrNothing(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "store.json"), 30)
	require.NoError(t, err)
	require.NoError(t, kv.SetAll(map[string]string{"a": "one", "b": "two"}))

	// Combined footprint over quota: neither entry may change.
	err = kv.SetAll(map[string]string{"a": "01234567890123456789", "b": "01234567890123456789"})
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	v, _ := kv.Get("a")
	assert.Equal(t, "one", v)
	v, _ = kv.Get("b")
	assert.Equal(t, "two", v)

	require.NoError(t, kv.SetAll(map[string]string{"a": "three", "b": "four"}))
	v, _ = kv.Get("a")
	assert.Equal(t, "three", v)
}

func TestKVRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := OpenKV(path, 0)
	require.NoError(t, err)

	require.NoError(t, kv.Set("key", "value"))
	require.NoError(t, kv.Remove("key"))

	_, ok := kv.Get("key")
	assert.False(t, ok)

	// Removing an absent key is a no-op.
	require.NoError(t, kv.Remove("key"))
}

func TestOpenKVMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := OpenKV(path, 0)
	assert.ErrorIs(t, err, storage.ErrMalformed)
}
