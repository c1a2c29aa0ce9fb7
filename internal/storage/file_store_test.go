package storage

import (
	"errors"
	"ess/internal/testutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	cipher, err := NewCipher([]byte("test-secret"))
	require.NoError(t, err)
	codec, err := NewSnapshotCodec()
	require.NoError(t, err)
	fs, err := NewFileStore(path, codec, cipher, &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(fs.Close)
	return fs
}

func TestFileStore_SetGetDelete(t *testing.T) {
	fs := newTestFileStore(t, filepath.Join(t.TempDir(), "store.bin"))

	_, ok, err := fs.Get("frappe_site_url")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Set("frappe_site_url", "https://example.com"))
	val, ok, err := fs.Get("frappe_site_url")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", val)

	require.NoError(t, fs.Delete("frappe_site_url"))
	_, ok, _ = fs.Get("frappe_site_url")
	assert.False(t, ok)

	assert.NoError(t, fs.Delete("missing"))
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.bin")
	fs := newTestFileStore(t, path)
	require.NoError(t, fs.Set("frappe_api_key", "abc"))
	require.NoError(t, fs.Set("device_id", "dev123"))
	fs.Close()

	reopened := newTestFileStore(t, path)
	val, ok, err := reopened.Get("device_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dev123", val)
}

func TestFileStore_FileIsSealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.bin")
	fs := newTestFileStore(t, path)
	require.NoError(t, fs.Set("frappe_api_secret", "very-secret-value"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "very-secret-value")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_WrongSecretFailsToOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.bin")
	fs := newTestFileStore(t, path)
	require.NoError(t, fs.Set("k", "v"))

	other, err := NewCipher([]byte("other-secret"))
	require.NoError(t, err)
	codec, err := NewSnapshotCodec()
	require.NoError(t, err)
	defer codec.Close()

	_, err = NewFileStore(path, codec, other, &testutil.MockLogger{})
	assert.ErrorContains(t, err, "unable to open credential store")
}

func TestFileStore_SaveFailureRollsBack(t *testing.T) {
	cipher, err := NewCipher([]byte("s"))
	require.NoError(t, err)
	codec := &testutil.MockCodec{}
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store.bin"), codec, cipher, &testutil.MockLogger{})
	require.NoError(t, err)
	require.NoError(t, fs.Set("k", "v1"))

	codec.EncodeFn = func([]byte) ([]byte, error) { return nil, errors.New("disk full") }
	assert.Error(t, fs.Set("k", "v2"))
	assert.Error(t, fs.Set("new", "x"))
	assert.Error(t, fs.Delete("k"))

	val, _, _ := fs.Get("k")
	assert.Equal(t, "v1", val)
	_, ok, _ := fs.Get("new")
	assert.False(t, ok)
}

func TestFileStore_Closed(t *testing.T) {
	fs := newTestFileStore(t, filepath.Join(t.TempDir(), "store.bin"))
	fs.Close()
	fs.Close()

	_, _, err := fs.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, fs.Set("k", "v"), ErrClosed)
	assert.ErrorIs(t, fs.Delete("k"), ErrClosed)
}
