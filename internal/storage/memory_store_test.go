package storage

import (
	"ess/internal/structures"
	"ess/internal/testutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*FileStore)(nil)
var _ Store = (*MetricsStore)(nil)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	m := NewMemoryStore(0)

	_, ok, err := m.Get("frappe_user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("frappe_user", `{"email":"a@b.c"}`))
	val, ok, err := m.Get("frappe_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"email":"a@b.c"}`, val)

	require.NoError(t, m.Delete("frappe_user"))
	_, ok, _ = m.Get("frappe_user")
	assert.False(t, ok)
}

func TestMemoryStore_EmptyValue(t *testing.T) {
	m := NewMemoryStore(1)
	require.NoError(t, m.Set("k", ""))
	val, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestMetricsStore_CountsOperations(t *testing.T) {
	metrics := testutil.NewMockMetrics()
	s := NewMetricsStore(NewMemoryStore(1), metrics)

	_, _, _ = s.Get("k")
	_ = s.Set("k", "v")
	_, _, _ = s.Get("k")
	_ = s.Delete("k")

	assert.Equal(t, 1, metrics.Store("get", "miss"))
	assert.Equal(t, 1, metrics.Store("get", "hit"))
	assert.Equal(t, 1, metrics.Store("set", "ok"))
	assert.Equal(t, 1, metrics.Store("delete", "ok"))
}

func TestMetricsStore_CountsErrors(t *testing.T) {
	metrics := testutil.NewMockMetrics()
	inner := testutil.NewMockStore()
	inner.Err = ErrClosed
	s := NewMetricsStore(inner, metrics)

	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Error(t, s.Set("k", "v"))
	assert.Equal(t, 1, metrics.Store("get", "error"))
	assert.Equal(t, 1, metrics.Store("set", "error"))
}

func TestNewStoreProvider_Drivers(t *testing.T) {
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()

	conf := &structures.Config{Store: structures.StoreConfig{Driver: "memory", MemorySize: 1}}
	s, closeFn, err := NewStoreProvider(conf, logger, metrics)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &MetricsStore{}, s)

	path := filepath.Join(t.TempDir(), "store.bin")
	conf = &structures.Config{Store: structures.StoreConfig{Driver: "file", FilePath: path}}
	s, closeFn, err = NewStoreProvider(conf, logger, metrics)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	closeFn()
	assert.FileExists(t, path)
	assert.FileExists(t, path+".key")

	conf = &structures.Config{Store: structures.StoreConfig{Driver: "redis"}}
	_, _, err = NewStoreProvider(conf, logger, metrics)
	assert.Error(t, err)
	assert.Positive(t, len(logger.Logs))
}
