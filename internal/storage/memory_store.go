package storage

import (
	"errors"
	"github.com/coocood/freecache"
)

const minMemorySizeMB = 1

// MemoryStore is a process-lifetime store backed by freecache. Entries never
// expire; everything is lost on restart, which is equivalent to a reinstall.
type MemoryStore struct {
	cache *freecache.Cache
}

func NewMemoryStore(sizeMB int) *MemoryStore {
	if sizeMB < minMemorySizeMB {
		sizeMB = minMemorySizeMB
	}
	return &MemoryStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	val, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(val), true, nil
}

func (m *MemoryStore) Set(key, value string) error {
	return m.cache.Set([]byte(key), []byte(value), 0)
}

func (m *MemoryStore) Delete(key string) error {
	m.cache.Del([]byte(key))
	return nil
}
