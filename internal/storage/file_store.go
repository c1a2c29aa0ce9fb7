package storage

import (
	json "github.com/goccy/go-json"
	"ess/internal/providers"
	"fmt"
	"os"
	"sync"
)

type fileSnapshot struct {
	Entries map[string]string `json:"entries"`
}

// FileStore keeps entries in memory and rewrites the whole snapshot on every
// mutation: JSON, zstd-compressed, then sealed.
type FileStore struct {
	mu         sync.Mutex
	path       string
	entries    map[string]string
	codec      SnapshotCodec
	cipher     *Cipher
	logger     providers.Logger
	closed     bool
}

func NewFileStore(path string, codec SnapshotCodec, cipher *Cipher, logger providers.Logger) (*FileStore, error) {
	fs := &FileStore{
		path:       path,
		entries:    make(map[string]string),
		codec:      codec,
		cipher:     cipher,
		logger:     logger,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	plain, err := fs.cipher.Open(data)
	if err != nil {
		return fmt.Errorf("unable to open credential store: %w", err)
	}
	decoded, err := fs.codec.Decode(plain)
	if err != nil {
		return fmt.Errorf("unable to decode credential store: %w", err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(decoded, &snapshot); err != nil {
		return fmt.Errorf("unable to parse credential store: %w", err)
	}
	if snapshot.Entries != nil {
		fs.entries = snapshot.Entries
	}
	fs.logger.Debugf(providers.TypeApp, "Loaded %d credential store entries from %s", len(fs.entries), fs.path)
	return nil
}

func (fs *FileStore) save() error {
	jsonData, err := json.Marshal(fileSnapshot{Entries: fs.entries})
	if err != nil {
		return err
	}
	frame, err := fs.codec.Encode(jsonData)
	if err != nil {
		return err
	}
	data, err := fs.cipher.Seal(frame)
	if err != nil {
		return err
	}

	tmpFile := fs.path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fs.path)
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return "", false, ErrClosed
	}
	val, ok := fs.entries[key]
	return val, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	prev, existed := fs.entries[key]
	fs.entries[key] = value
	if err := fs.save(); err != nil {
		if existed {
			fs.entries[key] = prev
		} else {
			delete(fs.entries, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	prev, existed := fs.entries[key]
	if !existed {
		return nil
	}
	delete(fs.entries, key)
	if err := fs.save(); err != nil {
		fs.entries[key] = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return
	}
	fs.closed = true
	fs.codec.Close()
}
