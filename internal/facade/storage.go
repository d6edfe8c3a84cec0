package facade

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"curalink/internal/security"
)

// Storage is a flat key/value store of JSON documents used by the local emulation
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// MemoryStorage keeps documents in process memory
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// DirStorage keeps one <key>.json file per key inside a directory
type DirStorage struct {
	dir string
	mu  sync.Mutex
}

// NewDirStorage creates the directory if needed
func NewDirStorage(dir string) (*DirStorage, error) {
	if err := security.ValidateFilePath(dir); err != nil {
		return nil, fmt.Errorf("invalid local storage directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}
	return &DirStorage{dir: dir}, nil
}

func (d *DirStorage) path(key string) (string, error) {
	name := key + ".json"
	if err := security.ValidateFilePathWithBase(name, d.dir); err != nil {
		return "", fmt.Errorf("invalid storage key %q: %w", key, err)
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid storage key %q: nested paths not allowed", key)
	}
	return filepath.Join(d.dir, name), nil
}

func (d *DirStorage) Get(key string) ([]byte, bool, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return b, true, nil
}

// Set replaces the document by renaming a temporary file over it
func (d *DirStorage) Set(key string, value []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}
