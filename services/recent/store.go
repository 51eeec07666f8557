package recent

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"reelhouse/internal/jsonfile"
)

var ErrStorePathRequired = errors.New("store path not provided")

// Store is a string-keyed local key/value store. Values are opaque strings.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileStore persists all keys as one JSON object on an afero filesystem.
type FileStore struct {
	mu     sync.RWMutex
	fs     afero.Fs
	path   string
	values map[string]string
}

// NewFileStore opens (or lazily creates) the store file at path. An
// unreadable or malformed file starts the store empty rather than failing.
func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrStorePathRequired
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	store := &FileStore{
		fs:     fs,
		path:   path,
		values: make(map[string]string),
	}
	store.load()
	return store, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.values[key]
	s.values[key] = value
	if err := s.saveLocked(); err != nil {
		if existed {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored map[string]string
	if ok, err := jsonfile.Read(s.fs, s.path, &stored); err != nil || !ok {
		return
	}
	for k, v := range stored {
		s.values[k] = v
	}
}

func (s *FileStore) saveLocked() error {
	if err := jsonfile.Write(s.fs, s.path, s.values); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}
