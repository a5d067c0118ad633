package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/PizzaHomicide/usercard/internal/log"
)

// FileStore persists every key into a single JSON object on disk.  The whole document is read on open and rewritten
// on each Set.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]json.RawMessage
	closed bool
}

// NewFileStore opens the store at path, creating nothing until the first write
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("Storage file does not exist yet", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read storage file: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("unable to parse storage file %s: %w", path, err)
	}
	if s.values == nil {
		// A document holding only null decodes to a nil map
		s.values = make(map[string]json.RawMessage)
	}

	log.Debug("Loaded storage file", "path", path, "keys", len(s.values))
	return s, nil
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

// Set stores value under key and flushes the document to disk.  value must be valid JSON since it is embedded into the
// document as is.
func (s *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for key %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	previous, existed := s.values[key]
	s.values[key] = clone(value)
	if err := s.flush(); err != nil {
		// Keep memory in line with what is on disk
		if existed {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// flush writes the document next to its final location and renames it into place.  Callers must hold the write lock.
func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("unable to create storage dir: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temp storage file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("unable to write storage file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("unable to replace storage file: %w", err)
	}
	return nil
}
