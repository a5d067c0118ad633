package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PizzaHomicide/usercard/internal/config"
	"github.com/PizzaHomicide/usercard/internal/domain"
	"github.com/PizzaHomicide/usercard/internal/log"
)

// ErrClosed is returned by stores that are used after Close
var ErrClosed = errors.New("storage: store is closed")

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open creates the store configured in cfg
func Open(cfg *config.Config) (domain.KVStore, error) {
	backend := cfg.Storage.Backend
	log.Info("Opening storage", "backend", backend)

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(cfg.Storage.FilePath)
	case BackendSQLite:
		return OpenSQLite(cfg.Storage.DSN)
	case BackendPostgres:
		return OpenPostgres(cfg.Storage.DSN)
	default:
		log.Warn("Unknown storage backend, falling back to file", "backend", backend)
		return NewFileStore(cfg.Storage.FilePath)
	}
}

// GetJSON decodes the value stored under key into dst.  found is false when the key is absent, in which case dst is
// left untouched.  A value that cannot be decoded returns found as true along with the decode error.
func GetJSON(store domain.KVStore, key string, dst any) (found bool, err error) {
	data, found, err := store.Get(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("unable to decode value for key %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(store domain.KVStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to encode value for key %q: %w", key, err)
	}
	return store.Set(key, data)
}
