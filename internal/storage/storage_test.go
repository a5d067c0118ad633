package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PizzaHomicide/usercard/internal/config"
	"github.com/PizzaHomicide/usercard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories opens a fresh store of each backend that can run without external services
var storeFactories = map[string]func(t *testing.T) domain.KVStore{
	BackendMemory: func(*testing.T) domain.KVStore { return NewMemoryStore() },
	BackendFile: func(t *testing.T) domain.KVStore {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
		require.NoError(t, err)
		return s
	},
	BackendSQLite: func(t *testing.T) domain.KVStore {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "usercard.db"))
		require.NoError(t, err)
		return s
	},
}

func TestStoreContract(t *testing.T) {
	for name, open := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			_, found, err := store.Get("missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set("userStorage", []byte(`{"a":1}`)))
			value, found, err := store.Get("userStorage")
			require.NoError(t, err)
			assert.True(t, found)
			assert.JSONEq(t, `{"a":1}`, string(value))

			require.NoError(t, store.Set("userStorage", []byte(`{"a":2}`)))
			value, _, err = store.Get("userStorage")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(value))

			require.NoError(t, store.Set("other", []byte(`"x"`)))
			value, _, err = store.Get("userStorage")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(value))

			require.NoError(t, store.Close())
			_, _, err = store.Get("userStorage")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, store.Set("userStorage", []byte(`{}`)), ErrClosed)
			assert.NoError(t, store.Close())
		})
	}
}

func TestMemoryStore(t *testing.T) {
	t.Run("ValuesAreCopied", func(t *testing.T) {
		store := NewMemoryStore()
		input := []byte(`"abc"`)
		require.NoError(t, store.Set("k", input))
		input[1] = 'z'

		value, _, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, `"abc"`, string(value))

		value[1] = 'q'
		again, _, _ := store.Get("k")
		assert.Equal(t, `"abc"`, string(again))
	})

	t.Run("Closed", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Close())

		_, _, err := store.Get("k")
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, store.Set("k", []byte("1")), ErrClosed)
	})
}

func TestFileStore(t *testing.T) {
	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "storage.json")

		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set("userStorage", []byte(`{"userInfo":{"name":"y"}}`)))
		require.NoError(t, store.Close())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		value, found, err := reopened.Get("userStorage")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"userInfo":{"name":"y"}}`, string(value))
	})

	t.Run("RejectsInvalidJSON", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
		require.NoError(t, err)

		assert.Error(t, store.Set("k", []byte("{not json")))
		_, found, err := store.Get("k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("CorruptFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(path, nil, 0600))

		store, err := NewFileStore(path)
		require.NoError(t, err)
		_, found, err := store.Get("k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("NullDocument", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(path, []byte("null"), 0600))

		store, err := NewFileStore(path)
		require.NoError(t, err)
		_, found, err := store.Get("userStorage")
		require.NoError(t, err)
		assert.False(t, found)

		assert.NotPanics(t, func() {
			require.NoError(t, store.Set("userStorage", []byte(`{}`)))
		})
		value, found, err := store.Get("userStorage")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{}`, string(value))
	})

	t.Run("FailedWriteLeavesStateUntouched", func(t *testing.T) {
		dir := t.TempDir()
		// A directory where the parent should be makes every flush fail
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		store, err := NewFileStore(filepath.Join(blocker, "storage.json"))
		require.NoError(t, err)

		assert.Error(t, store.Set("k", []byte(`1`)))
		_, found, err := store.Get("k")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestGormStorePersistsAcrossReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "usercard.db")

	store, err := OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, store.Set("userStorage", []byte(`{"userInfo":{"name":"y"}}`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(dsn)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get("userStorage")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"userInfo":{"name":"y"}}`, string(value))
}

func TestJSONHelpers(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	store := NewMemoryStore()

	var got payload
	found, err := GetJSON(store, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(store, "k", payload{Name: "y"}))
	found, err = GetJSON(store, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "y", got.Name)

	require.NoError(t, store.Set("bad", []byte("{")))
	found, err = GetJSON(store, "bad", &got)
	assert.True(t, found)
	assert.Error(t, err)

	assert.Error(t, SetJSON(store, "k", make(chan int)))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			FilePath: filepath.Join(dir, "storage.json"),
			DSN:      filepath.Join(dir, "usercard.db"),
		},
	}

	tests := []struct {
		backend string
		want    any
	}{
		{BackendMemory, &MemoryStore{}},
		{BackendFile, &FileStore{}},
		{BackendSQLite, &GormStore{}},
		{"unknown", &FileStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg.Storage.Backend = tt.backend
			store, err := Open(cfg)
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)
		})
	}
}
