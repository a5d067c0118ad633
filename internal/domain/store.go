package domain

// KVStore defines the interface for the key-value storage the settings are persisted in
type KVStore interface {
	// Get returns the raw value stored under key.  found is false when nothing has been stored yet.
	Get(key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing anything stored there before
	Set(key string, value []byte) error

	// Close releases any resources held by the store.  Get and Set return storage.ErrClosed afterwards.
	Close() error
}
