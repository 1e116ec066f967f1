package kv

import "context"

// UpdateFunc receives the current value of a key (nil when absent) and
// returns the value to store. Returning a nil slice deletes the key.
type UpdateFunc func(current []byte) ([]byte, error)

// Store describes a device-local key-value store.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Update atomically reads, transforms and writes back one key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	Close() error
}
