// Package storage provides abstractions for the local overlay key-value store.
package storage

import (
	"context"
	"errors"
)

// Keys under which the overlay persists its collections.
const (
	KeyUsers       = "users"
	KeyCompanies   = "companies"
	KeyProperties  = "properties"
	KeyCurrentUser = "currentUser"
)

// ErrNilValue is returned when a write is attempted with a nil value.
// Absence is expressed with Delete, never with a nil payload.
var ErrNilValue = errors.New("storage: nil value")

// Store defines the interface for overlay storage operations.
// This abstraction allows swapping backends (SQLite file, Redis, etc.)
// without changing the overlay or reconciliation code.
//
// Values are opaque bytes. Each key holds one whole document; there are no
// partial updates.
type Store interface {
	// Get returns the value stored under key.
	// Returns nil and no error if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap stores value under key only if the current value equals
	// old byte-for-byte. A nil old means the key must be absent.
	// Returns false without error when the precondition does not hold.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
