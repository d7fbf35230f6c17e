// Package storage provides the key/value backends the score ledger is kept in.
//
// Three implementations exist: an in-memory map (the fallback when nothing
// durable is usable), SQLite via the pure-Go modernc.org/sqlite driver, and
// Redis. The persistent backends also report changes made by other
// processes sharing the same storage.
package storage

import (
	"context"
	"errors"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_backend.go github.com/vovakirdan/arcade-ledger/internal/storage Backend,Watcher

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage: backend closed")

// UpdateFunc receives the current value of a key (ok is false when the key
// is absent) and returns the value to store. Returning write=false leaves
// the key untouched. The function may be called more than once if the
// backend has to retry.
type UpdateFunc func(current string, ok bool) (next string, write bool, err error)

// Backend is a string key/value store.
type Backend interface {
	// Get returns the value stored under key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Update atomically reads and replaces the value of key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Close releases the backend's resources.
	Close() error
}

// Watcher is implemented by backends that can observe writes made by
// other processes.
type Watcher interface {
	// Watch blocks until ctx is done, calling onChange each time key is
	// written or removed by someone other than this backend instance.
	Watch(ctx context.Context, key string, onChange func()) error
}

// Kind names a backend implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)
