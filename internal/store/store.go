// Package store abstracts the key-value store the document lives in, so tests
// can run against an in-memory fake and deployments can pick SQLite or Badger.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: key not found")

// Store is the collaborator interface the coordinator needs: plain get/set for
// the document, conditional set with expiry for the lock record.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value unconditionally.
	Set(ctx context.Context, key string, value []byte) error
	// SetNX writes value only if key is absent (or its previous value
	// expired) and reports whether the write happened. A ttl of zero means
	// no expiry.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
