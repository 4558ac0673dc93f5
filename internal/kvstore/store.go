// Package kvstore defines the key-value persistence port used by the token
// store and the session-scoped stores, together with memory, Redis, and
// PostgreSQL adapters.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has no stored value.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is a minimal string key-value port. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
