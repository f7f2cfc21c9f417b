package keystore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key has never been written
// or has been deleted. Callers treat it as "not previously authenticated".
var ErrNotFound = errors.New("keystore: key not found")

// Store is the durable key/value capability the session persists credentials
// through. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)
	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes every named key in one operation. Missing keys are not
	// an error.
	Delete(ctx context.Context, keys ...string) error
}
