package sessions

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Repo.Get when a key has never been set or was deleted
var ErrKeyNotFound = errors.New("key not found")

// Repo is the durable key-value storage behind the Store.
// Values are opaque strings; the Store serialises profiles as JSON.
type Repo interface {
	// Get returns the value for key or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set writes a single key
	Set(ctx context.Context, key, value string) error

	// Delete removes keys, ignoring keys that do not exist
	Delete(ctx context.Context, keys ...string) error
}
