// Package metadata stores small opaque values under string keys on the
// client: the persisted auth session, the pending email verification marker
// and the sign-up draft. Implementations exist for SQLite and Redis.
package metadata

import (
	"context"
)

// UpdateFunc receives the current value of a key (nil when absent) and
// returns the value to store. Returning a nil value leaves the key untouched.
type UpdateFunc func(current []byte) ([]byte, error)

type Repository interface {
	// Get returns (nil, nil) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update performs an atomic read-modify-write of one key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
