// Package localdata implements the durable key/value medium under the local
// cache: opaque blobs addressed by string keys.
package localdata

import "context"

// Repository is a durable key→blob store. Get returns common.ErrNotFound
// when the key is absent. Delete on a missing key is a no-op. DeleteMany
// removes all given keys or none of them.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
}
