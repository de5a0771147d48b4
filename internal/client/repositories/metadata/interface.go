package metadata

import (
	"context"
)

// Repository is the local key/value settings store: the anonymous user key,
// the last applied application version and the active cache namespace.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error

	// SetIfAbsent stores value only when key has no value yet and returns
	// whatever value the key holds afterwards.
	SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error)
}
