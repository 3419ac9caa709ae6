package port

import "context"

type CacheRepository interface {
	// Get unmarshals the cached value into dest, reporting whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key with the cache's configured TTL.
	Set(ctx context.Context, key string, value any) error

	// Delete removes exact keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPattern removes every key matching a glob pattern and
	// returns how many were dropped.
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}
