// Package cache defines the boundary to the external data-fetching/cache
// store. The engine registers query fetches, deletes entries by exact key or
// predicate, and leaves staleness, deduplication, and retry policy to the
// store implementation.
package cache

import "context"

// FetchFunc fetches a value from the source of truth when the store has no
// fresh entry for a key. It is an alias so store implementations in other
// packages satisfy Store without importing this one.
type FetchFunc = func(ctx context.Context) (any, error)

// Store is the external data-fetching/cache store the engine calls into.
// Keys are the stable serialized form of structural query keys.
type Store interface {
	// GetOrFetch returns the cached value for key, invoking fetch to
	// populate or refresh it as the store's policy dictates.
	GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (any, error)

	// Delete removes the entry for an exact key.
	Delete(ctx context.Context, key string) error

	// DeleteFunc removes every entry whose key satisfies match.
	DeleteFunc(ctx context.Context, match func(key string) bool) error

	// Keys lists all keys currently present in the store.
	Keys(ctx context.Context) ([]string, error)
}
