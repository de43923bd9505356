package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached value does
// not match the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: result does not match requested type")

// FetchFn is the producer signature Service expects when populating a key
// from the source of truth. It runs at most once per miss; concurrent misses
// on the same key may each invoke it once.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Service is the cache contract consumed by the domain services. Keys are
// caller-defined and must be stable per logical resource (see keys.go);
// every writer that mutates a cached resource deletes that exact key.
type Service interface {
	// GetOrFetch returns the value stored under key, invoking fetchFn on a
	// miss and storing its result. fetchFn must have the signature
	// func(context.Context) (T, error).
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)

	// Delete removes key if present; a no-op when absent.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key that starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is the type-safe wrapper around Service.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service Service, key string, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		// Nil interface values cannot be asserted; they map to the zero T.
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
