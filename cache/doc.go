// Package cache defines the cache-aside contract shared by every domain
// service in this module.
//
// # Overview
//
// The package exports three things:
//
//   - Service: the backend-agnostic cache interface (GetOrFetch, Delete,
//     DeleteByPrefix)
//   - GetOrFetch: a generic, type-safe wrapper over Service.GetOrFetch
//   - the key builders in keys.go, which fix the key format for every
//     cached resource in the marketplace
//
// # Cache-aside discipline
//
// Services populate the cache on read-miss and invalidate on write; the
// cache never holds the writable copy of an entity, only disposable
// read-optimized snapshots. A read goes through GetOrFetch with a producer
// that hits the repository; a successful write is followed by Delete on the
// exact keys the mutation affects. A failed write must never invalidate.
//
// # Keys
//
// Keys are flat, human-readable strings such as "cart_<userID>" and
// "reviews_all". They are deterministic per logical resource so that any
// writer can compute the key a reader cached under. Use the builders in
// keys.go rather than formatting keys inline.
//
// # Backends
//
// The default backend is the in-process sturdyc adapter constructed by
// NewService. A Redis-backed adapter for multi-process deployments lives in
// internal/cacheinfra; both satisfy Service and neither changes the
// contract: producers may still run once per concurrent miss, and Delete of
// an absent key is a no-op.
package cache
