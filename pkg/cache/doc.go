// Package cache provides the Redis-backed key-value store shared by all
// catalogue cache components.
//
// Every logical cache in the catalogue core (product snapshot, facet
// options, category index, popular products) stores serialized blobs
// under its own key prefix with a TTL. The store itself is deliberately
// dumb: get, set-with-TTL, delete, keys-by-pattern and batched
// multi-get. Cache-aside semantics, key naming and serialization belong
// to the callers.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	store := cache.NewStore(redisClient)
//
//	err := store.Set(ctx, "catalog:products:all", blob, 24*time.Hour)
//
//	data, err := store.Get(ctx, "catalog:products:all")
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// repopulate from upstream
//	}
//
// # Failure Policy
//
// Read errors are indistinguishable from misses to well-behaved
// callers: treat them as a miss and repopulate. Write errors must never
// be fatal; log and continue serving from upstream data.
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - catalog_cache_hits_total{prefix} - Cache hits
//   - catalog_cache_misses_total{prefix} - Cache misses
//   - catalog_cache_errors_total{operation} - Cache operation errors
package cache
