// Package cache memoizes previous-score lookups.
//
// A Backend stores raw bytes with a TTL. MemoryBackend keeps entries in
// process; RedisBackend shares them between pagescore processes through
// go-redis. Resolver wraps any previous-score resolver and serves repeated
// lookups from the backend, falling through to the wrapped resolver when
// the backend fails.
package cache
