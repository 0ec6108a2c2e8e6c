// Package kv provides a small Redis-like key-value store abstraction with
// in-memory and Redis-backed implementations.
//
// The in-memory store is what the service runs on when no Redis is
// reachable; it supports TTLs with a background janitor.
//
//	store := memory.New(30 * time.Second)
//	defer store.Close()
//
//	_ = store.Set(ctx, "key", []byte("value"), 10*time.Second)
//	value, err := store.Get(ctx, "key")
//	if errors.Is(err, kv.ErrNotFound) {
//		// expired or never set
//	}
package kv
