/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvstore

import "context"

// Store is the key-value contract kvmodels requires from a backend.
// All values are UTF-8 text; a missing key reads as the empty string with
// ok == false semantics left to Get's error value being nil and the bool.
type Store interface {
	// Get returns the value stored under key. A missing key returns
	// ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// MGet returns the values for keys in order. Missing keys yield
	// empty strings.
	MGet(ctx context.Context, keys []string) ([]string, error)

	// MSet stores every entry of kv in one round trip where the backend
	// allows it.
	MSet(ctx context.Context, kv map[string]string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Keys enumerates the keys matching a glob-style prefix pattern of
	// the form "<prefix>:<model>:*".
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Incrementer is an optional extension for backends with an atomic
// increment primitive. When a Store implements it, id allocation uses a
// single Incr call instead of the lock-guarded read-modify-write.
type Incrementer interface {
	// Incr atomically increments the integer stored under key by one and
	// returns the new value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)
}
