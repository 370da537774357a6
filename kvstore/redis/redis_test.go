/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// getTestStore connects to the Redis instance named by REDIS_ADDR.
// Tests are skipped when no instance is configured.
func getTestStore(t *testing.T) *Store {
	t.Helper()

	_ = godotenv.Load()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}

	store, err := Connect(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	return store
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	key := "kvmodels_test:RoundTrip:1"
	defer store.Delete(ctx, key)

	if err := store.Set(ctx, key, `{"id": 1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != `{"id": 1}` {
		t.Fatalf("Expected stored value, got %q (ok=%v)", v, ok)
	}
}

func TestKeysAndBulk(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	kv := map[string]string{
		"kvmodels_test:Bulk:1": "a",
		"kvmodels_test:Bulk:2": "b",
	}
	defer store.Delete(ctx, "kvmodels_test:Bulk:1", "kvmodels_test:Bulk:2")

	if err := store.MSet(ctx, kv); err != nil {
		t.Fatalf("MSet failed: %v", err)
	}

	keys, err := store.Keys(ctx, "kvmodels_test:Bulk:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %v", keys)
	}

	values, err := store.MGet(ctx, []string{"kvmodels_test:Bulk:1", "kvmodels_test:Bulk:missing"})
	if err != nil {
		t.Fatalf("MGet failed: %v", err)
	}
	if values[0] != "a" || values[1] != "" {
		t.Fatalf("Unexpected MGet result: %v", values)
	}
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	key := "max_id:kvmodels_test:Incr"
	defer store.Delete(ctx, key)

	first, err := store.Incr(ctx, key)
	if err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	second, err := store.Incr(ctx, key)
	if err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	if second != first+1 {
		t.Fatalf("Expected %d, got %d", first+1, second)
	}
}
