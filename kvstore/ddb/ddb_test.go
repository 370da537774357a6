/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"
)

// getTestStore builds a Store from the AWS_* environment (optionally via a
// .env file). Tests are skipped when no table is configured.
func getTestStore(t *testing.T) *Store {
	t.Helper()

	_ = godotenv.Load()

	awsAccessKey := os.Getenv("AWS_ACCESS_KEY")
	awsSecretKey := os.Getenv("AWS_SECRET_KEY")
	tableName := os.Getenv("AWS_DDB_TABLE")
	region := os.Getenv("AWS_REGION")

	if awsAccessKey == "" || tableName == "" {
		t.Skip("AWS environment not configured, skipping DynamoDB integration test")
	}

	store, err := New(awsAccessKey, awsSecretKey, region, tableName)
	if err != nil {
		t.Fatalf("Failed to create DynamoDB store: %v", err)
	}
	return store
}

// sessionPayload mirrors the serialized form of a datetime-bearing record.
type sessionPayload struct {
	ID      int64            `json:"id"`
	Token   string           `json:"token"`
	Created *strfmt.DateTime `json:"created"`
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	ct := strfmt.DateTime(time.Now().UTC().Truncate(time.Second))
	payload := sessionPayload{ID: 1, Token: "integration", Created: &ct}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	key := "kvmodels_test:Session:1"
	defer store.Delete(ctx, key)

	if err := store.Set(ctx, key, string(raw)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected stored record")
	}

	var fetched sessionPayload
	if err := json.Unmarshal([]byte(v), &fetched); err != nil {
		t.Fatalf("Failed to unmarshal stored record: %v", err)
	}
	if fetched.Token != payload.Token || fetched.ID != payload.ID {
		t.Fatalf("Round trip mismatch: %+v vs %+v", fetched, payload)
	}
	if !time.Time(*fetched.Created).Equal(time.Time(ct)) {
		t.Fatalf("Created timestamp drifted: %v vs %v", fetched.Created, ct)
	}
}

func TestKeysEnumeration(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	kv := map[string]string{
		"kvmodels_test:KeysEnum:1": `{"id": 1}`,
		"kvmodels_test:KeysEnum:2": `{"id": 2}`,
	}
	defer store.Delete(ctx, "kvmodels_test:KeysEnum:1", "kvmodels_test:KeysEnum:2")

	if err := store.MSet(ctx, kv); err != nil {
		t.Fatalf("MSet failed: %v", err)
	}

	keys, err := store.Keys(ctx, "kvmodels_test:KeysEnum:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %v", keys)
	}

	if _, err := store.Keys(ctx, "kvmodels_test:KeysEnum:?"); err == nil {
		t.Fatal("Expected error for non trailing-star pattern")
	}
}

func TestIncrCounter(t *testing.T) {
	ctx := context.Background()
	store := getTestStore(t)

	key := "max_id:kvmodels_test:IncrCounter"
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
		t.Fatalf("Expected strictly increasing counter, got %d then %d", first, second)
	}

	// The counter must read back through the plain Get path too.
	v, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get counter failed: %v (ok=%v)", err, ok)
	}
	if v == "" {
		t.Fatal("Expected decimal counter value")
	}
}
