/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"context"
	"sync"
	"testing"
)

func TestBasicOperations(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Set(ctx, "app:Task:1", `{"id": 1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "app:Task:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != `{"id": 1}` {
		t.Fatalf("Expected stored value, got %q (ok=%v)", v, ok)
	}

	_, ok, err = s.Get(ctx, "app:Task:2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("Expected miss for absent key")
	}

	if err := s.Delete(ctx, "app:Task:1", "app:Task:2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Expected empty store, have %d keys", s.Len())
	}
}

func TestBulkOperations(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.MSet(ctx, map[string]string{
		"app:Task:1": "a",
		"app:Task:2": "b",
	})
	if err != nil {
		t.Fatalf("MSet failed: %v", err)
	}

	values, err := s.MGet(ctx, []string{"app:Task:1", "app:Task:3", "app:Task:2"})
	if err != nil {
		t.Fatalf("MGet failed: %v", err)
	}
	expected := []string{"a", "", "b"}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("MGet[%d]: expected %q, got %q", i, expected[i], v)
		}
	}
}

func TestKeysPattern(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.Set(ctx, "app:Task:1", "a")
	_ = s.Set(ctx, "app:Task:2", "b")
	_ = s.Set(ctx, "app:Session:1", "c")
	_ = s.Set(ctx, "max_id:app:Task", "2")

	keys, err := s.Keys(ctx, "app:Task:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "app:Task:1" || keys[1] != "app:Task:2" {
		t.Fatalf("Expected [app:Task:1 app:Task:2], got %v", keys)
	}

	keys, err = s.Keys(ctx, "app:Ghost:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("Expected no keys, got %v", keys)
	}
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	s := New()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "max_id:app:Task")
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("Expected %d, got %d", want, got)
		}
	}

	_ = s.Set(ctx, "max_id:app:Bad", "not-a-number")
	if _, err := s.Incr(ctx, "max_id:app:Bad"); err == nil {
		t.Fatal("Expected error incrementing non-integer value")
	}
}

func TestIncrConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const n = 100
	var wg sync.WaitGroup
	seen := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Incr(ctx, "max_id:app:Task")
			if err != nil {
				t.Error(err)
				return
			}
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for v := range seen {
		if unique[v] {
			t.Fatalf("Duplicate id %d issued", v)
		}
		unique[v] = true
	}
	if len(unique) != n {
		t.Fatalf("Expected %d distinct ids, got %d", n, len(unique))
	}
}
