/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package alloc

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/suparena/kvmodels/kvstore"
)

// Key layouts shared with earlier deployments of the record format.
const (
	counterPrefix = "max_id"
	lockPrefix    = "__lock__"
)

// CounterKey returns the counter key for a model under a prefix.
func CounterKey(prefix, model string) string {
	return fmt.Sprintf("%s:%s:%s", counterPrefix, prefix, model)
}

// LockKey returns the shared lock key for a prefix.
func LockKey(prefix string) string {
	return fmt.Sprintf("%s:%s", lockPrefix, prefix)
}

// Allocator issues strictly increasing, collision-free ids per model
// name. The critical section is guarded by a process-local mutex instead
// of the legacy spin on the advisory lock flag; when the store exposes an
// atomic increment, the counter update collapses to a single Incr call.
type Allocator struct {
	store  kvstore.Store
	prefix string
	mu     sync.Mutex
}

// New creates an allocator over store. It resets the advisory lock flag
// so that deployments still running the legacy spin protocol observe a
// released lock.
func New(ctx context.Context, store kvstore.Store, prefix string) (*Allocator, error) {
	a := &Allocator{store: store, prefix: prefix}
	if err := store.Set(ctx, LockKey(prefix), "0"); err != nil {
		return nil, fmt.Errorf("initializing lock flag: %w", err)
	}
	return a, nil
}

// NextID allocates the next id for model. Ids start at 1 and increase by
// exactly one per call; the counter is created lazily on first use.
func (a *Allocator) NextID(ctx context.Context, model string) (int64, error) {
	key := CounterKey(a.prefix, model)

	if inc, ok := a.store.(kvstore.Incrementer); ok {
		return inc.Incr(ctx, key)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// The flag keeps the read-modify-write visible to legacy writers that
	// still honor the advisory lock; local mutual exclusion comes from
	// the mutex above.
	lockKey := LockKey(a.prefix)
	if err := a.store.Set(ctx, lockKey, "1"); err != nil {
		return 0, fmt.Errorf("acquiring lock flag: %w", err)
	}
	defer func() {
		_ = a.store.Set(ctx, lockKey, "0")
	}()

	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("reading counter %q: %w", key, err)
	}
	var current int64
	if ok && raw != "" {
		current, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("counter %q holds non-integer value %q", key, raw)
		}
	}
	next := current + 1
	if err := a.store.Set(ctx, key, strconv.FormatInt(next, 10)); err != nil {
		return 0, fmt.Errorf("writing counter %q: %w", key, err)
	}
	return next, nil
}

// MaxID reads the highest id issued so far for model, zero when no id has
// been issued.
func (a *Allocator) MaxID(ctx context.Context, model string) (int64, error) {
	raw, ok, err := a.store.Get(ctx, CounterKey(a.prefix, model))
	if err != nil || !ok || raw == "" {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
