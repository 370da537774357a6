/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"context"
	"path"
	"sort"
	"strconv"
	"sync"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/kvstore"
)

// Store is an in-process, mutex-guarded implementation of kvstore.Store.
// It is the reference backend for tests and small tools; it also
// implements kvstore.Incrementer.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

var _ kvstore.Store = (*Store)(nil)
var _ kvstore.Incrementer = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *Store) MGet(ctx context.Context, keys []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = s.data[k]
	}
	return values, nil
}

func (s *Store) MSet(ctx context.Context, kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range kv {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Keys returns the keys matching a glob pattern, sorted for deterministic
// enumeration.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.data {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, errors.NewConfigurationError("bad key pattern " + strconv.Quote(pattern))
		}
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Incr implements kvstore.Incrementer.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(0)
	if v, ok := s.data[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.Validationf("counter %q holds non-integer value %q", key, v)
		}
		n = parsed
	}
	n++
	s.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// Len reports the number of stored keys. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
