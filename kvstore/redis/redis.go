/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/kvstore"
)

// Store implements kvstore.Store on top of a Redis connection. Redis is
// the backend the record layout was designed for: record values are plain
// strings, key enumeration maps to SCAN MATCH, and Incr maps to INCR.
type Store struct {
	client  *goredis.Client
	useScan bool
}

// Option configures a Store.
type Option func(*Store)

// WithScan makes Keys use the SCAN command instead of KEYS. SCAN does not
// block the server on large keyspaces; KEYS is a single round trip.
func WithScan() Option {
	return func(s *Store) { s.useScan = true }
}

// New wraps an existing go-redis client.
func New(client *goredis.Client, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials a Redis server and verifies the connection with a PING.
// An unreachable or misconfigured server surfaces as a ConfigurationError
// once; the connection is not retried here.
func Connect(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("redis at %q unreachable: %v", addr, err))
	}
	return New(client, opts...), nil
}

var _ kvstore.Store = (*Store)(nil)
var _ kvstore.Incrementer = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", key, err)
	}
	return nil
}

func (s *Store) MGet(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis MGET: %w", err)
	}
	values := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("redis MGET: unexpected value type %T for key %q", v, keys[i])
		}
		values[i] = str
	}
	return values, nil
}

func (s *Store) MSet(ctx context.Context, kv map[string]string) error {
	if len(kv) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(kv)*2)
	for k, v := range kv {
		pairs = append(pairs, k, v)
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis MSET: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !s.useScan {
		keys, err := s.client.Keys(ctx, pattern).Result()
		if err != nil {
			return nil, fmt.Errorf("redis KEYS %q: %w", pattern, err)
		}
		return keys, nil
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis SCAN %q: %w", pattern, err)
	}
	return keys, nil
}

// Incr implements kvstore.Incrementer via the INCR command.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis INCR %q: %w", key, err)
	}
	return v, nil
}
