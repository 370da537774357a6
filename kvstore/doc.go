/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package kvstore defines the key-value store contract used by kvmodels
// and hosts its backend implementations.
//
// Backends:
//   - kvstore/memory: mutex-guarded in-process map, the default test backend
//   - kvstore/redis: Redis via github.com/redis/go-redis
//   - kvstore/ddb: AWS DynamoDB over a single-table key/value layout
//
// Backends that expose an atomic increment (all three above) additionally
// implement Incrementer, which the id allocator prefers over the advisory
// lock protocol.
package kvstore
