/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ddb implements the kvstore contract on AWS DynamoDB.
//
// The layout is a single table with a string partition key K and the value
// under V. Record reads and writes map to GetItem/PutItem and the batch
// APIs; counters use UpdateItem ADD so id allocation stays atomic without
// the advisory lock.
//
// Key enumeration has no native equivalent in DynamoDB, so Keys runs a
// filtered Scan over the table. That is fine for admin tooling and modest
// datasets; for query-heavy workloads prefer the redis backend, whose
// SCAN/KEYS commands match the record layout directly.
package ddb
