/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package kvmodels is a schema-driven data-mapping layer over a flat
key-value store. Models are described at runtime as ordered lists of
typed field specifications, instances are stored as JSON records under
prefixed keys, and a small query engine filters records with typed
predicates that can traverse reference fields.

Key Features:
  - Runtime model definition with typed, validated fields
  - Pluggable backends (in-memory, Redis, DynamoDB)
  - Monotonic per-model id allocation
  - Reference and reference-list fields resolved on read
  - Django-style filter operators with nested field paths
  - Lenient or strict handling of null violations

Basic Usage:

	store := memory.New()
	mgr, _ := kvmodels.New(ctx, store, kvmodels.WithPrefix("app"))

	mgr.Register("user",
		registry.F("name", field.String(field.NotNull())),
		registry.F("age", field.Number()),
	)

	alice, _ := mgr.Create(ctx, "user", kvmodels.Values{"name": "Alice", "age": 30})

	adults, _ := mgr.Query(ctx, "user", query.Filter("age", query.OpGte, 18))
	adults.OrderBy("-age")

Records live under "<prefix>:<model>:<id>"; per-model id counters live
under "max_id:<prefix>:<model>".

For more information, see the documentation at https://github.com/suparena/kvmodels
*/
package kvmodels
