/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package registry holds model schemas and the explicit model registry.
//
// A Schema is an ordered mapping from field name to field.Spec for one
// model type; the numeric id field is injected automatically. Schemas are
// registered against a Registry during startup:
//
//	reg := registry.New()
//	task := registry.MustSchema("Task",
//		registry.F("status", field.String(field.Default("in_work"), field.NotNull())),
//		registry.F("created", field.DateTime()),
//	)
//	if err := reg.Register(task); err != nil {
//		...
//	}
//
// The registry is enumerable and testable without relying on declaration
// order or package-level side effects.
package registry
