/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package query defines the structured filter predicate language.
//
// A Predicate names a field path, an operator and an operand. Paths may
// traverse reference fields segment by segment:
//
//	query.Eq("status", "ok")
//	query.Filter("created", query.OpGte, yesterday)
//	query.Filter("session__account__active", query.OpExact, true)
//
// Match implements the operator semantics over deserialized field values;
// datetime comparisons normalize both sides to UTC, and numeric
// comparisons ignore the int/float representation split.
package query
