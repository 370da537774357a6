/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package field implements the typed contract for model attributes.
//
// A Spec validates a value, resolves its default, serializes it to the
// wire form stored inside a record (Clean) and parses it back
// (Deserialize). Specs are immutable and stateless: instances keep their
// values in their own backing map, so one Spec can safely serve every
// instance of a model.
//
// The kinds and their wire forms:
//
//	String    string
//	Number/ID int or float
//	Bool      0/1 with fixed Yes/No choices
//	Decimal   float on the wire, arbitrary precision on read
//	JSON      JSON-encoded string (Dict and List restrict the shape)
//	DateTime  "YYYY.MM.DD-HH:MM:SS+UTC", normalized to UTC
//	Date      "YYYY.MM.DD"
//	Ref       numeric id of the target record
//	RefList   JSON array of numeric ids
//
// Reference kinds resolve their stored ids back into live instances via
// the Resolver in DecodeOptions; a single Ref must match exactly one
// record.
//
// For every kind, Deserialize(Clean(v)) == v holds for values within the
// kind's validity constraints (times at second precision in UTC, dates at
// midnight UTC).
package field
