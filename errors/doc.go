/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package errors provides semantic error types for kvmodels.
//
// The package defines sentinel errors (ErrValidation, ErrConfiguration,
// ErrUnknownModel, ErrUnknownField) together with structured error types
// that carry model and field context. All types implement Is so that
// errors.Is works against the sentinels regardless of wrapping:
//
//	if errors.IsValidation(err) {
//		// value violated a field or filter contract
//	}
//
// Field-level errors raised while saving an instance are re-wrapped with
// the model and field name via WrapValidation before reaching the caller.
package errors
