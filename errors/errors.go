/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrValidation is returned when a value violates a field or filter contract
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when the store connection configuration is unusable
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnknownModel is returned when a record's model tag has no registered schema
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnknownField is returned when a field name is not part of a model's schema
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError represents a field, filter or relation contract violation.
// Model and Field carry the context added when a field-level error is
// re-wrapped on the save path; either may be empty.
type ValidationError struct {
	Model   string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Model != "" && e.Field != "":
		return fmt.Sprintf("%s (%s -> %s)", e.Message, e.Model, e.Field)
	case e.Field != "":
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError represents an unusable store connection configuration.
// It is surfaced once and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownModelError represents a record tagged with an unregistered model name.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model %q not found in registered models", e.Model)
}

func (e *UnknownModelError) Is(target error) bool {
	return target == ErrUnknownModel
}

// UnknownFieldError represents access to a field name outside a model's schema.
type UnknownFieldError struct {
	Model string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("model %q has no field %q", e.Model, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField || target == ErrValidation
}

// Helper functions for creating errors

// NewValidationError creates a new ValidationError
func NewValidationError(model, field, message string) error {
	return &ValidationError{Model: model, Field: field, Message: message}
}

// Validationf creates a ValidationError from a format string
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WrapValidation adds model and field context to a validation error raised
// during save. Non-validation errors are returned unchanged.
func WrapValidation(err error, model, field string) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Model: model, Field: field, Message: ve.Message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewUnknownModelError creates a new UnknownModelError
func NewUnknownModelError(model string) error {
	return &UnknownModelError{Model: model}
}

// NewUnknownFieldError creates a new UnknownFieldError
func NewUnknownFieldError(model, field string) error {
	return &UnknownFieldError{Model: model, Field: field}
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUnknownModel checks if an error is an unknown model error
func IsUnknownModel(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}

// IsUnknownField checks if an error is an unknown field error
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}
