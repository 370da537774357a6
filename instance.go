/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/field"
	"github.com/suparena/kvmodels/query"
	"github.com/suparena/kvmodels/registry"
)

// Values is a field name to value mapping used to populate or update
// instances.
type Values map[string]any

// Instance is one live model instance: a schema pointer plus its own
// backing value map. The map is the single source of truth for field
// values; all access goes through Get and Set, which enforce the schema's
// field names.
type Instance struct {
	schema *registry.Schema
	values map[string]any
}

var _ field.Instance = (*Instance)(nil)

func newInstance(schema *registry.Schema) *Instance {
	return &Instance{
		schema: schema,
		values: make(map[string]any, schema.Len()),
	}
}

// Model returns the instance's model name tag.
func (i *Instance) Model() string { return i.schema.Name() }

// Schema returns the instance's schema.
func (i *Instance) Schema() *registry.Schema { return i.schema }

// ID returns the assigned id. ok is false until the first successful
// save; the id never changes afterwards.
func (i *Instance) ID() (int64, bool) {
	v, ok := i.values[registry.IDField]
	if !ok || v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Get returns the current value of a named field. Unknown field names are
// a validation error; a declared but unset field reads as nil.
func (i *Instance) Get(name string) (any, error) {
	if !i.schema.Has(name) {
		return nil, errors.NewUnknownFieldError(i.Model(), name)
	}
	return i.values[name], nil
}

// Field implements field.Instance so reference chains can traverse this
// instance.
func (i *Instance) Field(name string) (any, error) {
	return i.Get(name)
}

// Set writes a field value through to the backing map. Unknown field
// names are a validation error.
func (i *Instance) Set(name string, v any) error {
	if !i.schema.Has(name) {
		return errors.NewUnknownFieldError(i.Model(), name)
	}
	i.values[name] = v
	return nil
}

// fill sets every entry of vals, rejecting unknown field names.
func (i *Instance) fill(vals Values) error {
	for name, v := range vals {
		if err := i.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether two instances carry the same model and the same
// field values. Numeric values compare by value, times by instant.
func (i *Instance) Equal(other *Instance) bool {
	if other == nil || i.Model() != other.Model() {
		return false
	}
	for _, name := range i.schema.FieldNames() {
		same, err := query.Match(i.values[name], query.OpExact, other.values[name])
		if err != nil || !same {
			return false
		}
	}
	return true
}
