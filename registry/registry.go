/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/field"
)

// IDField is the name of the primary-key field every schema carries.
const IDField = "id"

// Field pairs a name with its spec for schema declaration.
type Field struct {
	Name string
	Spec field.Spec
}

// F is a shorthand Field constructor for declarations.
func F(name string, spec field.Spec) Field {
	return Field{Name: name, Spec: spec}
}

// Schema is the ordered field contract of one model type. Schemas are
// immutable after construction; a numeric, non-nullable id field is
// always present as the first entry.
type Schema struct {
	name  string
	names []string
	specs map[string]field.Spec
}

// NewSchema builds a schema for the named model. The id field is injected
// automatically and must not be declared explicitly.
func NewSchema(model string, fields ...Field) (*Schema, error) {
	if model == "" {
		return nil, errors.Validationf("model name must not be empty")
	}
	s := &Schema{
		name:  model,
		names: make([]string, 0, len(fields)+1),
		specs: make(map[string]field.Spec, len(fields)+1),
	}
	s.names = append(s.names, IDField)
	s.specs[IDField] = field.ID()

	for _, f := range fields {
		if f.Name == "" || f.Spec == nil {
			return nil, errors.Validationf("model %s declares an incomplete field", model)
		}
		if _, exists := s.specs[f.Name]; exists {
			if f.Name == IDField {
				return nil, errors.Validationf("model %s must not redeclare the id field", model)
			}
			return nil, errors.Validationf("model %s declares field %s twice", model, f.Name)
		}
		s.names = append(s.names, f.Name)
		s.specs[f.Name] = f.Spec
	}
	return s, nil
}

// MustSchema is NewSchema for static declarations; it panics on invalid
// input.
func MustSchema(model string, fields ...Field) *Schema {
	s, err := NewSchema(model, fields...)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return s
}

// Name returns the model name tag.
func (s *Schema) Name() string { return s.name }

// Len returns the number of fields, id included.
func (s *Schema) Len() int { return len(s.names) }

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Spec returns the spec of a named field.
func (s *Schema) Spec(name string) (field.Spec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// Has reports whether the schema declares the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.specs[name]
	return ok
}

// Registry is an explicit, enumerable mapping from model name to schema.
// It replaces declaration-time side effects: models are registered once
// during startup and looked up by the engine when records are read back.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema. Registering the same model name twice is an
// error to prevent accidental overrides.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.name]; exists {
		return fmt.Errorf("model %q already registered", s.name)
	}
	r.schemas[s.name] = s
	return nil
}

// Get retrieves the schema registered for a model name. A miss is an
// UnknownModelError so callers can feed it into the unresolved-model
// policy.
func (r *Registry) Get(model string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[model]
	if !ok {
		return nil, errors.NewUnknownModelError(model)
	}
	return s, nil
}

// Models returns the registered model names, sorted.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
