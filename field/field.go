/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package field

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/suparena/kvmodels/errors"
)

// Kind identifies a field's wire contract.
type Kind string

const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindID       Kind = "id"
	KindBool     Kind = "bool"
	KindDecimal  Kind = "decimal"
	KindJSON     Kind = "json"
	KindDict     Kind = "dict"
	KindList     Kind = "list"
	KindDateTime Kind = "datetime"
	KindDate     Kind = "date"
	KindRef      Kind = "ref"
	KindRefList  Kind = "reflist"
)

// Instance is the view of a model instance that field specs need: enough
// to extract a reference id on the way in and to traverse resolved
// references on the way out. The concrete type lives in the root package.
type Instance interface {
	// Model returns the model name tag.
	Model() string
	// ID returns the assigned id; ok is false before the first save.
	ID() (int64, bool)
	// Field returns the current value of a named field.
	Field(name string) (any, error)
}

// Resolver resolves stored reference ids back into instances by issuing
// sub-queries against the manager that owns the schema.
type Resolver interface {
	// ResolveOne returns the single instance of model with the given id.
	// Zero or multiple matches are a validation error.
	ResolveOne(ctx context.Context, model string, id int64) (Instance, error)
	// ResolveMany returns the instances of model whose ids are in ids.
	// Result order is not guaranteed to match the input.
	ResolveMany(ctx context.Context, model string, ids []int64) ([]Instance, error)
}

// DecodeOptions carries the deserialization context shared by all specs.
type DecodeOptions struct {
	// Lenient makes null-contract violations log-and-continue instead of
	// failing the whole read.
	Lenient  bool
	Resolver Resolver
	Logger   *slog.Logger
}

func (o DecodeOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Spec is the typed contract for a single attribute: validation, default
// resolution, serialization (Clean) and deserialization, independent of
// any model.
type Spec interface {
	Kind() Kind
	Nullable() bool

	// DefaultValue resolves the spec's default, invoking a generator
	// default each time. ok is false when no default is declared.
	DefaultValue() (v any, ok bool)

	// Clean validates v and returns its serializable wire form.
	Clean(v any) (any, error)

	// Deserialize converts a wire value back to its typed form, resolving
	// references through opts.Resolver.
	Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error)
}

// RefSpec is implemented by reference-kinded specs; it exposes the target
// model so schemas and tooling can follow relations.
type RefSpec interface {
	Spec
	TargetModel() string
}

// Option configures a spec at construction time.
type Option func(*base)

// Default sets a static default value.
func Default(v any) Option {
	return func(b *base) { b.def = v }
}

// DefaultFunc sets a zero-argument generator default, invoked once per
// resolution.
func DefaultFunc(fn func() any) Option {
	return func(b *base) { b.defFn = fn }
}

// Choices restricts allowed values to the keys of c; values are labels.
func Choices(c map[any]string) Option {
	return func(b *base) { b.choices = c }
}

// NotNull disallows null after default resolution.
func NotNull() Option {
	return func(b *base) { b.nullable = false }
}

// base carries the attributes shared by every field kind: default, choices
// and null policy. Specs are stateless; per-instance values live in the
// instance's backing map.
type base struct {
	kind     Kind
	def      any
	defFn    func() any
	choices  map[any]string
	nullable bool
}

func newBase(kind Kind, opts ...Option) base {
	b := base{kind: kind, nullable: true}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Nullable() bool { return b.nullable }

func (b *base) DefaultValue() (any, bool) {
	if b.defFn != nil {
		return b.defFn(), true
	}
	if b.def != nil {
		return b.def, true
	}
	return nil, false
}

// resolve applies default resolution and the null and choices contracts.
// Every Clean implementation funnels through here first.
func (b *base) resolve(v any) (any, error) {
	if v == nil {
		v, _ = b.DefaultValue()
	}
	if v == nil {
		if !b.nullable {
			return nil, errors.Validationf("null is not allowed")
		}
		return nil, nil
	}
	if len(b.choices) > 0 {
		if t := reflect.TypeOf(v); t != nil && !t.Comparable() {
			return nil, errors.Validationf("%v is not allowed, allowed values: %s", v, choiceKeys(b.choices))
		}
		if _, ok := b.choices[v]; !ok {
			return nil, errors.Validationf("%v is not allowed, allowed values: %s", v, choiceKeys(b.choices))
		}
	}
	return v, nil
}

// checkNull enforces the read-side null contract. It returns done == true
// when raw is null: the caller should return the accompanying value.
func (b *base) checkNull(raw any, opts DecodeOptions) (done bool, _ any, _ error) {
	if raw != nil {
		return false, nil, nil
	}
	if !b.nullable {
		if !opts.Lenient {
			return true, nil, errors.Validationf("null can not be deserialized as %s", b.kind)
		}
		opts.logger().Warn("null value for non-nullable field, ignoring", "kind", string(b.kind))
	}
	return true, nil, nil
}
