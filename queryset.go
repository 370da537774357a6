/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"sort"
	"strings"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/query"
	"github.com/suparena/kvmodels/registry"
)

// QuerySet holds the materialized result of a Query call. It is a plain
// in-memory collection; re-running the query is the only way to refresh
// it against the store.
type QuerySet struct {
	schema *registry.Schema
	items  []*Instance
}

func newQuerySet(schema *registry.Schema, items []*Instance) *QuerySet {
	return &QuerySet{schema: schema, items: items}
}

// Model returns the model name the set was queried from.
func (qs *QuerySet) Model() string { return qs.schema.Name() }

// Count returns the number of matched instances.
func (qs *QuerySet) Count() int { return len(qs.items) }

// All returns the matched instances. The slice is a copy; the instances
// are shared.
func (qs *QuerySet) All() []*Instance {
	out := make([]*Instance, len(qs.items))
	copy(out, qs.items)
	return out
}

// First returns the first instance in the set, or nil when it is empty.
func (qs *QuerySet) First() *Instance {
	if len(qs.items) == 0 {
		return nil
	}
	return qs.items[0]
}

// At returns the instance at index i.
func (qs *QuerySet) At(i int) (*Instance, error) {
	if i < 0 || i >= len(qs.items) {
		return nil, errors.Validationf("index %d out of range for result of %d", i, len(qs.items))
	}
	return qs.items[i], nil
}

// OrderBy sorts the set by the named fields, in order of significance. A
// leading '-' reverses the direction for that field. Nil values sort
// before everything else ascending, after everything else descending.
// The sort is stable and in place; the receiver is returned for
// chaining.
func (qs *QuerySet) OrderBy(fields ...string) (*QuerySet, error) {
	type sortKey struct {
		name string
		desc bool
	}
	keys := make([]sortKey, 0, len(fields))
	for _, f := range fields {
		name, desc := strings.CutPrefix(f, "-")
		if !qs.schema.Has(name) {
			return nil, errors.NewUnknownFieldError(qs.Model(), name)
		}
		keys = append(keys, sortKey{name: name, desc: desc})
	}

	// Sort a copy so a comparison failure leaves the set untouched.
	items := make([]*Instance, len(qs.items))
	copy(items, qs.items)

	var sortErr error
	sort.SliceStable(items, func(a, b int) bool {
		for _, k := range keys {
			av := items[a].values[k.name]
			bv := items[b].values[k.name]
			c, err := orderValues(av, bv)
			if err != nil && sortErr == nil {
				sortErr = errors.WrapValidation(err, qs.Model(), k.name)
			}
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	qs.items = items
	return qs, nil
}

// orderValues compares two field values for sorting, treating nil as
// smaller than any concrete value.
func orderValues(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	return query.Compare(a, b)
}

// Values projects the set onto the named fields, one map per instance.
// With no names, every schema field is included.
func (qs *QuerySet) Values(fields ...string) ([]Values, error) {
	if len(fields) == 0 {
		fields = qs.schema.FieldNames()
	} else {
		for _, f := range fields {
			if !qs.schema.Has(f) {
				return nil, errors.NewUnknownFieldError(qs.Model(), f)
			}
		}
	}
	out := make([]Values, 0, len(qs.items))
	for _, inst := range qs.items {
		row := make(Values, len(fields))
		for _, f := range fields {
			row[f] = inst.values[f]
		}
		out = append(out, row)
	}
	return out, nil
}

// AsMap indexes the set by id. Instances without an id are skipped.
func (qs *QuerySet) AsMap() map[int64]*Instance {
	out := make(map[int64]*Instance, len(qs.items))
	for _, inst := range qs.items {
		if id, ok := inst.ID(); ok {
			out[id] = inst
		}
	}
	return out
}
