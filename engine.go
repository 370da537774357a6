/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/field"
	"github.com/suparena/kvmodels/query"
	"github.com/suparena/kvmodels/registry"
)

// Query scans every stored record of the model and returns the instances
// matching all predicates. Predicates are evaluated per record in schema
// field order, so a record is rejected as soon as one of its fields fails
// a condition and the remaining fields are never deserialized.
func (m *Manager) Query(ctx context.Context, model string, preds ...query.Predicate) (*QuerySet, error) {
	schema, err := m.registry.Get(model)
	if err != nil {
		return nil, err
	}
	if err := validatePredicates(schema, preds); err != nil {
		return nil, err
	}

	keys, err := m.store.Keys(ctx, recordPattern(m.prefix, model))
	if err != nil {
		return nil, fmt.Errorf("scan %s records: %w", model, err)
	}
	records := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, _, err := parseRecordKey(k); err != nil {
			m.logger.Warn("skipping malformed record key", "key", k)
			continue
		}
		records = append(records, k)
	}

	var items []*Instance
	if len(records) > 0 {
		raws, err := m.store.MGet(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("load %s records: %w", model, err)
		}
		for i, raw := range raws {
			if raw == "" {
				continue
			}
			inst, ok, err := m.evalRecord(ctx, schema, raw, preds)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", records[i], err)
			}
			if ok {
				items = append(items, inst)
			}
		}
	}
	return newQuerySet(schema, items), nil
}

// validatePredicates rejects unknown operators and unknown top-level
// fields before any record is read.
func validatePredicates(schema *registry.Schema, preds []query.Predicate) error {
	for _, p := range preds {
		if _, err := query.ParseOp(string(p.Op)); err != nil {
			return err
		}
		if !schema.Has(p.Field()) {
			return errors.NewUnknownFieldError(schema.Name(), p.Field())
		}
	}
	return nil
}

// evalRecord deserializes one raw record against the schema, applying the
// predicates field by field. ok is false when a predicate rejected the
// record; in that case the returned instance is partial and must be
// discarded.
func (m *Manager) evalRecord(ctx context.Context, schema *registry.Schema, raw string, preds []query.Predicate) (*Instance, bool, error) {
	record, err := decodeRecordJSON(raw)
	if err != nil {
		return nil, false, errors.NewValidationError(schema.Name(), "", err.Error())
	}

	opts := m.decodeOptions()
	inst := newInstance(schema)
	for _, name := range schema.FieldNames() {
		spec, _ := schema.Spec(name)
		v, err := spec.Deserialize(ctx, record[name], opts)
		if err != nil {
			// References into a model this registry does not know are
			// opaque. Lenient managers skip the whole record.
			if errors.IsUnknownModel(err) && !m.strict {
				m.logger.Warn("skipping record with unresolvable reference",
					"model", schema.Name(), "field", name, "err", err)
				return inst, false, nil
			}
			return nil, false, errors.WrapValidation(err, schema.Name(), name)
		}
		inst.values[name] = v
		for _, p := range preds {
			if p.Field() != name {
				continue
			}
			ok, err := m.evalPredicate(ctx, v, p)
			if err != nil {
				return nil, false, errors.WrapValidation(err, schema.Name(), name)
			}
			if !ok {
				return inst, false, nil
			}
		}
	}
	return inst, true, nil
}

// evalPredicate walks the predicate's nested path through reference
// instances and matches the leaf value. A nil anywhere along the path
// makes the predicate false, except when the operator itself tests for
// null.
func (m *Manager) evalPredicate(ctx context.Context, value any, p query.Predicate) (bool, error) {
	for _, seg := range p.Rest() {
		if value == nil {
			break
		}
		inst, ok := value.(field.Instance)
		if !ok {
			return false, errors.Validationf("%s is not traversable through %q", p.Field(), seg)
		}
		next, err := inst.Field(seg)
		if err != nil {
			return false, err
		}
		value = next
	}
	if value == nil && p.Op != query.OpExact && p.Op != query.OpIsNull {
		return false, nil
	}
	return query.Match(value, p.Op, p.Operand)
}

// decodeRecordJSON parses a stored record body. Numbers are kept as
// json.Number so integer ids survive without a float round trip.
func decodeRecordJSON(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("malformed record body: %w", err)
	}
	return record, nil
}

func (m *Manager) decodeOptions() field.DecodeOptions {
	return field.DecodeOptions{
		Lenient:  !m.strict,
		Resolver: &managerResolver{m: m},
		Logger:   m.logger,
	}
}

// managerResolver lets reference fields load their targets back through
// the manager during deserialization.
type managerResolver struct {
	m *Manager
}

var _ field.Resolver = (*managerResolver)(nil)

func (r *managerResolver) ResolveOne(ctx context.Context, model string, id int64) (field.Instance, error) {
	inst, err := r.m.load(ctx, model, id)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *managerResolver) ResolveMany(ctx context.Context, model string, ids []int64) ([]field.Instance, error) {
	out := make([]field.Instance, 0, len(ids))
	for _, id := range ids {
		inst, err := r.m.load(ctx, model, id)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// load fetches and fully deserializes a single record by id. A missing
// record is a validation error so dangling references surface instead of
// reading as empty instances.
func (m *Manager) load(ctx context.Context, model string, id int64) (*Instance, error) {
	schema, err := m.registry.Get(model)
	if err != nil {
		return nil, err
	}
	raw, ok, err := m.store.Get(ctx, recordKey(m.prefix, model, id))
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", model, id, err)
	}
	if !ok {
		return nil, errors.NewValidationError(model, "", fmt.Sprintf("referenced record %d does not exist", id))
	}
	inst, _, err := m.evalRecord(ctx, schema, raw, nil)
	return inst, err
}
