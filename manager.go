/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/suparena/kvmodels/alloc"
	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/kvstore"
	"github.com/suparena/kvmodels/query"
	"github.com/suparena/kvmodels/registry"
)

// Manager is the entry point of the package. It binds a key-value store,
// a key prefix, a schema registry and an id allocator, and carries the
// lenient/strict decoding policy for every operation that goes through
// it.
type Manager struct {
	store    kvstore.Store
	prefix   string
	strict   bool
	logger   *slog.Logger
	registry *registry.Registry
	alloc    *alloc.Allocator
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefix sets the key namespace. Colons are stripped; an empty
// result falls back to DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) { m.prefix = prefix }
}

// WithStrict makes null violations and unresolvable filter paths hard
// errors instead of logged warnings.
func WithStrict() Option {
	return func(m *Manager) { m.strict = true }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRegistry attaches a pre-populated schema registry. Managers
// sharing a registry see the same models.
func WithRegistry(r *registry.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// New builds a Manager on top of a store. The allocator's lock flag for
// the prefix is reset as part of construction, so New must not race with
// writers using the same prefix on a store without atomic increments.
func New(ctx context.Context, store kvstore.Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.NewConfigurationError("store must not be nil")
	}
	m := &Manager{
		store:  store,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.prefix = sanitizePrefix(m.prefix, m.logger)
	if m.registry == nil {
		m.registry = registry.New()
	}
	a, err := alloc.New(ctx, store, m.prefix)
	if err != nil {
		return nil, err
	}
	m.alloc = a
	return m, nil
}

// Prefix returns the sanitized key namespace.
func (m *Manager) Prefix() string { return m.prefix }

// Registry returns the manager's schema registry.
func (m *Manager) Registry() *registry.Registry { return m.registry }

// Register declares a model from its field list and adds it to the
// registry. The id field is injected automatically.
func (m *Manager) Register(model string, fields ...registry.Field) (*registry.Schema, error) {
	schema, err := registry.NewSchema(model, fields...)
	if err != nil {
		return nil, err
	}
	if err := m.registry.Register(schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// NewInstance builds an unsaved instance of a registered model, populated
// from vals. Unknown field names are rejected.
func (m *Manager) NewInstance(model string, vals Values) (*Instance, error) {
	schema, err := m.registry.Get(model)
	if err != nil {
		return nil, err
	}
	inst := newInstance(schema)
	if err := inst.fill(vals); err != nil {
		return nil, err
	}
	return inst, nil
}

// Create builds and saves an instance in one step.
func (m *Manager) Create(ctx context.Context, model string, vals Values) (*Instance, error) {
	inst, err := m.NewInstance(model, vals)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Save validates the instance field by field, allocates an id on first
// save and writes the record. Validation runs before the id allocation
// and before any store write, so a rejected instance leaves no record
// behind. After the write the instance's values are replaced with their
// deserialized forms, the same shapes a Query would return.
func (m *Manager) Save(ctx context.Context, inst *Instance) error {
	schema := inst.schema
	model := schema.Name()

	record := make(map[string]any, schema.Len())
	for _, name := range schema.FieldNames() {
		if name == registry.IDField {
			continue
		}
		spec, _ := schema.Spec(name)
		cleaned, err := spec.Clean(inst.values[name])
		if err != nil {
			return errors.WrapValidation(err, model, name)
		}
		record[name] = cleaned
	}

	id, ok := inst.ID()
	if !ok {
		id, err := m.alloc.NextID(ctx, model)
		if err != nil {
			return fmt.Errorf("allocate %s id: %w", model, err)
		}
		inst.values[registry.IDField] = id
	}
	id, _ = inst.ID()
	record[registry.IDField] = id

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", model, err)
	}
	if err := m.store.Set(ctx, recordKey(m.prefix, model, id), string(body)); err != nil {
		return fmt.Errorf("write %s %d: %w", model, id, err)
	}

	// Write back the canonical in-memory forms so the instance reads the
	// same as a freshly queried one.
	opts := m.decodeOptions()
	for _, name := range schema.FieldNames() {
		spec, _ := schema.Spec(name)
		v, err := spec.Deserialize(ctx, record[name], opts)
		if err != nil {
			return errors.WrapValidation(err, model, name)
		}
		inst.values[name] = v
	}
	return nil
}

// Update applies vals to the targeted records and persists them in one
// bulk write. With no targets, every record of the model is updated.
// Only the updated fields are re-validated; the remaining fields keep
// their stored raw values untouched. Nothing is written until every
// target validates.
func (m *Manager) Update(ctx context.Context, model string, vals Values, targets ...*Instance) (*QuerySet, error) {
	schema, err := m.registry.Get(model)
	if err != nil {
		return nil, err
	}
	// Field names are checked up front so a bad update fails the same
	// way whether or not any record matches.
	for name := range vals {
		if !schema.Has(name) {
			return nil, errors.NewUnknownFieldError(model, name)
		}
	}
	if len(targets) == 0 {
		qs, err := m.Query(ctx, model)
		if err != nil {
			return nil, err
		}
		targets = qs.items
	}

	type pending struct {
		inst    *Instance
		cleaned map[string]any
	}
	kv := make(map[string]string, len(targets))
	updates := make([]pending, 0, len(targets))
	for _, inst := range targets {
		if inst.Model() != model {
			return nil, errors.NewValidationError(model, "", fmt.Sprintf("can not update a %s instance as %s", inst.Model(), model))
		}
		id, ok := inst.ID()
		if !ok {
			return nil, errors.NewValidationError(model, "", "can not update an unsaved instance")
		}
		key := recordKey(m.prefix, model, id)
		raw, ok, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s %d: %w", model, id, err)
		}
		if !ok {
			return nil, errors.NewValidationError(model, "", fmt.Sprintf("record %d does not exist", id))
		}
		record, err := decodeRecordJSON(raw)
		if err != nil {
			return nil, errors.NewValidationError(model, "", err.Error())
		}
		cleaned := make(map[string]any, len(vals))
		for name, v := range vals {
			spec, _ := schema.Spec(name)
			cv, err := spec.Clean(v)
			if err != nil {
				return nil, errors.WrapValidation(err, model, name)
			}
			record[name] = cv
			cleaned[name] = cv
		}
		body, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode %s record: %w", model, err)
		}
		kv[key] = string(body)
		updates = append(updates, pending{inst: inst, cleaned: cleaned})
	}

	if len(kv) > 0 {
		if err := m.store.MSet(ctx, kv); err != nil {
			return nil, fmt.Errorf("write %s records: %w", model, err)
		}
	}

	opts := m.decodeOptions()
	for _, u := range updates {
		for name, cv := range u.cleaned {
			spec, _ := schema.Spec(name)
			v, err := spec.Deserialize(ctx, cv, opts)
			if err != nil {
				return nil, errors.WrapValidation(err, model, name)
			}
			u.inst.values[name] = v
		}
	}
	return newQuerySet(schema, targets), nil
}

// UpdateWhere applies vals to every record matching the predicates and
// returns the updated instances.
func (m *Manager) UpdateWhere(ctx context.Context, model string, vals Values, preds ...query.Predicate) (*QuerySet, error) {
	qs, err := m.Query(ctx, model, preds...)
	if err != nil {
		return nil, err
	}
	return m.Update(ctx, model, vals, qs.items...)
}

// Get loads a single record by id.
func (m *Manager) Get(ctx context.Context, model string, id int64) (*Instance, error) {
	return m.load(ctx, model, id)
}

// Delete removes the given instances' records. With no targets, every
// record of the model is removed. Targets of another model or without an
// id are rejected before anything is deleted.
func (m *Manager) Delete(ctx context.Context, model string, targets ...*Instance) error {
	if _, err := m.registry.Get(model); err != nil {
		return err
	}

	var keys []string
	if len(targets) == 0 {
		all, err := m.store.Keys(ctx, recordPattern(m.prefix, model))
		if err != nil {
			return fmt.Errorf("scan %s records: %w", model, err)
		}
		keys = all
	} else {
		keys = make([]string, 0, len(targets))
		for _, inst := range targets {
			if inst.Model() != model {
				return errors.NewValidationError(model, "", fmt.Sprintf("can not delete a %s instance as %s", inst.Model(), model))
			}
			id, ok := inst.ID()
			if !ok {
				return errors.NewValidationError(model, "", "can not delete an unsaved instance")
			}
			keys = append(keys, recordKey(m.prefix, model, id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete %s records: %w", model, err)
	}
	return nil
}
