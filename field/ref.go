/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package field

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/suparena/kvmodels/errors"
)

// Ref declares a single reference to another model. The stored value is
// the numeric id of the target record, never a structural copy.
func Ref(model string, opts ...Option) Spec {
	return &refSpec{newBase(KindRef, opts...), model}
}

type refSpec struct {
	base
	model string
}

func (s *refSpec) TargetModel() string { return s.model }

// instanceID extracts the id from an instance or numeric value on the
// serialization path.
func instanceID(v any) (int64, error) {
	if inst, ok := v.(Instance); ok {
		id, ok := inst.ID()
		if !ok {
			return 0, errors.Validationf("referenced %s instance has no id, save it first", inst.Model())
		}
		return id, nil
	}
	return asInt64(v)
}

func (s *refSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	return instanceID(v)
}

func (s *refSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	id, err := asInt64(raw)
	if err != nil {
		return nil, err
	}
	if opts.Resolver == nil {
		return id, nil
	}
	return opts.Resolver.ResolveOne(ctx, s.model, id)
}

// RefList declares a many-to-many reference list. The stored value is a
// JSON array of target record ids.
func RefList(model string, opts ...Option) Spec {
	return &refListSpec{newBase(KindRefList, opts...), model}
}

type refListSpec struct {
	base
	model string
}

func (s *refListSpec) TargetModel() string { return s.model }

// instanceIDs accepts a single instance, a slice of instances, a slice of
// numeric ids, or a mixed []any of either.
func instanceIDs(v any) ([]int64, error) {
	switch items := v.(type) {
	case Instance:
		id, err := instanceID(items)
		if err != nil {
			return nil, err
		}
		return []int64{id}, nil
	case []Instance:
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			id, err := instanceID(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []int64:
		return items, nil
	case []any:
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			id, err := instanceID(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		// Concrete typed slices, e.g. a slice of the caller's own
		// Instance implementation.
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return nil, errors.Validationf("can't get ids from %v (%T)", v, v)
		}
		ids := make([]int64, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			id, err := instanceID(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
}

func (s *refListSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	ids, err := instanceIDs(v)
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(ids)
	if err != nil {
		return nil, errors.Validationf("id list is not JSON-encodable: %v", err)
	}
	return string(buf), nil
}

func (s *refListSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	str, ok := raw.(string)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only string", raw, raw)
	}
	var ids []int64
	if err := json.Unmarshal([]byte(str), &ids); err != nil {
		return nil, errors.Validationf("%q is not a JSON id array: %v", str, err)
	}
	if opts.Resolver == nil {
		return ids, nil
	}
	return opts.Resolver.ResolveMany(ctx, s.model, ids)
}
