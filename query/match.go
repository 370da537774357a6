/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suparena/kvmodels/errors"
)

// Match evaluates one operator against a deserialized field value and a
// filter operand. Unknown operators fail with a validation error.
func Match(value any, op Op, operand any) (bool, error) {
	switch op {
	case OpExact:
		return equal(value, operand), nil
	case OpIExact:
		a, b, err := stringPair(value, operand)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(a, b), nil
	case OpContains, OpIn:
		return contained(value, operand)
	case OpGt, OpGte, OpLt, OpLte:
		c, err := Compare(value, operand)
		if err != nil {
			return false, err
		}
		switch op {
		case OpGt:
			return c > 0, nil
		case OpGte:
			return c >= 0, nil
		case OpLt:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case OpStartswith:
		a, b, err := stringPair(value, operand)
		if err != nil {
			return false, err
		}
		return strings.HasPrefix(a, b), nil
	case OpEndswith:
		a, b, err := stringPair(value, operand)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(a, b), nil
	case OpIStartswith:
		a, b, err := stringPair(value, operand)
		if err != nil {
			return false, err
		}
		return strings.HasPrefix(strings.ToLower(a), strings.ToLower(b)), nil
	case OpIEndswith:
		a, b, err := stringPair(value, operand)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(strings.ToLower(a), strings.ToLower(b)), nil
	case OpRange:
		return inRange(value, operand)
	case OpIsNull:
		want, ok := operand.(bool)
		if !ok {
			return false, errors.Validationf("isnull operand must be a bool, got %T", operand)
		}
		return (value == nil) == want, nil
	default:
		return false, errors.Validationf("filter %s not supported", op)
	}
}

// asFloat widens any numeric representation to float64 for comparison.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// equal compares across the types a deserialized field can hold. Numbers
// compare numerically regardless of int/float representation; times are
// normalized to UTC first.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := asTime(a); ok {
		bt, ok := asTime(b)
		return ok && at.UTC().Equal(bt.UTC())
	}
	if ad, ok := a.(decimal.Decimal); ok {
		if bd, ok := b.(decimal.Decimal); ok {
			return ad.Equal(bd)
		}
	}
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two values: numbers numerically, times chronologically in
// UTC, strings lexicographically. Mismatched or unordered types fail.
func Compare(a, b any) (int, error) {
	if at, ok := asTime(a); ok {
		bt, ok := asTime(b)
		if !ok {
			return 0, errors.Validationf("can not compare %T with %T", a, b)
		}
		return at.UTC().Compare(bt.UTC()), nil
	}
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		if !ok {
			return 0, errors.Validationf("can not compare %T with %T", a, b)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, errors.Validationf("can not compare %T with %T", a, b)
		}
		return strings.Compare(as, bs), nil
	}
	return 0, errors.Validationf("values of type %T are not ordered", a)
}

func stringPair(a, b any) (string, string, error) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return "", "", errors.Validationf("string filter needs string value and operand, got %T and %T", a, b)
	}
	return as, bs, nil
}

// contained reports whether value occurs in operand: substring membership
// for strings, element membership for slices.
func contained(value, operand any) (bool, error) {
	if s, ok := operand.(string); ok {
		vs, ok := value.(string)
		if !ok {
			return false, errors.Validationf("can not search for %T inside a string", value)
		}
		return strings.Contains(s, vs), nil
	}
	rv := reflect.ValueOf(operand)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false, errors.Validationf("operand of type %T is not a container", operand)
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(value, rv.Index(i).Interface()) {
			return true, nil
		}
	}
	return false, nil
}

// inRange implements the range operator. An integer operand n means
// membership of an integer value in [0, n); a two-element operand means an
// inclusive numeric span.
func inRange(value, operand any) (bool, error) {
	vf, ok := asFloat(value)
	if !ok {
		return false, errors.Validationf("range needs a numeric value, got %T", value)
	}

	rv := reflect.ValueOf(operand)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		if rv.Len() != 2 {
			return false, errors.Validationf("range span needs exactly two bounds, got %d", rv.Len())
		}
		lo, lok := asFloat(rv.Index(0).Interface())
		hi, hok := asFloat(rv.Index(1).Interface())
		if !lok || !hok {
			return false, errors.Validationf("range bounds must be numeric")
		}
		return lo <= vf && vf <= hi, nil
	}

	n, ok := asFloat(operand)
	if !ok {
		return false, errors.Validationf("range operand must be numeric or a two-element span, got %T", operand)
	}
	// Integer membership in [0, n), matching range() semantics.
	if vf != float64(int64(vf)) {
		return false, nil
	}
	return 0 <= vf && vf < n, nil
}
