/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package field

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suparena/kvmodels/errors"
)

// Wire formats for temporal kinds. Times are always normalized to UTC and
// carry second precision.
const (
	dateTimeLayout = "2006.01.02-15:04:05"
	dateTimeSuffix = "+UTC"
	dateLayout     = "2006.01.02"
)

func choiceKeys(choices map[any]string) string {
	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, fmt.Sprint(k))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// asNumber normalizes any numeric representation to int64 or float64.
// Everything else, including bool, is rejected.
func asNumber(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return parseNumber(n.String())
	default:
		return nil, errors.Validationf("%v has type %T, allowed only int or float", v, v)
	}
}

// parseNumber parses a string into int64 or float64 by presence of a
// decimal point, matching the wire contract for numeric fields. The whole
// string must be numeric; trailing garbage is rejected.
func parseNumber(s string) (any, error) {
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Validationf("%q is not a number", s)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.Validationf("%q is not a number", s)
	}
	return i, nil
}

// asInt64 narrows a numeric wire value to an integer id or flag.
func asInt64(v any) (int64, error) {
	n, err := asNumber(v)
	if err != nil {
		return 0, err
	}
	i, ok := n.(int64)
	if !ok {
		return 0, errors.Validationf("%v is not an integer", v)
	}
	return i, nil
}

// String fields coerce any value to its string form on both sides of the
// wire.
func String(opts ...Option) Spec {
	return &stringSpec{newBase(KindString, opts...)}
}

type stringSpec struct{ base }

func (s *stringSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	return fmt.Sprint(v), nil
}

func (s *stringSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	return fmt.Sprint(raw), nil
}

// Number fields hold ints or floats; strings parse by presence of a
// decimal point, anything else is rejected even when falsy.
func Number(opts ...Option) Spec {
	return &numberSpec{newBase(KindNumber, opts...)}
}

type numberSpec struct{ base }

func (s *numberSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	return asNumber(v)
}

func (s *numberSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	if str, ok := raw.(string); ok {
		return parseNumber(str)
	}
	return asNumber(raw)
}

// ID is the primary-key field: a non-nullable number.
func ID() Spec {
	return &numberSpec{newBase(KindID, NotNull())}
}

// Bool fields serialize to 0/1 and carry the fixed Yes/No choices map.
func Bool(opts ...Option) Spec {
	opts = append(opts, Choices(map[any]string{true: "Yes", false: "No"}))
	return &boolSpec{newBase(KindBool, opts...)}
}

type boolSpec struct{ base }

func (s *boolSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only bool", v, v)
	}
	if b {
		return int64(1), nil
	}
	return int64(0), nil
}

func (s *boolSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	i, err := asInt64(raw)
	if err != nil {
		return nil, err
	}
	return i != 0, nil
}

// Decimal fields serialize as floats and deserialize to an
// arbitrary-precision decimal.Decimal.
func Decimal(opts ...Option) Spec {
	return &decimalSpec{newBase(KindDecimal, opts...)}
}

type decimalSpec struct{ base }

func (s *decimalSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f, nil
	}
	n, err := asNumber(v)
	if err != nil {
		return nil, err
	}
	if i, ok := n.(int64); ok {
		return float64(i), nil
	}
	return n, nil
}

func (s *decimalSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	switch n := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, errors.Validationf("%q is not a decimal", n.String())
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return nil, errors.Validationf("%q is not a decimal", n)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case decimal.Decimal:
		return n, nil
	default:
		return nil, errors.Validationf("%v has type %T, can not be deserialized as decimal", raw, raw)
	}
}

// jsonKind restricts the shapes a JSON field accepts.
type jsonKind int

const (
	jsonDict jsonKind = 1 << iota
	jsonList
)

// JSON fields hold a dict or list, serialized as a JSON-encoded string.
func JSON(opts ...Option) Spec {
	return &jsonSpec{newBase(KindJSON, opts...), jsonDict | jsonList}
}

// Dict fields hold a JSON object only.
func Dict(opts ...Option) Spec {
	return &jsonSpec{newBase(KindDict, opts...), jsonDict}
}

// List fields hold a JSON array only.
func List(opts ...Option) Spec {
	return &jsonSpec{newBase(KindList, opts...), jsonList}
}

type jsonSpec struct {
	base
	allowed jsonKind
}

func (s *jsonSpec) checkShape(v any) error {
	switch v.(type) {
	case map[string]any:
		if s.allowed&jsonDict == 0 {
			return errors.Validationf("%s field does not allow objects", s.kind)
		}
	case []any:
		if s.allowed&jsonList == 0 {
			return errors.Validationf("%s field does not allow arrays", s.kind)
		}
	default:
		return errors.Validationf("%v has type %T, allowed only dict or list", v, v)
	}
	return nil
}

func (s *jsonSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	if err := s.checkShape(v); err != nil {
		return nil, err
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Validationf("value is not JSON-encodable: %v", err)
	}
	return string(buf), nil
}

func (s *jsonSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	str, ok := raw.(string)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only string", raw, raw)
	}
	var v any
	if err := json.Unmarshal([]byte(str), &v); err != nil {
		return nil, errors.Validationf("%q is not valid JSON: %v", str, err)
	}
	if err := s.checkShape(v); err != nil {
		return nil, err
	}
	return v, nil
}

// DateTime fields serialize as "YYYY.MM.DD-HH:MM:SS+UTC", always
// normalized to UTC with second precision.
func DateTime(opts ...Option) Spec {
	return &dateTimeSpec{newBase(KindDateTime, opts...)}
}

type dateTimeSpec struct{ base }

func (s *dateTimeSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only time.Time", v, v)
	}
	return t.UTC().Format(dateTimeLayout) + dateTimeSuffix, nil
}

func (s *dateTimeSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	str, ok := raw.(string)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only string", raw, raw)
	}
	trimmed, ok := strings.CutSuffix(str, dateTimeSuffix)
	if !ok {
		return nil, errors.Validationf("%q is not a %q datetime", str, dateTimeLayout+dateTimeSuffix)
	}
	t, err := time.Parse(dateTimeLayout, trimmed)
	if err != nil {
		return nil, errors.Validationf("%q is not a %q datetime", str, dateTimeLayout+dateTimeSuffix)
	}
	return t.UTC(), nil
}

// Date fields serialize as "YYYY.MM.DD" and deserialize to a midnight-UTC
// time.Time.
func Date(opts ...Option) Spec {
	return &dateSpec{newBase(KindDate, opts...)}
}

type dateSpec struct{ base }

func (s *dateSpec) Clean(v any) (any, error) {
	v, err := s.resolve(v)
	if err != nil || v == nil {
		return nil, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only time.Time", v, v)
	}
	return t.UTC().Format(dateLayout), nil
}

func (s *dateSpec) Deserialize(ctx context.Context, raw any, opts DecodeOptions) (any, error) {
	if done, v, err := s.checkNull(raw, opts); done {
		return v, err
	}
	str, ok := raw.(string)
	if !ok {
		return nil, errors.Validationf("%v has type %T, allowed only string", raw, raw)
	}
	t, err := time.Parse(dateLayout, str)
	if err != nil {
		return nil, errors.Validationf("%q is not a %q date", str, dateLayout)
	}
	return t.UTC(), nil
}
