/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package field

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kverrors "github.com/suparena/kvmodels/errors"
)

// fakeInstance implements Instance for reference tests.
type fakeInstance struct {
	model  string
	id     int64
	hasID  bool
	fields map[string]any
}

func (f *fakeInstance) Model() string { return f.model }

func (f *fakeInstance) ID() (int64, bool) { return f.id, f.hasID }

func (f *fakeInstance) Field(name string) (any, error) {
	v, ok := f.fields[name]
	if !ok {
		return nil, kverrors.NewUnknownFieldError(f.model, name)
	}
	return v, nil
}

// fakeResolver resolves from a fixed id -> instance table.
type fakeResolver struct {
	instances map[int64]*fakeInstance
}

func (r *fakeResolver) ResolveOne(ctx context.Context, model string, id int64) (Instance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, kverrors.Validationf("found 0 %s with id %d, expected exactly one", model, id)
	}
	return inst, nil
}

func (r *fakeResolver) ResolveMany(ctx context.Context, model string, ids []int64) ([]Instance, error) {
	var out []Instance
	for _, id := range ids {
		if inst, ok := r.instances[id]; ok {
			out = append(out, inst)
		}
	}
	return out, nil
}

func roundTrip(t *testing.T, spec Spec, v any) any {
	t.Helper()
	wire, err := spec.Clean(v)
	require.NoError(t, err)
	got, err := spec.Deserialize(context.Background(), wire, DecodeOptions{})
	require.NoError(t, err)
	return got
}

func TestStringRoundTrip(t *testing.T) {
	spec := String()
	assert.Equal(t, "hello", roundTrip(t, spec, "hello"))
	// Non-strings coerce to their string form.
	assert.Equal(t, "42", roundTrip(t, spec, 42))
}

func TestNumberRoundTrip(t *testing.T) {
	spec := Number()
	assert.Equal(t, int64(7), roundTrip(t, spec, 7))
	assert.Equal(t, int64(0), roundTrip(t, spec, 0))
	assert.Equal(t, 1.5, roundTrip(t, spec, 1.5))
}

func TestNumberAcceptsEveryIntegerWidth(t *testing.T) {
	spec := Number()
	for _, v := range []any{
		int8(7), int16(7), int32(7), int64(7),
		uint(7), uint8(7), uint16(7), uint32(7), uint64(7),
	} {
		got, err := spec.Clean(v)
		require.NoError(t, err, "Clean(%T)", v)
		assert.Equal(t, int64(7), got, "Clean(%T)", v)
	}
}

func TestNumberRejectsNonNumeric(t *testing.T) {
	spec := Number()

	for _, v := range []any{"7", true, []any{1}} {
		_, err := spec.Clean(v)
		assert.ErrorIs(t, err, kverrors.ErrValidation, "Clean(%v)", v)
	}

	// Deserialize parses strings by decimal point, per the wire contract.
	got, err := spec.Deserialize(context.Background(), "3.5", DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)
	got, err = spec.Deserialize(context.Background(), "35", DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(35), got)

	// Partial parses are rejected, there is no leading-prefix leniency.
	for _, s := range []string{"abc", "12abc", "3.5x", "1e2y"} {
		_, err = spec.Deserialize(context.Background(), s, DecodeOptions{})
		assert.ErrorIs(t, err, kverrors.ErrValidation, "Deserialize(%q)", s)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	spec := Bool()

	wire, err := spec.Clean(true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), wire)

	wire, err = spec.Clean(false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), wire)

	assert.Equal(t, true, roundTrip(t, spec, true))
	assert.Equal(t, false, roundTrip(t, spec, false))

	_, err = spec.Clean("yes")
	assert.ErrorIs(t, err, kverrors.ErrValidation)
}

func TestDecimalRoundTrip(t *testing.T) {
	spec := Decimal()

	d := decimal.RequireFromString("1.1")
	got := roundTrip(t, spec, d)
	dec, ok := got.(decimal.Decimal)
	require.True(t, ok, "expected decimal.Decimal, got %T", got)
	assert.True(t, d.Equal(dec), "expected %s, got %s", d, dec)

	// Plain ints and floats are accepted on the way in.
	got = roundTrip(t, spec, 2)
	assert.True(t, decimal.NewFromInt(2).Equal(got.(decimal.Decimal)))
}

func TestJSONRoundTrip(t *testing.T) {
	dict := map[string]any{"a": "b", "n": 1.0}
	list := []any{"x", 2.0}

	assert.Equal(t, dict, roundTrip(t, JSON(), dict))
	assert.Equal(t, list, roundTrip(t, JSON(), list))
	assert.Equal(t, dict, roundTrip(t, Dict(), dict))
	assert.Equal(t, list, roundTrip(t, List(), list))
}

func TestJSONShapeRestrictions(t *testing.T) {
	_, err := Dict().Clean([]any{"x"})
	assert.ErrorIs(t, err, kverrors.ErrValidation)

	_, err = List().Clean(map[string]any{"a": 1})
	assert.ErrorIs(t, err, kverrors.ErrValidation)

	_, err = JSON().Clean("scalar")
	assert.ErrorIs(t, err, kverrors.ErrValidation)

	// The stored form is type-checked again on the way out.
	_, err = List().Deserialize(context.Background(), `{"a": 1}`, DecodeOptions{})
	assert.ErrorIs(t, err, kverrors.ErrValidation)
}

func TestDateTimeRoundTrip(t *testing.T) {
	spec := DateTime()

	v := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	wire, err := spec.Clean(v)
	require.NoError(t, err)
	assert.Equal(t, "2024.05.01-12:30:45+UTC", wire)

	got, err := spec.Deserialize(context.Background(), wire, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, v.Equal(got.(time.Time)))
	assert.Equal(t, time.UTC, got.(time.Time).Location())
}

func TestDateTimeNormalizesToUTC(t *testing.T) {
	spec := DateTime()

	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2024, 5, 1, 15, 30, 45, 0, loc)

	wire, err := spec.Clean(local)
	require.NoError(t, err)
	assert.Equal(t, "2024.05.01-12:30:45+UTC", wire)
}

func TestDateRoundTrip(t *testing.T) {
	spec := Date()

	v := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	wire, err := spec.Clean(v)
	require.NoError(t, err)
	assert.Equal(t, "2024.05.01", wire)

	got, err := spec.Deserialize(context.Background(), wire, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, v.Equal(got.(time.Time)))
}

func TestDefaults(t *testing.T) {
	t.Run("StaticDefault", func(t *testing.T) {
		spec := String(Default("in_work"))
		wire, err := spec.Clean(nil)
		require.NoError(t, err)
		assert.Equal(t, "in_work", wire)
	})

	t.Run("GeneratorDefault", func(t *testing.T) {
		spec := String(DefaultFunc(func() any { return uuid.NewString() }))
		first, err := spec.Clean(nil)
		require.NoError(t, err)
		second, err := spec.Clean(nil)
		require.NoError(t, err)
		assert.NotEqual(t, first, second, "generator default should produce fresh values")
	})

	t.Run("ExplicitValueWinsOverDefault", func(t *testing.T) {
		spec := Number(Default(5))
		wire, err := spec.Clean(9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), wire)
	})
}

func TestNullHandling(t *testing.T) {
	t.Run("NullableFieldAcceptsNil", func(t *testing.T) {
		wire, err := String().Clean(nil)
		require.NoError(t, err)
		assert.Nil(t, wire)
	})

	t.Run("NotNullRejectsNil", func(t *testing.T) {
		_, err := String(NotNull()).Clean(nil)
		assert.ErrorIs(t, err, kverrors.ErrValidation)
	})

	t.Run("StrictDeserializeFailsOnNull", func(t *testing.T) {
		_, err := String(NotNull()).Deserialize(context.Background(), nil, DecodeOptions{})
		assert.ErrorIs(t, err, kverrors.ErrValidation)
	})

	t.Run("LenientDeserializeLogsAndReturnsNil", func(t *testing.T) {
		got, err := String(NotNull()).Deserialize(context.Background(), nil, DecodeOptions{Lenient: true})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestChoices(t *testing.T) {
	statuses := map[any]string{"ok": "OK", "fail": "Failed"}
	spec := String(Choices(statuses), NotNull())

	wire, err := spec.Clean("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", wire)

	_, err = spec.Clean("bogus")
	assert.ErrorIs(t, err, kverrors.ErrValidation)
}

func TestRefCleanExtractsID(t *testing.T) {
	spec := Ref("Session")

	saved := &fakeInstance{model: "Session", id: 3, hasID: true}
	wire, err := spec.Clean(saved)
	require.NoError(t, err)
	assert.Equal(t, int64(3), wire)

	// A raw id passes through, the update path relies on it.
	wire, err = spec.Clean(int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(9), wire)

	unsaved := &fakeInstance{model: "Session"}
	_, err = spec.Clean(unsaved)
	assert.ErrorIs(t, err, kverrors.ErrValidation)
}

func TestRefDeserializeResolves(t *testing.T) {
	target := &fakeInstance{model: "Session", id: 3, hasID: true}
	resolver := &fakeResolver{instances: map[int64]*fakeInstance{3: target}}
	spec := Ref("Session")

	got, err := spec.Deserialize(context.Background(), int64(3), DecodeOptions{Resolver: resolver})
	require.NoError(t, err)
	assert.Same(t, target, got)

	// Zero matches violate the exactly-one contract.
	_, err = spec.Deserialize(context.Background(), int64(404), DecodeOptions{Resolver: resolver})
	assert.ErrorIs(t, err, kverrors.ErrValidation)
}

func TestRefListRoundTrip(t *testing.T) {
	a := &fakeInstance{model: "Tag", id: 1, hasID: true}
	b := &fakeInstance{model: "Tag", id: 2, hasID: true}
	resolver := &fakeResolver{instances: map[int64]*fakeInstance{1: a, 2: b}}
	spec := RefList("Tag")

	wire, err := spec.Clean([]Instance{a, b})
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", wire)

	got, err := spec.Deserialize(context.Background(), wire, DecodeOptions{Resolver: resolver})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Instance{a, b}, got)
}

func TestRefListCleanAcceptsSingleInstance(t *testing.T) {
	a := &fakeInstance{model: "Tag", id: 5, hasID: true}
	wire, err := RefList("Tag").Clean(a)
	require.NoError(t, err)
	assert.Equal(t, "[5]", wire)
}
