package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessors(t *testing.T) {
	n := NewInt(7)
	i, ok := n.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
	f, ok := n.Number()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
	assert.True(t, n.IsIntegral())

	_, ok = NewNumber(1.5).Int()
	assert.False(t, ok)
	i, ok = NewNumber(2).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)

	_, ok = NewString("x").Number()
	assert.False(t, ok)

	assert.True(t, Value{}.IsNull())
	assert.True(t, Null(KindNumber).IsNull())
	assert.Equal(t, KindNumber, Null(KindNumber).Kind())
	assert.False(t, NewArray().IsNull())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NewInt(3).Equal(NewNumber(3)))
	assert.False(t, NewInt(3).Equal(NewString("3")))
	assert.True(t, Null(KindString).Equal(Value{}))
	assert.True(t, NewArray(NewInt(1), NewString("a")).Equal(NewArray(NewInt(1), NewString("a"))))
	assert.False(t, NewArray(NewInt(1)).Equal(NewArray(NewInt(2))))
	assert.True(t, NewMap(map[string]Value{"k": NewBool(true)}).Equal(NewMap(map[string]Value{"k": NewBool(true)})))
	assert.False(t, NewMap(map[string]Value{"k": NewBool(true)}).Equal(NewMap(map[string]Value{"j": NewBool(true)})))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", Value{}.String())
	assert.Equal(t, "3.14", NewNumber(3.14).String())
	assert.Equal(t, "[1, a]", NewArray(NewInt(1), NewString("a")).String())
	assert.Equal(t, "{a: 1, b: true}", NewMap(map[string]Value{"b": NewBool(true), "a": NewInt(1)}).String())
}

func TestFromInterfaceRoundTrip(t *testing.T) {
	in := map[string]any{
		"n":   42,
		"f":   1.25,
		"s":   "x",
		"b":   true,
		"arr": []any{1, "two"},
		"nil": nil,
	}
	v := FromInterface(in)
	require.Equal(t, KindMap, v.Kind())

	out := v.Interface().(map[string]any)
	assert.Equal(t, int64(42), out["n"])
	assert.Equal(t, 1.25, out["f"])
	assert.Equal(t, []any{int64(1), "two"}, out["arr"])
	assert.Nil(t, out["nil"])
}

func TestValueTypeAccepts(t *testing.T) {
	enum := EnumType("off", "on")
	tests := []struct {
		name string
		typ  ValueType
		v    Value
		want bool
	}{
		{"number ok", Number, NewNumber(1), true},
		{"number bad", Number, NewBool(true), false},
		{"null always", Bool, Value{}, true},
		{"dynamic", Dynamic, NewString("x"), true},
		{"enum member", enum, NewString("on"), true},
		{"enum stranger", enum, NewString("auto"), false},
		{"enum number", enum, NewInt(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Accepts(tt.v))
		})
	}
	assert.Equal(t, 1, enum.Index("on"))
	assert.Equal(t, "enum[off,on]", enum.String())
	assert.True(t, enum.Equal(EnumType("off", "on")))
	assert.False(t, enum.Equal(EnumType("on", "off")))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(Number, "12")
	require.NoError(t, err)
	assert.True(t, v.IsIntegral())

	v, err = ParseValue(Number, "1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v.String())

	_, err = ParseValue(Number, "abc")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ParseValue(EnumType("a", "b"), "c")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	v, err = ParseValue(Dynamic, "true")
	require.NoError(t, err)
	assert.Equal(t, KindBool, v.Kind())

	v, err = ParseValue(Dynamic, "null")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
