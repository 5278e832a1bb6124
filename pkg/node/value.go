package node

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Kind is the broad class of a node value.
type Kind uint8

const (
	KindDynamic Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
	KindMap
	KindEnum
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ValueType is the declared type of a node. Enum types carry their symbols.
type ValueType struct {
	kind  Kind
	enums []string
}

var (
	Dynamic = ValueType{kind: KindDynamic}
	Number  = ValueType{kind: KindNumber}
	String  = ValueType{kind: KindString}
	Bool    = ValueType{kind: KindBool}
	Array   = ValueType{kind: KindArray}
	Map     = ValueType{kind: KindMap}
)

// EnumType returns an enum type with the given symbols, in order.
func EnumType(symbols ...string) ValueType {
	return ValueType{kind: KindEnum, enums: slices.Clone(symbols)}
}

// Kind returns the type's kind.
func (t ValueType) Kind() Kind { return t.kind }

// Enums returns the enum symbols, nil for non-enum types.
func (t ValueType) Enums() []string { return slices.Clone(t.enums) }

// Index returns the position of symbol in an enum type, or -1.
func (t ValueType) Index(symbol string) int {
	return slices.Index(t.enums, symbol)
}

// Equal reports whether t and o are the same type.
func (t ValueType) Equal(o ValueType) bool {
	return t.kind == o.kind && slices.Equal(t.enums, o.enums)
}

// String renders the type, e.g. "enum[off,on]".
func (t ValueType) String() string {
	if t.kind == KindEnum {
		return "enum[" + strings.Join(t.enums, ",") + "]"
	}
	return t.kind.String()
}

// Accepts reports whether v may be stored in a node of type t. Nulls are
// always accepted.
func (t ValueType) Accepts(v Value) bool {
	if v.IsNull() {
		return true
	}
	switch t.kind {
	case KindDynamic:
		return true
	case KindEnum:
		s, ok := v.Text()
		return ok && t.Index(s) >= 0
	default:
		return v.kind == t.kind
	}
}

// Value is an immutable node value. The zero Value is a dynamic null.
type Value struct {
	kind Kind
	v    any // nil, int64, float64, string, bool, []Value, map[string]Value
}

// Null returns a null value of the given kind.
func Null(k Kind) Value { return Value{kind: k} }

// NewInt returns an integral number.
func NewInt(n int64) Value { return Value{kind: KindNumber, v: n} }

// NewNumber returns a floating point number.
func NewNumber(f float64) Value { return Value{kind: KindNumber, v: f} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, v: s} }

// NewBool returns a bool value.
func NewBool(b bool) Value { return Value{kind: KindBool, v: b} }

// NewArray returns an array value.
func NewArray(items ...Value) Value {
	return Value{kind: KindArray, v: slices.Clone(items)}
}

// NewMap returns a map value.
func NewMap(m map[string]Value) Value {
	c := make(map[string]Value, len(m))
	for k, v := range m {
		c[k] = v
	}
	return Value{kind: KindMap, v: c}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.v == nil }

// Number returns a number value as float64.
func (v Value) Number() (float64, bool) {
	switch n := v.v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Int returns a number value as int64. Non-integral floats report false.
func (v Value) Int() (int64, bool) {
	switch n := v.v.(type) {
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

// IsIntegral reports whether v was created from an integer.
func (v Value) IsIntegral() bool {
	_, ok := v.v.(int64)
	return ok
}

// Text returns a string value.
func (v Value) Text() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// Bool returns a bool value.
func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

// Array returns the items of an array value.
func (v Value) Array() []Value {
	a, _ := v.v.([]Value)
	return slices.Clone(a)
}

// Map returns the entries of a map value.
func (v Value) Map() map[string]Value {
	m, _ := v.v.(map[string]Value)
	if m == nil {
		return nil
	}
	c := make(map[string]Value, len(m))
	for k, e := range m {
		c[k] = e
	}
	return c
}

// Interface converts v to plain Go values (nil, int64, float64, string,
// bool, []any, map[string]any).
func (v Value) Interface() any {
	switch x := v.v.(type) {
	case []Value:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e.Interface()
		}
		return out
	case map[string]Value:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = e.Interface()
		}
		return out
	default:
		return x
	}
}

// String renders v for display.
func (v Value) String() string {
	switch x := v.v.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case []Value:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]Value:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + x[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

// Equal reports deep equality. Numbers compare by numeric value.
func (v Value) Equal(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	if a, ok := v.Number(); ok {
		b, ok := o.Number()
		return ok && a == b
	}
	switch x := v.v.(type) {
	case []Value:
		y, ok := o.v.([]Value)
		return ok && slices.EqualFunc(x, y, Value.Equal)
	case map[string]Value:
		y, ok := o.v.(map[string]Value)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, e := range x {
			if f, ok := y[k]; !ok || !e.Equal(f) {
				return false
			}
		}
		return true
	default:
		return v.v == o.v
	}
}

// FromInterface converts plain Go values into a Value. Unsupported types are
// rendered with fmt.Sprint as strings.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case bool:
		return NewBool(t)
	case string:
		return NewString(t)
	case int:
		return NewInt(int64(t))
	case int8:
		return NewInt(int64(t))
	case int16:
		return NewInt(int64(t))
	case int32:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case uint:
		return NewInt(int64(t))
	case uint8:
		return NewInt(int64(t))
	case uint16:
		return NewInt(int64(t))
	case uint32:
		return NewInt(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return NewNumber(float64(t))
		}
		return NewInt(int64(t))
	case float32:
		return NewNumber(float64(t))
	case float64:
		return NewNumber(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromInterface(e)
		}
		return Value{kind: KindArray, v: items}
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = FromInterface(e)
		}
		return Value{kind: KindMap, v: m}
	default:
		return NewString(fmt.Sprint(t))
	}
}

// ParseValue parses text input for a node of type t.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t.kind {
	case KindNumber:
		return parseNumber(s)
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool", ErrTypeMismatch, s)
		}
		return NewBool(b), nil
	case KindString:
		return NewString(s), nil
	case KindEnum:
		if t.Index(s) < 0 {
			return Value{}, fmt.Errorf("%w: %q not in %s", ErrTypeMismatch, s, t)
		}
		return NewString(s), nil
	case KindDynamic:
		if s == "null" {
			return Value{}, nil
		}
		if v, err := parseNumber(s); err == nil {
			return v, nil
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return NewBool(b), nil
		}
		return NewString(s), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot parse %s from text", ErrTypeMismatch, t)
	}
}

func parseNumber(s string) (Value, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, s)
	}
	return NewNumber(f), nil
}
