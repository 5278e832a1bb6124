// Package translate maps values between the device model and the node tree.
//
// Numeric SOX types map to node numbers and are narrowed back to their
// concrete width on write. Strings map to strings. Buffers map to strings
// in 0x-prefixed hex, in both directions.
package translate

import (
	"errors"
	"fmt"
	"math"

	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
)

var (
	ErrUnknownType   = errors.New("unknown sox type")
	ErrValueMismatch = errors.New("value does not fit sox type")
)

// TypeError reports a SOX type ID outside the supported set.
type TypeError struct {
	Type sox.TypeID
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnknownType, uint8(e.Type))
}

func (e *TypeError) Unwrap() error { return ErrUnknownType }

// ToNode converts a device value to a node value.
func ToNode(v sox.Value) (node.Value, error) {
	if v == nil {
		return node.Value{}, nil
	}
	switch x := v.(type) {
	case sox.Bool:
		return node.NewBool(bool(x)), nil
	case sox.Byte:
		return node.NewInt(int64(x)), nil
	case sox.Short:
		return node.NewInt(int64(x)), nil
	case sox.Int:
		return node.NewInt(int64(x)), nil
	case sox.Long:
		return node.NewInt(int64(x)), nil
	case sox.Float:
		return node.NewNumber(float64(x)), nil
	case sox.Double:
		return node.NewNumber(float64(x)), nil
	case sox.Str:
		return node.NewString(string(x)), nil
	case sox.Buf:
		return node.NewString(x.String()), nil
	default:
		return node.Value{}, &TypeError{Type: v.TypeID()}
	}
}

// Default returns the typed null used for a slot with no current value.
func Default(t sox.TypeID) (node.Value, error) {
	vt, err := NodeType(t)
	if err != nil {
		return node.Value{}, err
	}
	return node.Null(vt.Kind()), nil
}

// NodeType returns the node value type for slots of type t.
func NodeType(t sox.TypeID) (node.ValueType, error) {
	switch t {
	case sox.TypeBool:
		return node.Bool, nil
	case sox.TypeByte, sox.TypeShort, sox.TypeInt, sox.TypeLong, sox.TypeFloat, sox.TypeDouble:
		return node.Number, nil
	case sox.TypeStr, sox.TypeBuf:
		return node.String, nil
	default:
		return node.ValueType{}, &TypeError{Type: t}
	}
}

// ParamType returns the action parameter type for an action slot of type t.
// ok is false for void and buf actions, which take no parameter.
func ParamType(t sox.TypeID) (vt node.ValueType, ok bool, err error) {
	if t == sox.TypeVoid || t == sox.TypeBuf {
		return node.ValueType{}, false, nil
	}
	vt, err = NodeType(t)
	if err != nil {
		return node.ValueType{}, false, err
	}
	return vt, true, nil
}

// ToRemote converts a node value to a device value of type t. Integer
// values outside the target width are rejected.
func ToRemote(v node.Value, t sox.TypeID) (sox.Value, error) {
	if _, err := NodeType(t); err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, fmt.Errorf("%w: null for %s", ErrValueMismatch, t)
	}

	switch t {
	case sox.TypeBool:
		b, ok := v.Bool()
		if !ok {
			return nil, mismatch(v, t)
		}
		return sox.Bool(b), nil
	case sox.TypeStr:
		s, ok := v.Text()
		if !ok {
			return nil, mismatch(v, t)
		}
		return sox.Str(s), nil
	case sox.TypeBuf:
		s, ok := v.Text()
		if !ok {
			return nil, mismatch(v, t)
		}
		b, err := sox.ParseBuf(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValueMismatch, err)
		}
		return b, nil
	case sox.TypeFloat:
		f, ok := v.Number()
		if !ok {
			return nil, mismatch(v, t)
		}
		return sox.Float(f), nil
	case sox.TypeDouble:
		f, ok := v.Number()
		if !ok {
			return nil, mismatch(v, t)
		}
		return sox.Double(f), nil
	}

	n, ok := v.Int()
	if !ok {
		return nil, mismatch(v, t)
	}
	switch t {
	case sox.TypeByte:
		if n < 0 || n > math.MaxUint8 {
			return nil, outOfRange(n, t)
		}
		return sox.Byte(n), nil
	case sox.TypeShort:
		if n < 0 || n > math.MaxUint16 {
			return nil, outOfRange(n, t)
		}
		return sox.Short(n), nil
	case sox.TypeInt:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, outOfRange(n, t)
		}
		return sox.Int(n), nil
	default:
		return sox.Long(n), nil
	}
}

func mismatch(v node.Value, t sox.TypeID) error {
	return fmt.Errorf("%w: %s value for %s", ErrValueMismatch, v.Kind(), t)
}

func outOfRange(n int64, t sox.TypeID) error {
	return fmt.Errorf("%w: %d out of range for %s", ErrValueMismatch, n, t)
}
