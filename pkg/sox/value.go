package sox

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TypeID is the closed set of SOX slot types.
type TypeID uint8

const (
	TypeVoid   TypeID = 0
	TypeBool   TypeID = 1
	TypeByte   TypeID = 2
	TypeShort  TypeID = 3
	TypeInt    TypeID = 4
	TypeLong   TypeID = 5
	TypeFloat  TypeID = 6
	TypeDouble TypeID = 7
	TypeBuf    TypeID = 8
	TypeStr    TypeID = 9
)

// String returns the type name.
func (t TypeID) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBuf:
		return "buf"
	case TypeStr:
		return "str"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseTypeID maps a type name to its TypeID.
func ParseTypeID(s string) (TypeID, bool) {
	for t := TypeVoid; t <= TypeStr; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// IsNumeric reports whether t is one of the integer or floating point types.
func (t TypeID) IsNumeric() bool {
	return t >= TypeByte && t <= TypeDouble
}

// Value is a typed SOX slot value.
type Value interface {
	TypeID() TypeID
	String() string
}

type (
	Bool   bool
	Byte   uint8
	Short  uint16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Str    string
	Buf    []byte
)

func (Bool) TypeID() TypeID   { return TypeBool }
func (Byte) TypeID() TypeID   { return TypeByte }
func (Short) TypeID() TypeID  { return TypeShort }
func (Int) TypeID() TypeID    { return TypeInt }
func (Long) TypeID() TypeID   { return TypeLong }
func (Float) TypeID() TypeID  { return TypeFloat }
func (Double) TypeID() TypeID { return TypeDouble }
func (Str) TypeID() TypeID    { return TypeStr }
func (Buf) TypeID() TypeID    { return TypeBuf }

func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v Byte) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v Short) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Long) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Str) String() string    { return string(v) }

// String returns the buffer as "0x" followed by lowercase hex.
func (v Buf) String() string { return "0x" + hex.EncodeToString(v) }

// ErrBadBuf is returned by ParseBuf for malformed input.
var ErrBadBuf = errors.New("malformed buffer literal")

// ParseBuf parses the "0x"-prefixed hex form produced by Buf.String.
func ParseBuf(s string) (Buf, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("%w: missing 0x prefix", ErrBadBuf)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBuf, err)
	}
	return Buf(b), nil
}

// ParseValue parses the text form of a value of type t.
func ParseValue(t TypeID, s string) (Value, error) {
	switch t {
	case TypeBool:
		b, err := strconv.ParseBool(s)
		return Bool(b), err
	case TypeByte:
		n, err := strconv.ParseUint(s, 10, 8)
		return Byte(n), err
	case TypeShort:
		n, err := strconv.ParseUint(s, 10, 16)
		return Short(n), err
	case TypeInt:
		n, err := strconv.ParseInt(s, 10, 32)
		return Int(n), err
	case TypeLong:
		n, err := strconv.ParseInt(s, 10, 64)
		return Long(n), err
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 32)
		return Float(f), err
	case TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		return Double(f), err
	case TypeStr:
		return Str(s), nil
	case TypeBuf:
		return ParseBuf(s)
	default:
		return nil, fmt.Errorf("cannot parse value of %s", t)
	}
}
