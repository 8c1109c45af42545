package jnibridge

import (
	"fmt"
	"math"
)

// Kind tags the value types the boundary can carry.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBoolean
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindObject
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindChar:    "char",
	KindShort:   "short",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindObject:  "object",
}

var kindLetters = [...]byte{
	KindVoid:    'V',
	KindBoolean: 'Z',
	KindByte:    'B',
	KindChar:    'C',
	KindShort:   'S',
	KindInt:     'I',
	KindLong:    'J',
	KindFloat:   'F',
	KindDouble:  'D',
	KindObject:  'L',
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Letter returns the descriptor letter for k. Object kinds return 'L'.
func (k Kind) Letter() byte {
	if int(k) < len(kindLetters) {
		return kindLetters[k]
	}
	return '?'
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindDouble
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k <= KindObject
}

// KindOf maps a descriptor letter to a kind. Both 'L' and '[' map to
// KindObject.
func KindOf(letter byte) (Kind, bool) {
	switch letter {
	case 'V':
		return KindVoid, true
	case 'Z':
		return KindBoolean, true
	case 'B':
		return KindByte, true
	case 'C':
		return KindChar, true
	case 'S':
		return KindShort, true
	case 'I':
		return KindInt, true
	case 'J':
		return KindLong, true
	case 'F':
		return KindFloat, true
	case 'D':
		return KindDouble, true
	case 'L', '[':
		return KindObject, true
	}
	return 0, false
}

// Value is a jvalue: a 64-bit union wide enough for any kind. Narrow kinds
// occupy the low bits, matching the C union layout on little-endian targets.
type Value uint64

func BooleanValue(v bool) Value {
	if v {
		return 1
	}
	return 0
}

func ByteValue(v int8) Value      { return Value(uint8(v)) }
func CharValue(v uint16) Value    { return Value(v) }
func ShortValue(v int16) Value    { return Value(uint16(v)) }
func IntValue(v int32) Value      { return Value(uint32(v)) }
func LongValue(v int64) Value     { return Value(uint64(v)) }
func FloatValue(v float32) Value  { return Value(math.Float32bits(v)) }
func DoubleValue(v float64) Value { return Value(math.Float64bits(v)) }
func ObjectValue(o Object) Value  { return Value(o) }

func (v Value) Boolean() bool   { return uint8(v) != 0 }
func (v Value) Byte() int8      { return int8(uint8(v)) }
func (v Value) Char() uint16    { return uint16(v) }
func (v Value) Short() int16    { return int16(uint16(v)) }
func (v Value) Int() int32      { return int32(uint32(v)) }
func (v Value) Long() int64     { return int64(v) }
func (v Value) Float() float32  { return math.Float32frombits(uint32(v)) }
func (v Value) Double() float64 { return math.Float64frombits(uint64(v)) }
func (v Value) Object() Object  { return Object(v) }

// Format renders v as the given kind, for diagnostics.
func (v Value) Format(k Kind) string {
	switch k {
	case KindVoid:
		return "void"
	case KindBoolean:
		return fmt.Sprint(v.Boolean())
	case KindByte:
		return fmt.Sprint(v.Byte())
	case KindChar:
		return fmt.Sprintf("%q", rune(v.Char()))
	case KindShort:
		return fmt.Sprint(v.Short())
	case KindInt:
		return fmt.Sprint(v.Int())
	case KindLong:
		return fmt.Sprint(v.Long())
	case KindFloat:
		return fmt.Sprint(v.Float())
	case KindDouble:
		return fmt.Sprint(v.Double())
	case KindObject:
		if v == 0 {
			return "null"
		}
		return fmt.Sprintf("ref@%#x", uint64(v))
	}
	return fmt.Sprintf("%#x", uint64(v))
}
