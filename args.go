package jnibridge

import (
	"fmt"
	"strings"
)

// Args is an explicitly built argument list for a method call.
type Args []Value

// NewArgs returns an empty argument list with room for a few values.
func NewArgs() Args {
	return make(Args, 0, 4)
}

func (a Args) Boolean(v bool) Args   { return append(a, BooleanValue(v)) }
func (a Args) Byte(v int8) Args      { return append(a, ByteValue(v)) }
func (a Args) Char(v uint16) Args    { return append(a, CharValue(v)) }
func (a Args) Short(v int16) Args    { return append(a, ShortValue(v)) }
func (a Args) Int(v int32) Args      { return append(a, IntValue(v)) }
func (a Args) Long(v int64) Args     { return append(a, LongValue(v)) }
func (a Args) Float(v float32) Args  { return append(a, FloatValue(v)) }
func (a Args) Double(v float64) Args { return append(a, DoubleValue(v)) }
func (a Args) Object(o Object) Args  { return append(a, ObjectValue(o)) }
func (a Args) Value(v Value) Args    { return append(a, v) }

// Signature is a parsed method descriptor such as "(ILjava/lang/String;)V".
type Signature struct {
	Params     []Kind
	ParamTypes []string
	Return     Kind
	ReturnType string
}

// ParseSignature parses a method descriptor.
func ParseSignature(desc string) (Signature, error) {
	var sig Signature
	if !strings.HasPrefix(desc, "(") {
		return sig, fmt.Errorf("descriptor %q: missing '('", desc)
	}
	rest := desc[1:]
	for {
		if rest == "" {
			return sig, fmt.Errorf("descriptor %q: missing ')'", desc)
		}
		if rest[0] == ')' {
			rest = rest[1:]
			break
		}
		typ, n, err := scanFieldType(rest)
		if err != nil {
			return sig, fmt.Errorf("descriptor %q: %w", desc, err)
		}
		k, _ := KindOf(typ[0])
		if k == KindVoid {
			return sig, fmt.Errorf("descriptor %q: void parameter", desc)
		}
		sig.Params = append(sig.Params, k)
		sig.ParamTypes = append(sig.ParamTypes, typ)
		rest = rest[n:]
	}
	if rest == "V" {
		sig.Return = KindVoid
		sig.ReturnType = "V"
		return sig, nil
	}
	typ, n, err := scanFieldType(rest)
	if err != nil {
		return sig, fmt.Errorf("descriptor %q: %w", desc, err)
	}
	if n != len(rest) {
		return sig, fmt.Errorf("descriptor %q: trailing %q", desc, rest[n:])
	}
	sig.Return, _ = KindOf(typ[0])
	sig.ReturnType = typ
	return sig, nil
}

// FieldKind returns the kind of a field descriptor such as "I" or
// "Ljava/lang/String;".
func FieldKind(desc string) (Kind, error) {
	typ, n, err := scanFieldType(desc)
	if err != nil {
		return 0, fmt.Errorf("field descriptor %q: %w", desc, err)
	}
	if n != len(desc) {
		return 0, fmt.Errorf("field descriptor %q: trailing %q", desc, desc[n:])
	}
	k, _ := KindOf(typ[0])
	return k, nil
}

// String reassembles the descriptor.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range s.ParamTypes {
		b.WriteString(p)
	}
	b.WriteByte(')')
	b.WriteString(s.ReturnType)
	return b.String()
}

func scanFieldType(s string) (string, int, error) {
	if s == "" {
		return "", 0, fmt.Errorf("unexpected end")
	}
	switch s[0] {
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		return s[:1], 1, nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 2 {
			return "", 0, fmt.Errorf("unterminated class name in %q", s)
		}
		return s[:end+1], end + 1, nil
	case '[':
		_, n, err := scanFieldType(s[1:])
		if err != nil {
			return "", 0, err
		}
		return s[:n+1], n + 1, nil
	}
	return "", 0, fmt.Errorf("unknown type %q", s[0])
}
