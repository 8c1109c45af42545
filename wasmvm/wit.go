package wasmvm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// witFunc is a function declaration found in WIT text.
type witFunc struct {
	name    string
	params  []wit.Type
	results []wit.Type
}

// Pattern: [export] name: func(params) -> result;
var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWIT extracts function signatures from WIT text, keyed by name.
func parseWIT(text string) (map[string]*witFunc, error) {
	funcs := make(map[string]*witFunc)
	for _, match := range funcPattern.FindAllStringSubmatch(text, -1) {
		fn := &witFunc{name: match[1]}

		if params := strings.TrimSpace(match[2]); params != "" {
			for _, p := range splitParams(params) {
				typ := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typ = strings.TrimSpace(p[idx+1:])
				}
				t, err := wit.ParseType(typ)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse param type "+typ)
				}
				fn.params = append(fn.params, t)
			}
		}

		result := strings.TrimSpace(match[3])
		if result != "" && result != "()" {
			parts := []string{result}
			if strings.HasPrefix(result, "(") && strings.HasSuffix(result, ")") {
				parts = splitParams(result[1 : len(result)-1])
			}
			for _, part := range parts {
				t, err := wit.ParseType(strings.TrimSpace(part))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse result type "+part)
				}
				fn.results = append(fn.results, t)
			}
		}
		funcs[fn.name] = fn
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no functions found in WIT text")
	}
	return funcs, nil
}

// splitParams splits a parameter list, handling nested parens.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// witKind maps a WIT scalar to the value kind it is exposed as. char is a
// Unicode scalar value and does not fit a 16-bit char, so it maps to int.
func witKind(t wit.Type) (jnibridge.Kind, api.ValueType, bool) {
	switch t.(type) {
	case wit.Bool:
		return jnibridge.KindBoolean, api.ValueTypeI32, true
	case wit.S8, wit.U8:
		return jnibridge.KindByte, api.ValueTypeI32, true
	case wit.S16:
		return jnibridge.KindShort, api.ValueTypeI32, true
	case wit.U16:
		return jnibridge.KindChar, api.ValueTypeI32, true
	case wit.S32, wit.U32, wit.Char:
		return jnibridge.KindInt, api.ValueTypeI32, true
	case wit.S64, wit.U64:
		return jnibridge.KindLong, api.ValueTypeI64, true
	case wit.F32:
		return jnibridge.KindFloat, api.ValueTypeF32, true
	case wit.F64:
		return jnibridge.KindDouble, api.ValueTypeF64, true
	}
	return 0, 0, false
}

// coreKind maps a core wasm value type to a value kind.
func coreKind(vt api.ValueType) (jnibridge.Kind, bool) {
	switch vt {
	case api.ValueTypeI32:
		return jnibridge.KindInt, true
	case api.ValueTypeI64:
		return jnibridge.KindLong, true
	case api.ValueTypeF32:
		return jnibridge.KindFloat, true
	case api.ValueTypeF64:
		return jnibridge.KindDouble, true
	}
	return 0, false
}

// witSignature checks a WIT declaration against the core function type and
// returns the kinds it exposes.
func witSignature(fn *witFunc, params, results []api.ValueType) (jnibridge.Signature, error) {
	var sig jnibridge.Signature
	if len(fn.params) != len(params) {
		return sig, errors.TypeMismatch(errors.PhaseLoad, fn.name,
			fmt.Sprintf("%d params", len(params)), fmt.Sprintf("%d", len(fn.params)))
	}
	for i, t := range fn.params {
		k, vt, ok := witKind(t)
		if !ok {
			return sig, errors.Unsupported(errors.PhaseLoad, "WIT type "+typeName(t)+" in "+fn.name)
		}
		if vt != params[i] {
			return sig, errors.TypeMismatch(errors.PhaseLoad, fn.name, api.ValueTypeName(params[i]), typeName(t))
		}
		sig.Params = append(sig.Params, k)
		sig.ParamTypes = append(sig.ParamTypes, string(k.Letter()))
	}

	switch {
	case len(fn.results) == 0 && len(results) == 0:
		sig.Return, sig.ReturnType = jnibridge.KindVoid, "V"
	case len(fn.results) == 1 && len(results) == 1:
		k, vt, ok := witKind(fn.results[0])
		if !ok {
			return sig, errors.Unsupported(errors.PhaseLoad, "WIT type "+typeName(fn.results[0])+" in "+fn.name)
		}
		if vt != results[0] {
			return sig, errors.TypeMismatch(errors.PhaseLoad, fn.name, api.ValueTypeName(results[0]), typeName(fn.results[0]))
		}
		sig.Return, sig.ReturnType = k, string(k.Letter())
	default:
		return sig, errors.Unsupported(errors.PhaseLoad, "multiple results in "+fn.name)
	}
	return sig, nil
}

func typeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.S8:
		return "s8"
	case wit.U8:
		return "u8"
	case wit.S16:
		return "s16"
	case wit.U16:
		return "u16"
	case wit.S32:
		return "s32"
	case wit.U32:
		return "u32"
	case wit.S64:
		return "s64"
	case wit.U64:
		return "u64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	}
	return fmt.Sprintf("%T", t)
}
