package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/wasmvm"
)

// parseArg converts a command line argument to a value of kind k.
func parseArg(k jnibridge.Kind, s string) (jnibridge.Value, error) {
	s = strings.TrimSpace(s)
	switch k {
	case jnibridge.KindBoolean:
		v, err := strconv.ParseBool(s)
		return jnibridge.BooleanValue(v), err
	case jnibridge.KindByte:
		v, err := strconv.ParseInt(s, 0, 8)
		return jnibridge.ByteValue(int8(v)), err
	case jnibridge.KindChar:
		if r, size := utf8.DecodeRuneInString(s); size == len(s) && size > 0 && r <= 0xffff {
			return jnibridge.CharValue(uint16(r)), nil
		}
		v, err := strconv.ParseUint(s, 0, 16)
		return jnibridge.CharValue(uint16(v)), err
	case jnibridge.KindShort:
		v, err := strconv.ParseInt(s, 0, 16)
		return jnibridge.ShortValue(int16(v)), err
	case jnibridge.KindInt:
		v, err := strconv.ParseInt(s, 0, 32)
		return jnibridge.IntValue(int32(v)), err
	case jnibridge.KindLong:
		v, err := strconv.ParseInt(s, 0, 64)
		return jnibridge.LongValue(v), err
	case jnibridge.KindFloat:
		v, err := strconv.ParseFloat(s, 32)
		return jnibridge.FloatValue(float32(v)), err
	case jnibridge.KindDouble:
		v, err := strconv.ParseFloat(s, 64)
		return jnibridge.DoubleValue(v), err
	case jnibridge.KindObject:
		if s == "null" {
			return jnibridge.ObjectValue(0), nil
		}
	}
	return 0, errors.Unsupported(errors.PhaseValidate, fmt.Sprintf("%s argument %q", k, s))
}

// parseArgs converts raw arguments for meth's parameter list.
func parseArgs(meth wasmvm.Method, raw []string) (jnibridge.Args, error) {
	params := meth.Signature.Params
	if len(raw) != len(params) {
		return nil, errors.InvalidInput(errors.PhaseValidate,
			fmt.Sprintf("%s takes %d arguments, got %d", meth.Name, len(params), len(raw)))
	}
	args := jnibridge.NewArgs()
	for i, k := range params {
		v, err := parseArg(k, raw[i])
		if err != nil {
			return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err,
				fmt.Sprintf("argument %d of %s", i+1, meth.Name))
		}
		args = args.Value(v)
	}
	return args, nil
}

// callStatic invokes meth on class through b from the calling goroutine and
// returns the formatted result. A thrown exception is returned as an error
// carrying the record's message.
func callStatic(b *bridge.Bridge, class string, meth wasmvm.Method, raw []string) (string, error) {
	args, err := parseArgs(meth, raw)
	if err != nil {
		return "", err
	}

	var out string
	err = b.WithThread(func(t *bridge.Thread) error {
		cls := t.FindClass(class)
		if cls == 0 {
			return t.Err()
		}
		id := t.GetStaticMethodID(cls, meth.Name, meth.Descriptor)
		if id == 0 {
			return t.Err()
		}

		k := meth.Signature.Return
		if k == jnibridge.KindVoid {
			bridge.Void.CallStaticMethod(t, cls, id, args)
			out = jnibridge.Value(0).Format(k)
		} else {
			out = bridge.Dynamic(k).CallStaticMethod(t, cls, id, args).Format(k)
		}
		return t.Err()
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// findMethod resolves name against the module's bound exports.
func findMethod(mod *wasmvm.Module, name string) (wasmvm.Method, error) {
	meth, ok := mod.Method(name)
	if !ok {
		return meth, errors.NotFound(errors.PhaseLookup, "method", name)
	}
	return meth, nil
}

// splitArgs splits a comma separated argument list. An empty string has no
// arguments.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
