package bridge

import (
	jnibridge "github.com/wippyai/jni-bridge"
)

// invoke runs the call protocol for one boundary operation. problem is the
// parameter validation result, empty when the parameters are usable. The
// result of call is discarded whenever an exception is pending after it.
//
// An operation the policy lets run with an exception already pending leaves
// that exception pending for the caller and the error record clean.
func invoke[T any](t *Thread, op Operation, problem string, call func(env jnibridge.Env) T) T {
	var zero T

	env, ok := t.acquire(op)
	if !ok {
		return zero
	}
	t.rec.reset()

	if problem != "" {
		t.rec.fail(ParameterError, op, problem)
		return zero
	}
	pending := env.ExceptionCheck()
	if pending && t.bridge.policy.CheckPending(op) {
		t.takePending(env, op)
		return zero
	}

	result := call(env)

	if env.ExceptionCheck() {
		if pending {
			return zero
		}
		t.takePending(env, op)
		return zero
	}
	return result
}

// invokeVoid is invoke for operations without a result.
func invokeVoid(t *Thread, op Operation, problem string, call func(env jnibridge.Env)) {
	invoke(t, op, problem, func(env jnibridge.Env) struct{} {
		call(env)
		return struct{}{}
	})
}

const (
	nullObject   = "object is null"
	nullClass    = "class is null"
	nullArray    = "array is null"
	nullString   = "string is null"
	nullBuffer   = "buffer is null"
	emptyMethod  = "method id is empty"
	emptyField   = "field id is empty"
	emptyName    = "name is empty"
	emptySig     = "signature is empty"
	negativeSize = "length is negative"
)

func checkObjectMethod(o jnibridge.Object, m jnibridge.MethodID) string {
	switch {
	case o.IsNull():
		return nullObject
	case m == 0:
		return emptyMethod
	}
	return ""
}

func checkNonvirtual(o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID) string {
	switch {
	case o.IsNull():
		return nullObject
	case c == 0:
		return nullClass
	case m == 0:
		return emptyMethod
	}
	return ""
}

func checkClassMethod(c jnibridge.Class, m jnibridge.MethodID) string {
	switch {
	case c == 0:
		return nullClass
	case m == 0:
		return emptyMethod
	}
	return ""
}

func checkObjectField(o jnibridge.Object, f jnibridge.FieldID) string {
	switch {
	case o.IsNull():
		return nullObject
	case f == 0:
		return emptyField
	}
	return ""
}

func checkClassField(c jnibridge.Class, f jnibridge.FieldID) string {
	switch {
	case c == 0:
		return nullClass
	case f == 0:
		return emptyField
	}
	return ""
}

func checkMember(c jnibridge.Class, name, sig string) string {
	switch {
	case c == 0:
		return nullClass
	case name == "":
		return emptyName
	case sig == "":
		return emptySig
	}
	return ""
}

func checkRegion[T any](a jnibridge.Array, start, length int32, buf []T) string {
	switch {
	case a == 0:
		return nullArray
	case buf == nil:
		return nullBuffer
	case start < 0 || length < 0:
		return "region is negative"
	case int(length) > len(buf):
		return "buffer is shorter than region"
	}
	return ""
}
