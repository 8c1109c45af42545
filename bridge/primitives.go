package bridge

import (
	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
)

// FindClass looks up a class by its slash separated name, such as
// "java/lang/String".
func (t *Thread) FindClass(name string) jnibridge.Class {
	problem := ""
	if name == "" {
		problem = emptyName
	}
	return invoke(t, OpFindClass, problem, func(env jnibridge.Env) jnibridge.Class {
		return env.FindClass(name)
	})
}

// Throw makes thr the thread's pending exception. The exception stays
// pending, so it is raised in the runtime once control returns there.
func (t *Thread) Throw(thr jnibridge.Throwable) jnibridge.Status {
	problem := ""
	if thr == 0 {
		problem = "throwable is null"
	}
	return t.raise(OpThrow, problem, func(env jnibridge.Env) jnibridge.Status {
		return env.Throw(thr)
	})
}

// ThrowNew constructs an exception of class c with message and makes it
// pending.
func (t *Thread) ThrowNew(c jnibridge.Class, message string) jnibridge.Status {
	problem := ""
	if c == 0 {
		problem = nullClass
	}
	return t.raise(OpThrowNew, problem, func(env jnibridge.Env) jnibridge.Status {
		return env.ThrowNew(c, message)
	})
}

// raise is the call protocol without the post-call check, whose only
// purpose would be to undo the throw.
func (t *Thread) raise(op Operation, problem string, call func(env jnibridge.Env) jnibridge.Status) jnibridge.Status {
	env, ok := t.acquire(op)
	if !ok {
		return jnibridge.StatusDetached
	}
	t.rec.reset()
	if problem != "" {
		t.rec.fail(ParameterError, op, problem)
		return jnibridge.StatusErr
	}
	if t.bridge.policy.CheckPending(op) && env.ExceptionCheck() {
		t.takePending(env, op)
		return jnibridge.StatusErr
	}
	return call(env)
}

// FatalError aborts the runtime. It does not return.
func (t *Thread) FatalError(message string) {
	Logger().Error("fatal error", zap.String("message", message))
	if t.Attached() {
		t.env.FatalError(message)
	}
	panic("jnibridge: fatal error: " + message)
}

// NewGlobalRef creates a global reference to o. The reference is tracked so
// that DeleteGlobalRef can reject handles it never created.
func (t *Thread) NewGlobalRef(o jnibridge.Object) jnibridge.Object {
	problem := ""
	if o.IsNull() {
		problem = nullObject
	}
	g := invoke(t, OpNewGlobalRef, problem, func(env jnibridge.Env) jnibridge.Object {
		return env.NewGlobalRef(o)
	})
	if g != 0 {
		t.bridge.globals.Store(g, struct{}{})
	}
	return g
}

// DeleteGlobalRef deletes a global reference created by NewGlobalRef.
// Deleting a handle that is unknown or already deleted records
// ParameterError and never reaches the runtime.
func (t *Thread) DeleteGlobalRef(g jnibridge.Object) {
	problem := ""
	switch {
	case g.IsNull():
		problem = nullObject
	case t.Attached():
		if _, ok := t.bridge.globals.Load(g); !ok {
			problem = "not a live global reference"
			Logger().Warn("global reference deleted twice or never created",
				zap.Uint64("handle", uint64(g)))
		}
	}
	invokeVoid(t, OpDeleteGlobalRef, problem, func(env jnibridge.Env) {
		t.bridge.globals.Delete(g)
		env.DeleteGlobalRef(g)
	})
}

// DeleteLocalRef deletes a local reference before its frame is popped.
func (t *Thread) DeleteLocalRef(o jnibridge.Object) {
	problem := ""
	if o.IsNull() {
		problem = nullObject
	}
	invokeVoid(t, OpDeleteLocalRef, problem, func(env jnibridge.Env) {
		env.DeleteLocalRef(o)
	})
}

// NewLocalRef creates a new local reference to o in the current frame.
func (t *Thread) NewLocalRef(o jnibridge.Object) jnibridge.Object {
	problem := ""
	if o.IsNull() {
		problem = nullObject
	}
	return invoke(t, OpNewLocalRef, problem, func(env jnibridge.Env) jnibridge.Object {
		return env.NewLocalRef(o)
	})
}

// GetObjectClass returns the runtime class of o.
func (t *Thread) GetObjectClass(o jnibridge.Object) jnibridge.Class {
	problem := ""
	if o.IsNull() {
		problem = nullObject
	}
	return invoke(t, OpGetObjectClass, problem, func(env jnibridge.Env) jnibridge.Class {
		return env.GetObjectClass(o)
	})
}

// IsInstanceOf reports whether o is an instance of c. A null object is an
// instance of every class.
func (t *Thread) IsInstanceOf(o jnibridge.Object, c jnibridge.Class) bool {
	problem := ""
	if c == 0 {
		problem = nullClass
	}
	return invoke(t, OpIsInstanceOf, problem, func(env jnibridge.Env) bool {
		return env.IsInstanceOf(o, c)
	})
}

// GetMethodID looks up an instance method of c by name and JNI signature,
// such as "(I)Ljava/lang/String;". A missing method returns 0 and records
// the NoSuchMethodError as ExceptionThrown.
func (t *Thread) GetMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return invoke(t, OpGetMethodID, checkMember(c, name, sig), func(env jnibridge.Env) jnibridge.MethodID {
		return env.GetMethodID(c, name, sig)
	})
}

// GetFieldID looks up an instance field of c by name and type signature.
func (t *Thread) GetFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return invoke(t, OpGetFieldID, checkMember(c, name, sig), func(env jnibridge.Env) jnibridge.FieldID {
		return env.GetFieldID(c, name, sig)
	})
}

// GetStaticMethodID is GetMethodID for static methods.
func (t *Thread) GetStaticMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return invoke(t, OpGetStaticMethodID, checkMember(c, name, sig), func(env jnibridge.Env) jnibridge.MethodID {
		return env.GetStaticMethodID(c, name, sig)
	})
}

// GetStaticFieldID is GetFieldID for static fields.
func (t *Thread) GetStaticFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return invoke(t, OpGetStaticFieldID, checkMember(c, name, sig), func(env jnibridge.Env) jnibridge.FieldID {
		return env.GetStaticFieldID(c, name, sig)
	})
}

// NewObject allocates an instance of c and runs constructor m.
func (t *Thread) NewObject(c jnibridge.Class, m jnibridge.MethodID, args jnibridge.Args) jnibridge.Object {
	return invoke(t, OpNewObject, checkClassMethod(c, m), func(env jnibridge.Env) jnibridge.Object {
		return env.NewObject(c, m, args)
	})
}

// NewStringUTF creates a string object from the modified UTF-8 bytes of s.
func (t *Thread) NewStringUTF(s string) jnibridge.String {
	return invoke(t, OpNewStringUTF, "", func(env jnibridge.Env) jnibridge.String {
		return env.NewStringUTF(s)
	})
}

// GetStringUTFLength returns the length of s in modified UTF-8 bytes.
func (t *Thread) GetStringUTFLength(s jnibridge.String) int32 {
	problem := ""
	if s == 0 {
		problem = nullString
	}
	return invoke(t, OpGetStringUTFLength, problem, func(env jnibridge.Env) int32 {
		return env.GetStringUTFLength(s)
	})
}

// GetStringUTFChars borrows the UTF-8 bytes of s. Hand them back with
// ReleaseStringUTFChars.
func (t *Thread) GetStringUTFChars(s jnibridge.String) []byte {
	problem := ""
	if s == 0 {
		problem = nullString
	}
	return invoke(t, OpGetStringUTFChars, problem, func(env jnibridge.Env) []byte {
		return env.GetStringUTFChars(s)
	})
}

// ReleaseStringUTFChars hands back chars borrowed by GetStringUTFChars. It
// runs with an exception pending under the default policy.
func (t *Thread) ReleaseStringUTFChars(s jnibridge.String, chars []byte) {
	problem := ""
	if s == 0 {
		problem = nullString
	}
	invokeVoid(t, OpReleaseStringUTFChars, problem, func(env jnibridge.Env) {
		env.ReleaseStringUTFChars(s, chars)
	})
}

// GoString copies s into a Go string. It returns "" for a null string or
// when the characters cannot be borrowed.
func (t *Thread) GoString(s jnibridge.String) string {
	if s == 0 {
		return ""
	}
	chars := t.GetStringUTFChars(s)
	if chars == nil {
		return ""
	}
	str := string(chars)
	t.ReleaseStringUTFChars(s, chars)
	return str
}

// GetArrayLength returns the number of elements in a.
func (t *Thread) GetArrayLength(a jnibridge.Array) int32 {
	problem := ""
	if a == 0 {
		problem = nullArray
	}
	return invoke(t, OpGetArrayLength, problem, func(env jnibridge.Env) int32 {
		return env.GetArrayLength(a)
	})
}

// GetObjectArrayElement returns element i of an object array as a local
// reference. An index out of range records ExceptionThrown.
func (t *Thread) GetObjectArrayElement(a jnibridge.Array, i int32) jnibridge.Object {
	problem := ""
	if a == 0 {
		problem = nullArray
	}
	return invoke(t, OpGetObjectArrayElement, problem, func(env jnibridge.Env) jnibridge.Object {
		return env.GetObjectArrayElement(a, i)
	})
}

// SetObjectArrayElement stores v at index i of an object array.
func (t *Thread) SetObjectArrayElement(a jnibridge.Array, i int32, v jnibridge.Object) {
	problem := ""
	if a == 0 {
		problem = nullArray
	}
	invokeVoid(t, OpSetObjectArrayElement, problem, func(env jnibridge.Env) {
		env.SetObjectArrayElement(a, i, v)
	})
}

// NewObjectArray allocates an array of n elements of class c, each set to
// fill (which may be null).
func (t *Thread) NewObjectArray(n int32, c jnibridge.Class, fill jnibridge.Object) jnibridge.Array {
	problem := ""
	switch {
	case c == 0:
		problem = nullClass
	case n < 0:
		problem = negativeSize
	}
	return invoke(t, OpNewObjectArray, problem, func(env jnibridge.Env) jnibridge.Array {
		return env.NewObjectArray(n, c, fill)
	})
}
