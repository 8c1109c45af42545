//go:build jni && cgo

package jni

// #include "helpers.h"
import "C"

import (
	"unsafe"

	jnibridge "github.com/wippyai/jni-bridge"
)

// Env is one thread's JNIEnv. References and IDs cross as the raw C
// pointer values.
type Env struct {
	env *C.JNIEnv
}

var _ jnibridge.Env = (*Env)(nil)

func ref(o jnibridge.Object) C.jobject     { return C.jobject(unsafe.Pointer(uintptr(o))) }
func cls(c jnibridge.Class) C.jclass       { return C.jclass(unsafe.Pointer(uintptr(c))) }
func arr(a jnibridge.Array) C.jarray       { return C.jarray(unsafe.Pointer(uintptr(a))) }
func str(s jnibridge.String) C.jstring     { return C.jstring(unsafe.Pointer(uintptr(s))) }
func mid(m jnibridge.MethodID) C.jmethodID { return C.jmethodID(unsafe.Pointer(uintptr(m))) }
func fid(f jnibridge.FieldID) C.jfieldID   { return C.jfieldID(unsafe.Pointer(uintptr(f))) }

func object(p C.jobject) jnibridge.Object { return jnibridge.Object(uintptr(unsafe.Pointer(p))) }

// jvalues views args as a jvalue array. Value holds the little-endian bit
// pattern of the matching jvalue member.
func jvalues(args []jnibridge.Value) *C.jvalue {
	if len(args) == 0 {
		return nil
	}
	return (*C.jvalue)(unsafe.Pointer(&args[0]))
}

func (e *Env) GetVersion() jnibridge.Version {
	return jnibridge.Version(C.env_version(e.env))
}

func (e *Env) ExceptionCheck() bool {
	return C.env_exception_check(e.env) == C.JNI_TRUE
}

func (e *Env) ExceptionOccurred() jnibridge.Throwable {
	return jnibridge.Throwable(object(C.jobject(C.env_exception_occurred(e.env))))
}

func (e *Env) ExceptionClear() {
	C.env_exception_clear(e.env)
}

func (e *Env) Throw(t jnibridge.Throwable) jnibridge.Status {
	return jnibridge.Status(C.env_throw(e.env, C.jthrowable(ref(jnibridge.Object(t)))))
}

func (e *Env) ThrowNew(c jnibridge.Class, message string) jnibridge.Status {
	cmsg := C.CString(message)
	defer C.free(unsafe.Pointer(cmsg))
	return jnibridge.Status(C.env_throw_new(e.env, cls(c), cmsg))
}

func (e *Env) FatalError(message string) {
	cmsg := C.CString(message)
	C.env_fatal_error(e.env, cmsg)
}

func (e *Env) FindClass(name string) jnibridge.Class {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return jnibridge.Class(object(C.jobject(C.env_find_class(e.env, cname))))
}

func (e *Env) GetObjectClass(o jnibridge.Object) jnibridge.Class {
	return jnibridge.Class(object(C.jobject(C.env_get_object_class(e.env, ref(o)))))
}

func (e *Env) IsInstanceOf(o jnibridge.Object, c jnibridge.Class) bool {
	return C.env_is_instance_of(e.env, ref(o), cls(c)) == C.JNI_TRUE
}

func (e *Env) IsSameObject(a, b jnibridge.Object) bool {
	return C.env_is_same_object(e.env, ref(a), ref(b)) == C.JNI_TRUE
}

type memberLookup[T any] func(*C.JNIEnv, C.jclass, *C.char, *C.char) T

func lookup[T any](e *Env, fn memberLookup[T], c jnibridge.Class, name, sig string) T {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	csig := C.CString(sig)
	defer C.free(unsafe.Pointer(csig))
	return fn(e.env, cls(c), cname, csig)
}

func getMethodID(e *C.JNIEnv, c C.jclass, n, s *C.char) C.jmethodID {
	return C.env_get_method_id(e, c, n, s)
}

func getStaticMethodID(e *C.JNIEnv, c C.jclass, n, s *C.char) C.jmethodID {
	return C.env_get_static_method_id(e, c, n, s)
}

func getFieldID(e *C.JNIEnv, c C.jclass, n, s *C.char) C.jfieldID {
	return C.env_get_field_id(e, c, n, s)
}

func getStaticFieldID(e *C.JNIEnv, c C.jclass, n, s *C.char) C.jfieldID {
	return C.env_get_static_field_id(e, c, n, s)
}

func (e *Env) GetMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return jnibridge.MethodID(uintptr(unsafe.Pointer(lookup(e, getMethodID, c, name, sig))))
}

func (e *Env) GetStaticMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return jnibridge.MethodID(uintptr(unsafe.Pointer(lookup(e, getStaticMethodID, c, name, sig))))
}

func (e *Env) GetFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return jnibridge.FieldID(uintptr(unsafe.Pointer(lookup(e, getFieldID, c, name, sig))))
}

func (e *Env) GetStaticFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return jnibridge.FieldID(uintptr(unsafe.Pointer(lookup(e, getStaticFieldID, c, name, sig))))
}

func (e *Env) NewObject(c jnibridge.Class, ctor jnibridge.MethodID, args []jnibridge.Value) jnibridge.Object {
	return object(C.env_new_object(e.env, cls(c), mid(ctor), jvalues(args)))
}

func (e *Env) PushLocalFrame(capacity int32) jnibridge.Status {
	return jnibridge.Status(C.env_push_local_frame(e.env, C.jint(capacity)))
}

func (e *Env) PopLocalFrame(result jnibridge.Object) jnibridge.Object {
	return object(C.env_pop_local_frame(e.env, ref(result)))
}

func (e *Env) NewLocalRef(o jnibridge.Object) jnibridge.Object {
	return object(C.env_new_local_ref(e.env, ref(o)))
}

func (e *Env) DeleteLocalRef(o jnibridge.Object) {
	C.env_delete_local_ref(e.env, ref(o))
}

func (e *Env) NewGlobalRef(o jnibridge.Object) jnibridge.Object {
	return object(C.env_new_global_ref(e.env, ref(o)))
}

func (e *Env) DeleteGlobalRef(o jnibridge.Object) {
	C.env_delete_global_ref(e.env, ref(o))
}

func (e *Env) NewStringUTF(s string) jnibridge.String {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return jnibridge.String(object(C.jobject(C.env_new_string_utf(e.env, cs))))
}

func (e *Env) GetStringUTFLength(s jnibridge.String) int32 {
	return int32(C.env_get_string_utf_length(e.env, str(s)))
}

// GetStringUTFChars copies the characters into Go memory and returns the
// runtime's buffer at once, so ReleaseStringUTFChars has nothing to free.
func (e *Env) GetStringUTFChars(s jnibridge.String) []byte {
	chars := C.env_get_string_utf_chars(e.env, str(s))
	if chars == nil {
		return nil
	}
	n := C.env_get_string_utf_length(e.env, str(s))
	out := C.GoBytes(unsafe.Pointer(chars), C.int(n))
	C.env_release_string_utf_chars(e.env, str(s), chars)
	return out
}

func (e *Env) ReleaseStringUTFChars(jnibridge.String, []byte) {}

func (e *Env) GetArrayLength(a jnibridge.Array) int32 {
	return int32(C.env_get_array_length(e.env, arr(a)))
}

func (e *Env) NewObjectArray(length int32, elem jnibridge.Class, initial jnibridge.Object) jnibridge.Array {
	a := C.env_new_object_array(e.env, C.jsize(length), cls(elem), ref(initial))
	return jnibridge.Array(object(C.jobject(a)))
}

func (e *Env) GetObjectArrayElement(a jnibridge.Array, index int32) jnibridge.Object {
	return object(C.env_get_object_array_element(e.env, C.jobjectArray(arr(a)), C.jsize(index)))
}

func (e *Env) SetObjectArrayElement(a jnibridge.Array, index int32, value jnibridge.Object) {
	C.env_set_object_array_element(e.env, C.jobjectArray(arr(a)), C.jsize(index), ref(value))
}

func (e *Env) CallMethod(k jnibridge.Kind, o jnibridge.Object, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	return jnibridge.Value(C.env_call_method(e.env, C.int(k), ref(o), mid(m), jvalues(args)))
}

func (e *Env) CallNonvirtualMethod(k jnibridge.Kind, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	return jnibridge.Value(C.env_call_nonvirtual_method(e.env, C.int(k), ref(o), cls(c), mid(m), jvalues(args)))
}

func (e *Env) CallStaticMethod(k jnibridge.Kind, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	return jnibridge.Value(C.env_call_static_method(e.env, C.int(k), cls(c), mid(m), jvalues(args)))
}

func (e *Env) GetField(k jnibridge.Kind, o jnibridge.Object, f jnibridge.FieldID) jnibridge.Value {
	return jnibridge.Value(C.env_get_field(e.env, C.int(k), ref(o), fid(f)))
}

func (e *Env) SetField(k jnibridge.Kind, o jnibridge.Object, f jnibridge.FieldID, v jnibridge.Value) {
	C.env_set_field(e.env, C.int(k), ref(o), fid(f), C.jlong(v))
}

func (e *Env) GetStaticField(k jnibridge.Kind, c jnibridge.Class, f jnibridge.FieldID) jnibridge.Value {
	return jnibridge.Value(C.env_get_static_field(e.env, C.int(k), cls(c), fid(f)))
}

func (e *Env) SetStaticField(k jnibridge.Kind, c jnibridge.Class, f jnibridge.FieldID, v jnibridge.Value) {
	C.env_set_static_field(e.env, C.int(k), cls(c), fid(f), C.jlong(v))
}

func (e *Env) NewPrimitiveArray(k jnibridge.Kind, length int32) jnibridge.Array {
	return jnibridge.Array(object(C.jobject(C.env_new_primitive_array(e.env, C.int(k), C.jsize(length)))))
}

// GetArrayElements always copies. The copy is written back by
// ReleaseArrayElements unless the mode is ReleaseAbort.
func (e *Env) GetArrayElements(k jnibridge.Kind, a jnibridge.Array) any {
	n := e.GetArrayLength(a)
	buf := makeSlice(k, n)
	if buf != nil && n > 0 {
		C.env_get_array_region(e.env, C.int(k), arr(a), 0, C.jsize(n), slicePointer(buf))
	}
	return buf
}

func (e *Env) ReleaseArrayElements(k jnibridge.Kind, a jnibridge.Array, elems any, mode jnibridge.ReleaseMode) {
	if mode == jnibridge.ReleaseAbort {
		return
	}
	if n := sliceLen(elems); n > 0 {
		C.env_set_array_region(e.env, C.int(k), arr(a), 0, C.jsize(n), slicePointer(elems))
	}
}

func (e *Env) GetArrayRegion(k jnibridge.Kind, a jnibridge.Array, start, length int32, buf any) {
	C.env_get_array_region(e.env, C.int(k), arr(a), C.jsize(start), C.jsize(length), slicePointer(buf))
}

func (e *Env) SetArrayRegion(k jnibridge.Kind, a jnibridge.Array, start, length int32, buf any) {
	C.env_set_array_region(e.env, C.int(k), arr(a), C.jsize(start), C.jsize(length), slicePointer(buf))
}
