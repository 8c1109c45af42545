package jnibridge

import "fmt"

// Object is an opaque reference to a managed object. Zero is null.
type Object uintptr

// Class is a reference to a managed class object.
type Class Object

// String is a reference to a managed string object.
type String Object

// Array is a reference to a managed array object.
type Array Object

// Throwable is a reference to a managed throwable object.
type Throwable Object

// MethodID identifies a resolved method. Zero is the empty identifier.
type MethodID uintptr

// FieldID identifies a resolved field. Zero is the empty identifier.
type FieldID uintptr

// IsNull reports whether the reference is null.
func (o Object) IsNull() bool { return o == 0 }

// Status mirrors the integer codes returned by the invocation interface.
type Status int32

const (
	StatusOK       Status = 0
	StatusErr      Status = -1
	StatusDetached Status = -2
	StatusVersion  Status = -3
	StatusNoMemory Status = -4
	StatusExists   Status = -5
	StatusInvalid  Status = -6
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusErr:
		return "error"
	case StatusDetached:
		return "detached"
	case StatusVersion:
		return "unsupported version"
	case StatusNoMemory:
		return "out of memory"
	case StatusExists:
		return "already exists"
	case StatusInvalid:
		return "invalid argument"
	default:
		return "unknown status"
	}
}

// Version is an interface version number as passed to GetEnv.
type Version int32

const (
	Version1_1 Version = 0x00010001
	Version1_2 Version = 0x00010002
	Version1_4 Version = 0x00010004
	Version1_6 Version = 0x00010006
	Version1_8 Version = 0x00010008
	Version9   Version = 0x00090000
	Version10  Version = 0x000a0000
	Version19  Version = 0x00130000
	Version21  Version = 0x00150000
)

var versionNames = map[Version]string{
	Version1_1: "1.1",
	Version1_2: "1.2",
	Version1_4: "1.4",
	Version1_6: "1.6",
	Version1_8: "1.8",
	Version9:   "9",
	Version10:  "10",
	Version19:  "19",
	Version21:  "21",
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", int32(v))
}

// Known reports whether v is one of the defined interface versions.
func (v Version) Known() bool {
	_, ok := versionNames[v]
	return ok
}

// ParseVersion parses a version name such as "1.6" or "21".
func ParseVersion(s string) (Version, error) {
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown interface version %q", s)
}

// ReleaseMode controls how borrowed array elements are returned.
type ReleaseMode int32

const (
	// ReleaseCopyBack copies back the content and frees the buffer.
	ReleaseCopyBack ReleaseMode = 0
	// ReleaseCommit copies back the content without freeing the buffer.
	ReleaseCommit ReleaseMode = 1
	// ReleaseAbort frees the buffer without copying back.
	ReleaseAbort ReleaseMode = 2
)

// VM is the process-wide handle to the managed runtime.
type VM interface {
	// GetEnv returns the calling thread's environment, or StatusDetached
	// when the thread is not attached.
	GetEnv(version Version) (Env, Status)

	// AttachCurrentThread attaches the calling thread, returning the
	// existing environment if it is already attached.
	AttachCurrentThread() (Env, Status)

	// DetachCurrentThread detaches the calling thread.
	DetachCurrentThread() Status
}

// Env is the per-thread environment lent by the runtime while a thread is
// attached. Every method is a boundary call.
type Env interface {
	GetVersion() Version

	ExceptionCheck() bool
	ExceptionOccurred() Throwable
	ExceptionClear()
	Throw(t Throwable) Status
	ThrowNew(c Class, message string) Status
	// FatalError does not return.
	FatalError(message string)

	FindClass(name string) Class
	GetObjectClass(o Object) Class
	IsInstanceOf(o Object, c Class) bool
	IsSameObject(a, b Object) bool
	GetMethodID(c Class, name, sig string) MethodID
	GetStaticMethodID(c Class, name, sig string) MethodID
	GetFieldID(c Class, name, sig string) FieldID
	GetStaticFieldID(c Class, name, sig string) FieldID
	NewObject(c Class, ctor MethodID, args []Value) Object

	PushLocalFrame(capacity int32) Status
	PopLocalFrame(result Object) Object
	NewLocalRef(o Object) Object
	DeleteLocalRef(o Object)
	NewGlobalRef(o Object) Object
	DeleteGlobalRef(o Object)

	NewStringUTF(s string) String
	GetStringUTFLength(s String) int32
	// GetStringUTFChars borrows the modified UTF-8 bytes of s. The buffer
	// must be returned with ReleaseStringUTFChars.
	GetStringUTFChars(s String) []byte
	ReleaseStringUTFChars(s String, chars []byte)

	GetArrayLength(a Array) int32
	NewObjectArray(length int32, elem Class, initial Object) Array
	GetObjectArrayElement(a Array, index int32) Object
	SetObjectArrayElement(a Array, index int32, value Object)

	// Kind-indexed operation table. The kind selects the typed entry
	// point; the caller guarantees it matches the member's declared type.
	CallMethod(k Kind, o Object, m MethodID, args []Value) Value
	CallNonvirtualMethod(k Kind, o Object, c Class, m MethodID, args []Value) Value
	CallStaticMethod(k Kind, c Class, m MethodID, args []Value) Value
	GetField(k Kind, o Object, f FieldID) Value
	SetField(k Kind, o Object, f FieldID, v Value)
	GetStaticField(k Kind, c Class, f FieldID) Value
	SetStaticField(k Kind, c Class, f FieldID, v Value)

	// Primitive array table. Element slices are typed by kind
	// ([]bool, []int8, []uint16, []int16, []int32, []int64, []float32,
	// []float64).
	NewPrimitiveArray(k Kind, length int32) Array
	GetArrayElements(k Kind, a Array) any
	ReleaseArrayElements(k Kind, a Array, elems any, mode ReleaseMode)
	GetArrayRegion(k Kind, a Array, start, length int32, buf any)
	SetArrayRegion(k Kind, a Array, start, length int32, buf any)
}
