package bridge

import (
	"strings"
	"testing"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/simvm"
)

// nullParamCalls returns calls whose parameters are rejected before the
// runtime is reached. Non-null handles are never dereferenced.
func nullParamCalls[T comparable](d *BasicOp[T]) map[string]func(*Thread) T {
	var zero T
	return map[string]func(*Thread) T{
		"call null object":       func(th *Thread) T { return d.CallMethod(th, 0, 1, nil) },
		"call empty method":      func(th *Thread) T { return d.CallMethod(th, 1, 0, nil) },
		"nonvirtual null class":  func(th *Thread) T { return d.CallNonVirtualMethod(th, 1, 0, 1, nil) },
		"static null class":      func(th *Thread) T { return d.CallStaticMethod(th, 0, 1, nil) },
		"static empty method":    func(th *Thread) T { return d.CallStaticMethod(th, 1, 0, nil) },
		"get field null object":  func(th *Thread) T { return d.GetField(th, 0, 1) },
		"get field empty id":     func(th *Thread) T { return d.GetField(th, 1, 0) },
		"get static null class":  func(th *Thread) T { return d.GetStaticField(th, 0, 1) },
		"set field null object":  func(th *Thread) T { d.SetField(th, 0, 1, zero); return zero },
		"set static empty field": func(th *Thread) T { d.SetStaticField(th, 1, 0, zero); return zero },
	}
}

func arrayParamCalls[T comparable](d *PrimitiveOp[T]) map[string]func(*Thread) bool {
	return map[string]func(*Thread) bool{
		"new negative":        func(th *Thread) bool { return d.NewArray(th, -1) == 0 },
		"elements null array": func(th *Thread) bool { return d.GetArrayElements(th, 0) == nil },
		"release null array": func(th *Thread) bool {
			d.ReleaseArrayElements(th, 0, make([]T, 1), jnibridge.ReleaseCopyBack)
			return true
		},
		"release null buffer": func(th *Thread) bool {
			d.ReleaseArrayElements(th, 1, nil, jnibridge.ReleaseCopyBack)
			return true
		},
		"get region null array": func(th *Thread) bool {
			d.GetArrayRegion(th, 0, 0, 1, make([]T, 1))
			return true
		},
		"get region null buffer": func(th *Thread) bool {
			d.GetArrayRegion(th, 1, 0, 1, nil)
			return true
		},
		"get region empty null buffer": func(th *Thread) bool {
			d.GetArrayRegion(th, 1, 0, 0, nil)
			return true
		},
		"set region empty null buffer": func(th *Thread) bool {
			d.SetArrayRegion(th, 1, 0, 0, nil)
			return true
		},
		"set region negative start": func(th *Thread) bool {
			d.SetArrayRegion(th, 1, -1, 1, make([]T, 1))
			return true
		},
		"set region short buffer": func(th *Thread) bool {
			d.SetArrayRegion(th, 1, 0, 2, make([]T, 1))
			return true
		},
	}
}

func expectParameterErrors[T comparable](t *testing.T, f *fixture, d *BasicOp[T]) {
	t.Helper()
	th, scope := f.attach(t)
	defer scope.Close()

	var zero T
	for name, call := range nullParamCalls(d) {
		before := f.vm.Stats().Boundary
		if got := call(th); got != zero {
			t.Errorf("%s: got %v, want zero value", name, got)
		}
		if after := f.vm.Stats().Boundary; after != before {
			t.Errorf("%s: %d boundary calls, want none", name, after-before)
		}
		if e := th.CheckError(); e != ParameterError {
			t.Errorf("%s: errno %v, want %v", name, e, ParameterError)
		}
		if th.ErrorMessage() == "" {
			t.Errorf("%s: empty error message", name)
		}
	}
}

func expectArrayParameterErrors[T comparable](t *testing.T, f *fixture, d *PrimitiveOp[T]) {
	t.Helper()
	th, scope := f.attach(t)
	defer scope.Close()

	for name, call := range arrayParamCalls(d) {
		before := f.vm.Stats().Boundary
		if !call(th) {
			t.Errorf("%s: non-zero result", name)
		}
		if after := f.vm.Stats().Boundary; after != before {
			t.Errorf("%s: %d boundary calls, want none", name, after-before)
		}
		if e := th.CheckError(); e != ParameterError {
			t.Errorf("%s: errno %v, want %v", name, e, ParameterError)
		}
	}
}

func TestParameterErrorsSkipRuntime(t *testing.T) {
	f := newFixture(t)

	t.Run("boolean", func(t *testing.T) {
		expectParameterErrors(t, f, &Boolean.BasicOp)
		expectArrayParameterErrors(t, f, Boolean)
	})
	t.Run("byte", func(t *testing.T) {
		expectParameterErrors(t, f, &Byte.BasicOp)
		expectArrayParameterErrors(t, f, Byte)
	})
	t.Run("char", func(t *testing.T) {
		expectParameterErrors(t, f, &Char.BasicOp)
		expectArrayParameterErrors(t, f, Char)
	})
	t.Run("short", func(t *testing.T) {
		expectParameterErrors(t, f, &Short.BasicOp)
		expectArrayParameterErrors(t, f, Short)
	})
	t.Run("int", func(t *testing.T) {
		expectParameterErrors(t, f, &Int.BasicOp)
		expectArrayParameterErrors(t, f, Int)
	})
	t.Run("long", func(t *testing.T) {
		expectParameterErrors(t, f, &Long.BasicOp)
		expectArrayParameterErrors(t, f, Long)
	})
	t.Run("float", func(t *testing.T) {
		expectParameterErrors(t, f, &Float.BasicOp)
		expectArrayParameterErrors(t, f, Float)
	})
	t.Run("double", func(t *testing.T) {
		expectParameterErrors(t, f, &Double.BasicOp)
		expectArrayParameterErrors(t, f, Double)
	})
	t.Run("object", func(t *testing.T) {
		expectParameterErrors(t, f, Object)
	})
	t.Run("dynamic", func(t *testing.T) {
		expectParameterErrors(t, f, Dynamic(jnibridge.KindLong))
	})
	t.Run("void", func(t *testing.T) {
		th, scope := f.attach(t)
		defer scope.Close()

		calls := map[string]func(){
			"call":       func() { Void.CallMethod(th, 0, 1, nil) },
			"nonvirtual": func() { Void.CallNonVirtualMethod(th, 1, 1, 0, nil) },
			"static":     func() { Void.CallStaticMethod(th, 0, 1, nil) },
		}
		for name, call := range calls {
			before := f.vm.Stats().Boundary
			call()
			if f.vm.Stats().Boundary != before {
				t.Errorf("%s reached the runtime", name)
			}
			if e := th.CheckError(); e != ParameterError {
				t.Errorf("%s: errno %v, want %v", name, e, ParameterError)
			}
		}
	})
}

func TestPrimitiveParameterErrors(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	tests := []struct {
		name string
		call func()
	}{
		{"find class empty", func() { th.FindClass("") }},
		{"method id null class", func() { th.GetMethodID(0, "foo", "()V") }},
		{"method id empty name", func() { th.GetMethodID(1, "", "()V") }},
		{"field id empty sig", func() { th.GetFieldID(1, "count", "") }},
		{"static method id null class", func() { th.GetStaticMethodID(0, "foo", "()V") }},
		{"static field id null class", func() { th.GetStaticFieldID(0, "foo", "I") }},
		{"new object null class", func() { th.NewObject(0, 1, nil) }},
		{"object class null", func() { th.GetObjectClass(0) }},
		{"instance of null class", func() { th.IsInstanceOf(1, 0) }},
		{"new global null", func() { th.NewGlobalRef(0) }},
		{"delete global null", func() { th.DeleteGlobalRef(0) }},
		{"delete local null", func() { th.DeleteLocalRef(0) }},
		{"new local null", func() { th.NewLocalRef(0) }},
		{"string length null", func() { th.GetStringUTFLength(0) }},
		{"string chars null", func() { th.GetStringUTFChars(0) }},
		{"release chars null", func() { th.ReleaseStringUTFChars(0, nil) }},
		{"array length null", func() { th.GetArrayLength(0) }},
		{"get element null", func() { th.GetObjectArrayElement(0, 0) }},
		{"set element null", func() { th.SetObjectArrayElement(0, 0, 0) }},
		{"object array null class", func() { th.NewObjectArray(1, 0, 0) }},
		{"object array negative", func() { th.NewObjectArray(-1, 1, 0) }},
		{"throw null", func() { th.Throw(0) }},
		{"throw new null class", func() { th.ThrowNew(0, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.vm.Stats().Boundary
			tt.call()
			if f.vm.Stats().Boundary != before {
				t.Error("parameter error reached the runtime")
			}
			if e := th.PeekError(); e != ParameterError {
				t.Errorf("PeekError = %v, want %v", e, ParameterError)
			}
			if e := th.PeekError(); e != ParameterError {
				t.Errorf("second PeekError = %v, want %v", e, ParameterError)
			}
			if errKind(th.Err()) != errors.KindInvalidParameter {
				t.Errorf("Err() = %v", th.Err())
			}
			th.CheckError()
			if e := th.PeekError(); e != NoError {
				t.Errorf("after CheckError = %v", e)
			}
		})
	}
}

func TestCallSucceeds(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	cls, answer := f.statics(t, th, "answer", "()I")
	if got := Int.CallStaticMethod(th, cls, answer, nil); got != 42 {
		t.Errorf("answer() = %d, want 42", got)
	}
	if e := th.CheckError(); e != NoError {
		t.Errorf("errno %v: %s", e, th.ErrorMessage())
	}
	if th.Err() != nil {
		t.Errorf("Err() = %v", th.Err())
	}

	if got := Dynamic(jnibridge.KindInt).CallStaticMethod(th, cls, answer, nil); got.Int() != 42 {
		t.Errorf("dynamic answer() = %d", got.Int())
	}

	greet := th.GetStaticMethodID(cls, "greet", "(Ljava/lang/String;)Ljava/lang/String;")
	name := th.NewStringUTF("bridge")
	s := jnibridge.String(Object.CallStaticMethod(th, cls, greet, jnibridge.NewArgs().Object(jnibridge.Object(name))))
	if got := th.GoString(s); got != "hello bridge" {
		t.Errorf("greet = %q", got)
	}
	if n := th.GetStringUTFLength(s); n != int32(len("hello bridge")) {
		t.Errorf("length = %d", n)
	}
}

func TestCallThrows(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	cls, boom := f.statics(t, th, "boom", "()I")
	if got := Int.CallStaticMethod(th, cls, boom, nil); got != 0 {
		t.Errorf("boom() = %d, want 0", got)
	}
	if e := th.PeekError(); e != ExceptionThrown {
		t.Fatalf("errno %v, want %v", e, ExceptionThrown)
	}
	if msg := th.ErrorMessage(); msg != "java.lang.IllegalStateException: boom" {
		t.Errorf("message = %q", msg)
	}
	if errKind(th.Err()) != errors.KindExceptionThrown {
		t.Errorf("Err() = %v", th.Err())
	}
	if th.PeekPendingFailure() {
		t.Error("exception still pending after translation")
	}

	// The record is reset by the next successful operation.
	_, answer := f.statics(t, th, "answer", "()I")
	Int.CallStaticMethod(th, cls, answer, nil)
	if e := th.CheckError(); e != NoError {
		t.Errorf("errno after success = %v", e)
	}
}

func TestLookupFailureIsTranslated(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	cls := th.FindClass(fixtureClass)
	if id := th.GetMethodID(cls, "missing", "()V"); id != 0 {
		t.Errorf("GetMethodID = %d", id)
	}
	if e := th.CheckError(); e != ExceptionThrown {
		t.Errorf("errno %v", e)
	}
	if msg := th.ErrorMessage(); msg != "java.lang.NoSuchMethodError: test.Fixture.missing()V" {
		t.Errorf("message = %q", msg)
	}

	if c := th.FindClass("no/such/Class"); c != 0 {
		t.Errorf("FindClass = %d", c)
	}
	if !strings.HasPrefix(th.ErrorMessage(), "java.lang.NoClassDefFoundError") {
		t.Errorf("message = %q", th.ErrorMessage())
	}
}

func TestPendingExceptionSkipsCall(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	cls, answer := f.statics(t, th, "answer", "()I")
	iae := th.FindClass(simvm.ClassIllegalArgument)
	th.ThrowNew(iae, "earlier")
	if e := th.CheckError(); e != NoError {
		t.Fatalf("ThrowNew recorded %v", e)
	}
	if !th.PeekPendingFailure() {
		t.Fatal("ThrowNew left nothing pending")
	}

	before := f.calls.Load()
	if got := Int.CallStaticMethod(th, cls, answer, nil); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if f.calls.Load() != before {
		t.Error("method ran with an exception pending")
	}
	if e := th.CheckError(); e != ExceptionThrown {
		t.Errorf("errno %v, want %v", e, ExceptionThrown)
	}
	if msg := th.ErrorMessage(); msg != "java.lang.IllegalArgumentException: earlier" {
		t.Errorf("message = %q", msg)
	}
	if th.PeekPendingFailure() {
		t.Error("pending exception was not cleared")
	}
}

func TestPolicy(t *testing.T) {
	t.Run("default allows cleanup", func(t *testing.T) {
		tests := []struct {
			name string
			run  func(t *testing.T, f *fixture, th *Thread, throw func())
		}{
			{"delete local", func(t *testing.T, f *fixture, th *Thread, throw func()) {
				s := th.NewStringUTF("tmp")
				live := f.vm.Stats().LiveLocals
				throw()
				th.DeleteLocalRef(jnibridge.Object(s))
				if got := f.vm.Stats().LiveLocals; got != live-1 {
					t.Errorf("LiveLocals = %d, want %d", got, live-1)
				}
			}},
			{"delete global", func(t *testing.T, f *fixture, th *Thread, throw func()) {
				g := th.NewGlobalRef(jnibridge.Object(th.NewStringUTF("tmp")))
				live := f.vm.Stats().LiveGlobals
				throw()
				th.DeleteGlobalRef(g)
				if got := f.vm.Stats().LiveGlobals; got != live-1 {
					t.Errorf("LiveGlobals = %d, want %d", got, live-1)
				}
			}},
			{"release array elements", func(t *testing.T, f *fixture, th *Thread, throw func()) {
				arr := Int.NewArray(th, 2)
				elems := Int.GetArrayElements(th, arr)
				ops := f.vm.Stats().ArrayOps
				throw()
				Int.ReleaseArrayElements(th, arr, elems, jnibridge.ReleaseCopyBack)
				if got := f.vm.Stats().ArrayOps; got != ops+1 {
					t.Errorf("ArrayOps = %d, want %d", got, ops+1)
				}
			}},
			{"release string chars", func(t *testing.T, f *fixture, th *Thread, throw func()) {
				s := th.NewStringUTF("tmp")
				chars := th.GetStringUTFChars(s)
				throw()
				th.ReleaseStringUTFChars(s, chars)
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				th, scope := f.attach(t)
				defer scope.Close()

				iae := th.FindClass(simvm.ClassIllegalArgument)
				tt.run(t, f, th, func() { th.ThrowNew(iae, "pending") })

				if e := th.PeekError(); e != NoError {
					t.Errorf("PeekError = %v, want %v", e, NoError)
				}
				if !th.PeekPendingFailure() {
					t.Fatal("pending exception was consumed")
				}
				e, msg := th.TakePendingFailure()
				if e != ExceptionThrown || msg != "java.lang.IllegalArgumentException: pending" {
					t.Errorf("TakePendingFailure = %v %q", e, msg)
				}
			})
		}
	})

	t.Run("strict skips cleanup", func(t *testing.T) {
		f := newFixture(t, WithPolicy(StrictPolicy()))
		th, scope := f.attach(t)
		defer scope.Close()

		iae := th.FindClass(simvm.ClassIllegalArgument)
		s := th.NewStringUTF("tmp")
		th.ThrowNew(iae, "pending")
		live := f.vm.Stats().LiveLocals
		th.DeleteLocalRef(jnibridge.Object(s))
		if th.GoString(s) != "tmp" {
			t.Error("string was deleted")
		}
		if got := f.vm.Stats().LiveLocals; got != live {
			t.Errorf("LiveLocals = %d, want %d", got, live)
		}
	})

	t.Run("allowed call still discards result", func(t *testing.T) {
		f := newFixture(t, WithPolicy(DefaultPolicy().AllowPending(OpCallStaticMethod)))
		th, scope := f.attach(t)
		defer scope.Close()

		cls, answer := f.statics(t, th, "answer", "()I")
		iae := th.FindClass(simvm.ClassIllegalArgument)
		th.ThrowNew(iae, "pending")
		before := f.calls.Load()
		if got := Int.CallStaticMethod(th, cls, answer, nil); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
		if f.calls.Load() != before+1 {
			t.Error("allowed call did not run")
		}
		if e := th.PeekError(); e != NoError {
			t.Errorf("errno %v", e)
		}
		if !th.PeekPendingFailure() {
			t.Error("pending exception was consumed")
		}
	})

	t.Run("checks", func(t *testing.T) {
		def := DefaultPolicy()
		allowed := map[Operation]bool{
			OpReleaseArrayElements:  true,
			OpReleaseStringUTFChars: true,
			OpDeleteGlobalRef:       true,
			OpDeleteLocalRef:        true,
			OpPushLocalFrame:        true,
			OpPopLocalFrame:         true,
		}
		strict := StrictPolicy()
		for _, op := range Operations() {
			if got := def.CheckPending(op); got == allowed[op] {
				t.Errorf("default CheckPending(%s) = %v", op, got)
			}
			if !strict.CheckPending(op) {
				t.Errorf("strict CheckPending(%s) = false", op)
			}
		}
		p := def.RequireClean(OpDeleteLocalRef)
		if !p.CheckPending(OpDeleteLocalRef) {
			t.Error("RequireClean had no effect")
		}
		if def.CheckPending(OpDeleteLocalRef) {
			t.Error("RequireClean modified the receiver")
		}
		if !def.CheckPending(opCount + 3) {
			t.Error("unknown operations must be checked")
		}
	})
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations() {
		got, ok := ParseOperation(op.String())
		if !ok || got != op {
			t.Errorf("ParseOperation(%q) = %v, %v", op.String(), got, ok)
		}
	}
	if _, ok := ParseOperation("call-everything"); ok {
		t.Error("unknown name parsed")
	}
	if s := Operation(200).String(); s != "op(200)" {
		t.Errorf("String() = %q", s)
	}
}

func TestFailedCallDiscardsResult(t *testing.T) {
	vm := leakyVM{simvm.New()}
	f := &fixture{vm: vm.VM}
	f.define(t)
	f.b = New(vm)

	th, scope := f.attach(t)
	defer scope.Close()

	cls, answer := f.statics(t, th, "answer", "()I")
	if got := Int.CallStaticMethod(th, cls, answer, nil); got != 99 {
		t.Fatalf("leaky answer() = %d, want 99", got)
	}
	_, boom := f.statics(t, th, "boom", "()I")
	if got := Int.CallStaticMethod(th, cls, boom, nil); got != 0 {
		t.Errorf("failed call returned %d", got)
	}
	if e := th.CheckError(); e != ExceptionThrown {
		t.Errorf("errno %v", e)
	}
}

func TestNilThread(t *testing.T) {
	var th *Thread
	if got := Int.CallStaticMethod(th, 1, 1, nil); got != 0 {
		t.Errorf("got %d", got)
	}
	if th.Attached() {
		t.Error("nil thread attached")
	}
	if e, _ := th.TakePendingFailure(); e != AttachFailed {
		t.Errorf("TakePendingFailure = %v", e)
	}
}

func TestDescriptors(t *testing.T) {
	if n := len(Kinds()); n != 10 {
		t.Fatalf("len(Kinds()) = %d", n)
	}
	for _, k := range Kinds() {
		d := Descriptor(k)
		if d == nil {
			t.Errorf("no descriptor for %s", k)
			continue
		}
		if got := d.(interface{ Kind() jnibridge.Kind }).Kind(); got != k {
			t.Errorf("Descriptor(%s).Kind() = %s", k, got)
		}
		if Dynamic(k).Kind() != k {
			t.Errorf("Dynamic(%s) has the wrong kind", k)
		}
	}
	if _, ok := Descriptor(jnibridge.KindInt).(*PrimitiveOp[int32]); !ok {
		t.Error("int descriptor is not *PrimitiveOp[int32]")
	}
	if _, ok := Descriptor(jnibridge.KindObject).(*BasicOp[jnibridge.Object]); !ok {
		t.Error("object descriptor is not *BasicOp[Object]")
	}
	if _, ok := Descriptor(jnibridge.KindVoid).(*VoidOp); !ok {
		t.Error("void descriptor is not *VoidOp")
	}
	if Descriptor(jnibridge.Kind(42)) != nil || Dynamic(jnibridge.Kind(42)) != nil {
		t.Error("unknown kind has a descriptor")
	}
}

func TestErrnoString(t *testing.T) {
	tests := map[Errno]string{
		NoError:         "no error",
		AttachFailed:    "attach failed",
		ParameterError:  "parameter error",
		ExceptionThrown: "exception thrown",
		Errno(9):        "unknown",
	}
	for e, want := range tests {
		if e.String() != want {
			t.Errorf("%d.String() = %q", e, e.String())
		}
	}
}
