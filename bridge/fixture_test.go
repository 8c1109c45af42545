package bridge

import (
	goerrors "errors"
	"sync/atomic"
	"testing"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/simvm"
)

const fixtureClass = "test/Fixture"

var primitiveLetters = []string{"Z", "B", "C", "S", "I", "J", "F", "D"}

type fixture struct {
	vm    *simvm.VM
	b     *Bridge
	calls atomic.Int64
}

func echo(_ *simvm.Env, _ jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
	return args[0], nil
}

func newFixture(t testing.TB, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{vm: simvm.New()}
	f.b = New(f.vm, opts...)
	f.define(t)
	return f
}

func (f *fixture) define(t testing.TB) {
	t.Helper()
	count := func(fn simvm.MethodFunc) simvm.MethodFunc {
		return func(env *simvm.Env, this jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
			f.calls.Add(1)
			return fn(env, this, args)
		}
	}
	cb := f.vm.DefineClass(fixtureClass, "").
		StaticMethod("answer", "()I", count(func(*simvm.Env, jnibridge.Object, []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.IntValue(42), nil
		})).
		StaticMethod("boom", "()I", count(func(*simvm.Env, jnibridge.Object, []jnibridge.Value) (jnibridge.Value, error) {
			return 0, simvm.Throw(simvm.ClassIllegalState, "boom")
		})).
		StaticMethod("touch", "()V", count(func(*simvm.Env, jnibridge.Object, []jnibridge.Value) (jnibridge.Value, error) {
			return 0, nil
		})).
		Method("itouch", "()V", count(func(*simvm.Env, jnibridge.Object, []jnibridge.Value) (jnibridge.Value, error) {
			return 0, nil
		})).
		StaticMethod("greet", "(Ljava/lang/String;)Ljava/lang/String;", func(env *simvm.Env, _ jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
			return env.NewString("hello " + env.GoString(jnibridge.String(args[0].Object()))), nil
		})

	for _, l := range append(primitiveLetters, "L") {
		desc := l
		if l == "L" {
			desc = "Ljava/lang/Object;"
		}
		cb = cb.Field("f"+l, desc).
			StaticField("s"+l, desc, 0).
			StaticMethod("echo"+l, "("+desc+")"+desc, echo).
			Method("iecho"+l, "("+desc+")"+desc, echo)
	}
	if _, err := cb.Build(); err != nil {
		t.Fatalf("define fixture: %v", err)
	}
}

// attach opens a scope on the calling goroutine. Callers close it.
func (f *fixture) attach(t testing.TB) (*Thread, *ThreadScope) {
	t.Helper()
	scope, err := f.b.AttachScope()
	if err != nil {
		t.Fatalf("AttachScope: %v", err)
	}
	return scope.Thread(), scope
}

func (f *fixture) statics(t testing.TB, th *Thread, name, desc string) (jnibridge.Class, jnibridge.MethodID) {
	t.Helper()
	cls := th.FindClass(fixtureClass)
	id := th.GetStaticMethodID(cls, name, desc)
	if cls == 0 || id == 0 {
		t.Fatalf("lookup %s%s: %s", name, desc, th.ErrorMessage())
	}
	return cls, id
}

func (f *fixture) instance(t testing.TB, th *Thread) jnibridge.Object {
	t.Helper()
	cls := th.FindClass(fixtureClass)
	obj := th.NewObject(cls, th.GetMethodID(cls, "<init>", "()V"), nil)
	if obj == 0 {
		t.Fatalf("new fixture: %s", th.ErrorMessage())
	}
	return obj
}

// leakyVM hands out environments whose static calls return 99 even when the
// call left an exception pending.
type leakyVM struct{ *simvm.VM }

type leakyEnv struct{ jnibridge.Env }

func (v leakyVM) GetEnv(ver jnibridge.Version) (jnibridge.Env, jnibridge.Status) {
	env, st := v.VM.GetEnv(ver)
	if env == nil {
		return nil, st
	}
	return leakyEnv{env}, st
}

func (v leakyVM) AttachCurrentThread() (jnibridge.Env, jnibridge.Status) {
	env, st := v.VM.AttachCurrentThread()
	if env == nil {
		return nil, st
	}
	return leakyEnv{env}, st
}

func (e leakyEnv) CallStaticMethod(k jnibridge.Kind, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	e.Env.CallStaticMethod(k, c, m, args)
	return jnibridge.IntValue(99)
}

func errKind(err error) errors.Kind {
	var e *errors.Error
	if goerrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
