package bridge

import (
	"fmt"
	"sync"
	"testing"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/simvm"
)

func TestNestedScopesDetachOnce(t *testing.T) {
	f := newFixture(t)

	outer, err := f.b.AttachScope()
	if err != nil {
		t.Fatal(err)
	}
	if !outer.Owner() {
		t.Error("outer scope does not own the attachment")
	}
	inner, err := f.b.AttachScope()
	if err != nil {
		t.Fatal(err)
	}
	if inner.Owner() {
		t.Error("inner scope owns the attachment")
	}
	if inner.Thread() != outer.Thread() {
		t.Error("nested scopes see different thread contexts")
	}

	if err := inner.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.b.GetEnvironment(); !ok {
		t.Fatal("inner Close detached the thread")
	}
	if n := f.vm.Threads(); n != 1 {
		t.Errorf("Threads() = %d after inner Close", n)
	}

	if err := outer.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.b.GetEnvironment(); ok {
		t.Error("thread still attached after outer Close")
	}
	if err := outer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	st := f.vm.Stats()
	if st.Attaches != 1 || st.Detaches != 1 {
		t.Errorf("attaches %d, detaches %d, want 1 and 1", st.Attaches, st.Detaches)
	}
	if outer.Thread().Attached() {
		t.Error("thread context still holds an environment")
	}
}

func TestAttachCurrentThread(t *testing.T) {
	f := newFixture(t)

	if _, ok := f.b.GetEnvironment(); ok {
		t.Fatal("attached before AttachCurrentThread")
	}
	th, err := f.b.AttachCurrentThread()
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.b.AttachCurrentThread()
	if err != nil {
		t.Fatal(err)
	}
	if th != again {
		t.Error("second attach returned another context")
	}
	locks := th.locks
	if got, ok := f.b.GetEnvironment(); !ok || got != th {
		t.Error("GetEnvironment does not return the attached context")
	}
	if th.locks != locks {
		t.Errorf("GetEnvironment took a thread lock: %d -> %d", locks, th.locks)
	}
	if th.Bridge() != f.b || th.Env() == nil {
		t.Error("thread accessors")
	}

	if err := f.b.DetachCurrentThread(); err != nil {
		t.Fatal(err)
	}
	if th.Attached() {
		t.Error("still attached")
	}

	// A stale context fails every operation with AttachFailed.
	if c := th.FindClass(fixtureClass); c != 0 {
		t.Errorf("FindClass on a detached thread = %d", c)
	}
	if e := th.CheckError(); e != AttachFailed {
		t.Errorf("errno %v, want %v", e, AttachFailed)
	}
	if errKind(th.Err()) != "" {
		t.Errorf("record not reset: %v", th.Err())
	}
	if th.PeekPendingFailure() {
		t.Error("detached thread reports a pending failure")
	}
}

func TestAttachFailure(t *testing.T) {
	f := newFixture(t)
	f.vm.FailAttach(true)

	th, err := f.b.AttachCurrentThread()
	if err == nil || th != nil {
		t.Fatalf("attach succeeded: %v %v", th, err)
	}
	if errKind(err) != errors.KindAttachFailed {
		t.Errorf("error kind %q", errKind(err))
	}
	if _, err := f.b.AttachScope(); err == nil {
		t.Error("AttachScope succeeded")
	}
	if err := f.b.WithThread(func(*Thread) error { return nil }); err == nil {
		t.Error("WithThread succeeded")
	}

	f.vm.FailAttach(false)
	if err := f.b.WithThread(func(*Thread) error { return nil }); err != nil {
		t.Errorf("WithThread after recovery: %v", err)
	}
}

func TestWithThread(t *testing.T) {
	f := newFixture(t)
	sentinel := fmt.Errorf("sentinel")

	err := f.b.WithThread(func(th *Thread) error {
		if !th.Attached() {
			t.Error("not attached inside WithThread")
		}
		return sentinel
	})
	if err != sentinel {
		t.Errorf("err = %v, want sentinel", err)
	}
	if _, ok := f.b.GetEnvironment(); ok {
		t.Error("WithThread left the thread attached")
	}
	if f.vm.Threads() != 0 {
		t.Errorf("Threads() = %d", f.vm.Threads())
	}
}

func TestErrorRecordsArePerThread(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(fail bool) {
			defer wg.Done()
			errs <- f.b.WithThread(func(th *Thread) error {
				cls := th.FindClass(fixtureClass)
				answer := th.GetStaticMethodID(cls, "answer", "()I")
				boom := th.GetStaticMethodID(cls, "boom", "()I")
				for j := 0; j < 200; j++ {
					if fail {
						Int.CallStaticMethod(th, cls, boom, nil)
						if e := th.CheckError(); e != ExceptionThrown {
							return fmt.Errorf("failing worker saw %v", e)
						}
						continue
					}
					if v := Int.CallStaticMethod(th, cls, answer, nil); v != 42 {
						return fmt.Errorf("answer() = %d", v)
					}
					if e := th.CheckError(); e != NoError {
						return fmt.Errorf("clean worker saw %v: %s", e, th.ErrorMessage())
					}
				}
				return nil
			})
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}

	st := f.vm.Stats()
	if st.LiveGlobals != 0 || st.LiveLocals != 0 {
		t.Errorf("leaked references: %d globals, %d locals", st.LiveGlobals, st.LiveLocals)
	}
	if f.vm.Threads() != 0 {
		t.Errorf("Threads() = %d", f.vm.Threads())
	}
}

func TestRuntimeHandle(t *testing.T) {
	runtimeHandle.Store(nil)
	defer runtimeHandle.Store(nil)

	mustPanic(t, "Runtime", func() { Runtime() })
	mustPanic(t, "AttachCurrentThread", func() { AttachCurrentThread() })
	mustPanic(t, "New(nil)", func() { New(nil) })

	vm := simvm.New()
	b := Initialize(vm)
	if Runtime() != b || b.VM() != vm {
		t.Fatal("Runtime() does not return the initialized bridge")
	}
	mustPanic(t, "second Initialize", func() { Initialize(vm) })

	scope, err := Attach()
	if err != nil {
		t.Fatal(err)
	}
	if th, ok := GetEnvironment(); !ok || th != scope.Thread() {
		t.Error("GetEnvironment after Attach")
	}
	if err := scope.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := GetEnvironment(); ok {
		t.Error("still attached")
	}

	th, err := AttachCurrentThread()
	if err != nil || !th.Attached() {
		t.Fatalf("AttachCurrentThread: %v", err)
	}
	if err := DetachCurrentThread(); err != nil {
		t.Fatal(err)
	}
}

func TestFatalErrorPanics(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	mustPanic(t, "FatalError", func() { th.FatalError("stop") })
}
