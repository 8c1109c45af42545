package bridge

import (
	"testing"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/simvm"
)

func TestTakePendingFailure(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	if e, msg := th.TakePendingFailure(); e != NoError || msg != "" {
		t.Errorf("nothing pending: %v %q", e, msg)
	}

	iae := th.FindClass(simvm.ClassIllegalArgument)
	if st := th.ThrowNew(iae, "bad"); st != jnibridge.StatusOK {
		t.Fatalf("ThrowNew = %s", st)
	}
	if !th.PeekPendingFailure() || !th.PeekPendingFailure() {
		t.Fatal("PeekPendingFailure must not clear")
	}
	e, msg := th.TakePendingFailure()
	if e != ExceptionThrown || msg != "java.lang.IllegalArgumentException: bad" {
		t.Errorf("TakePendingFailure = %v %q", e, msg)
	}
	if th.PeekPendingFailure() {
		t.Error("still pending")
	}
}

func TestExtractPendingThrowable(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	iae := th.FindClass(simvm.ClassIllegalArgument)
	rte := th.FindClass(simvm.ClassRuntimeException)
	npe := th.FindClass(simvm.ClassNullPointer)
	th.ThrowNew(iae, "bad")

	if thr := th.ExtractThrowable(npe); thr != 0 {
		t.Error("extracted a throwable of the wrong class")
	}
	if !th.PeekPendingFailure() {
		t.Fatal("mismatched extraction cleared the exception")
	}

	thr := th.ExtractThrowable(rte)
	if thr == 0 {
		t.Fatal("no throwable extracted")
	}
	if th.PeekPendingFailure() {
		t.Error("extraction left the exception pending")
	}
	if !th.IsInstanceOf(jnibridge.Object(thr), iae) {
		t.Error("extracted throwable has the wrong class")
	}

	// Rethrowing makes it pending again.
	if st := th.Throw(thr); st != jnibridge.StatusOK {
		t.Errorf("Throw = %s", st)
	}
	if e, _ := th.TakePendingFailure(); e != ExceptionThrown {
		t.Errorf("after rethrow: %v", e)
	}
}

func TestExtractKeptThrowable(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	ise := th.FindClass(simvm.ClassIllegalState)
	npe := th.FindClass(simvm.ClassNullPointer)
	cls, boom := f.statics(t, th, "boom", "()I")

	Int.CallStaticMethod(th, cls, boom, nil)
	if th.CheckError() != ExceptionThrown {
		t.Fatal("boom() did not fail")
	}
	if n := f.vm.Stats().LiveGlobals; n != 1 {
		t.Fatalf("LiveGlobals = %d, want the kept throwable", n)
	}

	if thr := th.ExtractThrowable(npe); thr != 0 {
		t.Error("extracted a throwable of the wrong class")
	}
	if n := f.vm.Stats().LiveGlobals; n != 1 {
		t.Error("mismatched extraction released the kept throwable")
	}

	thr := th.ExtractThrowable(0)
	if thr == 0 {
		t.Fatal("kept throwable not returned")
	}
	if !th.IsInstanceOf(jnibridge.Object(thr), ise) {
		t.Error("kept throwable has the wrong class")
	}
	if n := f.vm.Stats().LiveGlobals; n != 0 {
		t.Errorf("LiveGlobals = %d after extraction", n)
	}
	if th.ExtractThrowable(0) != 0 {
		t.Error("kept throwable handed out twice")
	}
}

func TestKeptThrowableReleasedOnDetach(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)

	cls, boom := f.statics(t, th, "boom", "()I")
	for i := 0; i < 3; i++ {
		Int.CallStaticMethod(th, cls, boom, nil)
	}
	if n := f.vm.Stats().LiveGlobals; n != 1 {
		t.Errorf("LiveGlobals = %d, want only the latest throwable", n)
	}
	if err := scope.Close(); err != nil {
		t.Fatal(err)
	}
	if n := f.vm.Stats().LiveGlobals; n != 0 {
		t.Errorf("LiveGlobals = %d after detach", n)
	}
}

func TestThrowDoesNotRecord(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	str := th.FindClass(simvm.ClassString)
	if st := th.ThrowNew(str, "not throwable"); st != jnibridge.StatusErr {
		t.Errorf("ThrowNew(String) = %s", st)
	}
	if th.PeekPendingFailure() {
		t.Error("non-throwable class became pending")
	}
	if e := th.CheckError(); e != NoError {
		t.Errorf("errno %v", e)
	}
}

func TestGlobalRefs(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	s := th.NewStringUTF("global")
	g := th.NewGlobalRef(jnibridge.Object(s))
	if g == 0 || th.CheckError() != NoError {
		t.Fatalf("NewGlobalRef: %s", th.ErrorMessage())
	}
	th.DeleteGlobalRef(g)
	if e := th.CheckError(); e != NoError {
		t.Fatalf("first delete: %v", e)
	}

	before := f.vm.Stats()
	th.DeleteGlobalRef(g)
	if e := th.CheckError(); e != ParameterError {
		t.Errorf("second delete: %v, want %v", e, ParameterError)
	}
	after := f.vm.Stats()
	if after.Boundary != before.Boundary || after.InvalidDeletes != 0 {
		t.Error("second delete reached the runtime")
	}
}

func TestGlobalRefOwner(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	if _, err := NewGlobalRef(th, 0); errKind(err) != errors.KindInvalidParameter {
		t.Errorf("null object: %v", err)
	}

	s := th.NewStringUTF("owned")
	r, err := NewGlobalRef(th, jnibridge.Object(s))
	if err != nil {
		t.Fatal(err)
	}
	if r.Object() == 0 || r.Released() {
		t.Fatal("fresh reference already released")
	}

	// Another thread may release it.
	done := make(chan error, 1)
	go func() {
		done <- f.b.WithThread(func(other *Thread) error {
			if got := other.GoString(jnibridge.String(r.Object())); got != "owned" {
				t.Errorf("other thread read %q", got)
			}
			return r.Release(other)
		})
	}()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !r.Released() || r.Object() != 0 {
		t.Error("not released")
	}
	if err := r.Release(th); errKind(err) != errors.KindDoubleRelease {
		t.Errorf("second release: %v", err)
	}

	var nilRef *GlobalRef
	if err := nilRef.Release(th); errKind(err) != errors.KindDoubleRelease {
		t.Errorf("nil release: %v", err)
	}
	if f.vm.Stats().LiveGlobals != 0 {
		t.Error("global leaked")
	}
}

func TestGlobalRefReleaseWithPendingException(t *testing.T) {
	f := newFixture(t)
	th, scope := f.attach(t)
	defer scope.Close()

	r, err := NewGlobalRef(th, jnibridge.Object(th.NewStringUTF("owned")))
	if err != nil {
		t.Fatal(err)
	}
	ise := th.FindClass(simvm.ClassIllegalState)
	th.ThrowNew(ise, "in flight")

	if err := r.Release(th); err != nil {
		t.Fatalf("Release = %v", err)
	}
	if !r.Released() {
		t.Error("not released")
	}
	if f.vm.Stats().LiveGlobals != 0 {
		t.Error("global leaked")
	}
	if !th.PeekPendingFailure() {
		t.Fatal("release consumed the pending exception")
	}
	if e, msg := th.TakePendingFailure(); e != ExceptionThrown || msg != "java.lang.IllegalStateException: in flight" {
		t.Errorf("TakePendingFailure = %v %q", e, msg)
	}
}
