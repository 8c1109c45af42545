package simvm

import (
	goerrors "errors"
	"fmt"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/reftable"
)

// Env is one goroutine's environment. Every method must be called from the
// goroutine that attached it.
type Env struct {
	vm       *VM
	gid      int64
	frames   [][]reftable.Handle
	pending  *object
	detached bool
}

var _ jnibridge.Env = (*Env)(nil)

func newEnv(vm *VM, gid int64) *Env {
	return &Env{vm: vm, gid: gid, frames: make([][]reftable.Handle, 1, 8)}
}

// VM returns the runtime the environment belongs to.
func (e *Env) VM() *VM {
	return e.vm
}

func (e *Env) enter() {
	e.vm.stats.boundary.Add(1)
	if e.detached {
		e.vm.fatal("environment used after its thread detached")
	}
	if g := goid.Get(); g != e.gid {
		e.vm.fatal(fmt.Sprintf("environment of goroutine %d used from goroutine %d", e.gid, g))
	}
}

func (e *Env) release() {
	for _, frame := range e.frames {
		for _, h := range frame {
			e.vm.refs.Delete(h)
		}
	}
	e.frames = nil
	e.pending = nil
	e.detached = true
}

// local creates a local reference to o in the innermost frame.
func (e *Env) local(o *object) jnibridge.Object {
	if o == nil {
		return 0
	}
	h := e.vm.refs.Insert(reftable.Local, o)
	top := len(e.frames) - 1
	e.frames[top] = append(e.frames[top], h)
	return jnibridge.Object(h)
}

func (e *Env) deref(ref jnibridge.Object) *object {
	if ref == 0 {
		return nil
	}
	v, ok := e.vm.refs.Get(reftable.Handle(ref))
	if !ok {
		e.vm.fatal(fmt.Sprintf("invalid reference %s", reftable.Handle(ref)))
	}
	return v.(*object)
}

func (e *Env) classOf(ref jnibridge.Class) *Class {
	o := e.deref(jnibridge.Object(ref))
	if o == nil {
		return nil
	}
	if o.meta == nil {
		e.vm.fatal(fmt.Sprintf("reference %s is not a class", reftable.Handle(ref)))
	}
	return o.meta
}

func (e *Env) GetVersion() jnibridge.Version {
	e.enter()
	return e.vm.version
}

// Exceptions

func (e *Env) ExceptionCheck() bool {
	e.enter()
	return e.pending != nil
}

func (e *Env) ExceptionOccurred() jnibridge.Throwable {
	e.enter()
	return jnibridge.Throwable(e.local(e.pending))
}

func (e *Env) ExceptionClear() {
	e.enter()
	e.pending = nil
}

func (e *Env) Throw(thr jnibridge.Throwable) jnibridge.Status {
	e.enter()
	o := e.deref(jnibridge.Object(thr))
	if o == nil || !o.class.isSubclassOf(e.vm.throwableClass) {
		return jnibridge.StatusErr
	}
	e.pending = o
	return jnibridge.StatusOK
}

func (e *Env) ThrowNew(c jnibridge.Class, message string) jnibridge.Status {
	e.enter()
	cls := e.classOf(c)
	if cls == nil || !cls.isSubclassOf(e.vm.throwableClass) {
		return jnibridge.StatusErr
	}
	e.pending = e.vm.newThrowable(cls, message)
	return jnibridge.StatusOK
}

func (e *Env) FatalError(message string) {
	e.enter()
	e.vm.fatal(message)
}

// throwNew makes a new exception of a bootstrap class pending.
func (e *Env) throwNew(class, format string, args ...any) {
	e.pending = e.vm.newThrowable(e.vm.class(class), fmt.Sprintf(format, args...))
}

// throwError makes err pending. An *Exception keeps its class when that
// class is a loaded throwable.
func (e *Env) throwError(err error) {
	var ex *Exception
	if goerrors.As(err, &ex) {
		if c := e.vm.class(ex.Class); c != nil && c.isSubclassOf(e.vm.throwableClass) {
			e.pending = e.vm.newThrowable(c, ex.Message)
			return
		}
	}
	e.throwNew(ClassRuntimeException, "%s", err.Error())
}

// Pending returns the class name and message of the pending exception.
func (e *Env) Pending() (class, message string, ok bool) {
	if e.pending == nil {
		return "", "", false
	}
	return e.pending.class.name, e.vm.throwableMessage(e.pending), true
}

// Classes and objects

func (e *Env) FindClass(name string) jnibridge.Class {
	e.enter()
	c := e.vm.class(name)
	if c == nil && len(name) > 0 && name[0] == '[' {
		c = e.vm.arrayClass(name)
	}
	if c == nil {
		e.throwNew(ClassNoClassDefFound, "%s", name)
		return 0
	}
	return jnibridge.Class(e.local(c.obj))
}

func (e *Env) GetObjectClass(o jnibridge.Object) jnibridge.Class {
	e.enter()
	obj := e.deref(o)
	if obj == nil {
		e.vm.fatal("GetObjectClass on a null reference")
	}
	return jnibridge.Class(e.local(obj.class.obj))
}

func (e *Env) IsInstanceOf(o jnibridge.Object, c jnibridge.Class) bool {
	e.enter()
	obj := e.deref(o)
	if obj == nil {
		return true
	}
	cls := e.classOf(c)
	return cls != nil && obj.class.isSubclassOf(cls)
}

func (e *Env) IsSameObject(a, b jnibridge.Object) bool {
	e.enter()
	return e.deref(a) == e.deref(b)
}

func (e *Env) GetMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return e.lookupMethod(c, name, sig, false)
}

func (e *Env) GetStaticMethodID(c jnibridge.Class, name, sig string) jnibridge.MethodID {
	return e.lookupMethod(c, name, sig, true)
}

func (e *Env) lookupMethod(c jnibridge.Class, name, sig string, static bool) jnibridge.MethodID {
	e.enter()
	cls := e.classOf(c)
	if cls == nil {
		e.vm.fatal("method lookup on a null class")
	}
	m := cls.findMethod(name, sig, static)
	if m == nil {
		e.throwNew(ClassNoSuchMethod, "%s.%s%s", cls.dotted(), name, sig)
		return 0
	}
	return m.id
}

func (e *Env) GetFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return e.lookupField(c, name, sig, false)
}

func (e *Env) GetStaticFieldID(c jnibridge.Class, name, sig string) jnibridge.FieldID {
	return e.lookupField(c, name, sig, true)
}

func (e *Env) lookupField(c jnibridge.Class, name, sig string, static bool) jnibridge.FieldID {
	e.enter()
	cls := e.classOf(c)
	if cls == nil {
		e.vm.fatal("field lookup on a null class")
	}
	f := cls.findField(name, sig, static)
	if f == nil {
		e.throwNew(ClassNoSuchField, "%s.%s", cls.dotted(), name)
		return 0
	}
	return f.id
}

func (e *Env) NewObject(c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Object {
	e.enter()
	cls := e.classOf(c)
	meth := e.vm.method(m)
	if cls == nil || meth == nil || meth.name != "<init>" || meth.class != cls {
		e.vm.fatal("NewObject with a method that is not a constructor of the class")
	}
	if cls.isArray() || cls == e.vm.classClass || cls == e.vm.stringClass {
		e.throwNew(ClassInstantiation, "%s", cls.dotted())
		return 0
	}
	ref := e.local(e.vm.alloc(cls))
	e.call(jnibridge.KindVoid, meth, ref, args)
	if e.pending != nil {
		return 0
	}
	return ref
}

// References

func (e *Env) PushLocalFrame(capacity int32) jnibridge.Status {
	e.enter()
	if capacity < 0 {
		e.vm.fatal("negative local frame capacity")
	}
	if limit := e.vm.frameLimit.Load(); limit > 0 && len(e.frames)-1 >= int(limit) {
		e.throwNew(ClassOutOfMemory, "could not allocate local frame of capacity %d", capacity)
		return jnibridge.StatusNoMemory
	}
	e.frames = append(e.frames, make([]reftable.Handle, 0, capacity))
	e.vm.stats.framesPushed.Add(1)
	return jnibridge.StatusOK
}

func (e *Env) PopLocalFrame(result jnibridge.Object) jnibridge.Object {
	e.enter()
	if len(e.frames) < 2 {
		e.vm.fatal("PopLocalFrame without a matching PushLocalFrame")
	}
	keep := e.deref(result)
	e.popFrame()
	e.vm.stats.framesPopped.Add(1)
	return e.local(keep)
}

func (e *Env) popFrame() {
	top := len(e.frames) - 1
	for _, h := range e.frames[top] {
		e.vm.refs.Delete(h)
	}
	e.frames[top] = nil
	e.frames = e.frames[:top]
}

// FrameDepth returns the number of pushed frames above the base frame.
func (e *Env) FrameDepth() int {
	return len(e.frames) - 1
}

func (e *Env) NewLocalRef(o jnibridge.Object) jnibridge.Object {
	e.enter()
	return e.local(e.deref(o))
}

func (e *Env) DeleteLocalRef(o jnibridge.Object) {
	e.enter()
	if o == 0 {
		return
	}
	if _, ok := e.vm.refs.KindOf(reftable.Handle(o)); !ok {
		e.vm.stats.invalidDeletes.Add(1)
		Logger().Warn("invalid local reference deleted", zap.Stringer("ref", reftable.Handle(o)))
		return
	}
	if _, ok := e.vm.refs.GetKind(reftable.Handle(o), reftable.Local); !ok {
		e.vm.fatal("DeleteLocalRef on a global reference")
	}
	e.vm.refs.Delete(reftable.Handle(o))
}

func (e *Env) NewGlobalRef(o jnibridge.Object) jnibridge.Object {
	e.enter()
	obj := e.deref(o)
	if obj == nil {
		return 0
	}
	return jnibridge.Object(e.vm.refs.Insert(reftable.Global, obj))
}

// DeleteGlobalRef deletes a global reference. Unlike a real runtime, an
// invalid reference is counted in Stats instead of crashing.
func (e *Env) DeleteGlobalRef(o jnibridge.Object) {
	e.enter()
	if o == 0 {
		return
	}
	if _, ok := e.vm.refs.GetKind(reftable.Handle(o), reftable.Global); !ok {
		e.vm.stats.invalidDeletes.Add(1)
		Logger().Warn("invalid global reference deleted", zap.Stringer("ref", reftable.Handle(o)))
		return
	}
	e.vm.refs.Delete(reftable.Handle(o))
}

// GoString returns the contents of a string object. Method implementations
// use it to read string arguments.
func (e *Env) GoString(s jnibridge.String) string {
	o := e.deref(jnibridge.Object(s))
	if o == nil {
		return ""
	}
	return o.str
}

// NewString is NewStringUTF for method implementations, returned as a Value.
func (e *Env) NewString(s string) jnibridge.Value {
	return jnibridge.ObjectValue(e.local(e.vm.newString(s)))
}
