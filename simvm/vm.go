package simvm

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/reftable"
)

// DefaultVersion is the highest interface version a VM reports unless
// configured otherwise.
const DefaultVersion = jnibridge.Version1_8

// VM is a simulated managed runtime.
type VM struct {
	mu      sync.RWMutex
	classes map[string]*Class
	methods []*Method
	fields  []*Field

	refs *reftable.Table

	envMu sync.Mutex
	envs  map[int64]*Env

	version    jnibridge.Version
	failAttach atomic.Bool
	frameLimit atomic.Int32
	nextID     atomic.Uint32
	stats      counters

	objectClass    *Class
	stringClass    *Class
	classClass     *Class
	throwableClass *Class
}

// Option configures a VM.
type Option func(*VM)

// WithVersion sets the highest interface version the VM accepts.
func WithVersion(v jnibridge.Version) Option {
	return func(vm *VM) { vm.version = v }
}

// WithFrameLimit caps the number of local frames a thread may push.
func WithFrameLimit(n int) Option {
	return func(vm *VM) { vm.frameLimit.Store(int32(n)) }
}

// New creates a VM with the bootstrap classes loaded.
func New(opts ...Option) *VM {
	vm := &VM{
		classes: make(map[string]*Class),
		refs:    reftable.New(),
		envs:    make(map[int64]*Env),
		version: DefaultVersion,
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.refs.Subscribe(&vm.stats)
	vm.bootstrap()
	return vm
}

func (vm *VM) class(name string) *Class {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.classes[name]
}

// Class returns a loaded class by name, or nil.
func (vm *VM) Class(name string) *Class {
	return vm.class(name)
}

// Classes returns the names of every loaded class.
func (vm *VM) Classes() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	names := make([]string, 0, len(vm.classes))
	for name := range vm.classes {
		names = append(names, name)
	}
	return names
}

func (vm *VM) register(c *Class) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, dup := vm.classes[c.name]; dup {
		return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Class(c.name).
			Detail("class already defined").
			Build()
	}
	for _, table := range []map[string]*Method{c.methods, c.smethods} {
		for _, m := range table {
			vm.methods = append(vm.methods, m)
			m.id = jnibridge.MethodID(len(vm.methods))
		}
	}
	for _, table := range []map[string]*Field{c.fieldByName, c.statics} {
		for _, f := range table {
			vm.fields = append(vm.fields, f)
			f.id = jnibridge.FieldID(len(vm.fields))
		}
	}
	c.obj = &object{class: vm.classClass, meta: c, id: vm.nextID.Add(1)}
	vm.classes[c.name] = c
	Logger().Debug("class defined", zap.String("class", c.name))
	return nil
}

// arrayClass returns the class of arrays named desc, such as "[I" or
// "[Ljava/lang/String;", defining it on first use.
func (vm *VM) arrayClass(desc string) *Class {
	if c := vm.class(desc); c != nil {
		return c
	}
	k, err := jnibridge.FieldKind(desc)
	if err != nil || k != jnibridge.KindObject || desc[0] != '[' {
		return nil
	}
	inner := desc[1:]
	ek, _ := jnibridge.FieldKind(inner)
	var elemCls *Class
	if ek == jnibridge.KindObject {
		name := inner
		if inner[0] == 'L' {
			name = inner[1 : len(inner)-1]
		}
		if name[0] == '[' {
			elemCls = vm.arrayClass(name)
		} else {
			elemCls = vm.class(name)
		}
		if elemCls == nil {
			return nil
		}
	}

	c := newClass(vm, desc, vm.objectClass)
	c.elem = ek
	c.elemCls = elemCls
	if err := vm.register(c); err != nil {
		// Lost a definition race.
		return vm.class(desc)
	}
	return c
}

// arrayClassOf returns the array class whose elements are instances of c.
func (vm *VM) arrayClassOf(c *Class) *Class {
	if c.isArray() {
		return vm.arrayClass("[" + c.name)
	}
	return vm.arrayClass("[L" + c.name + ";")
}

func primitiveArrayDesc(k jnibridge.Kind) string {
	return "[" + string(k.Letter())
}

func (vm *VM) method(id jnibridge.MethodID) *Method {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if id == 0 || int(id) > len(vm.methods) {
		return nil
	}
	return vm.methods[id-1]
}

func (vm *VM) field(id jnibridge.FieldID) *Field {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if id == 0 || int(id) > len(vm.fields) {
		return nil
	}
	return vm.fields[id-1]
}

func (vm *VM) supports(v jnibridge.Version) bool {
	return v.Known() && v <= vm.version
}

// GetEnv returns the calling goroutine's environment if it is attached.
func (vm *VM) GetEnv(v jnibridge.Version) (jnibridge.Env, jnibridge.Status) {
	if !vm.supports(v) {
		return nil, jnibridge.StatusVersion
	}
	if e := vm.current(); e != nil {
		return e, jnibridge.StatusOK
	}
	return nil, jnibridge.StatusDetached
}

func (vm *VM) current() *Env {
	gid := goid.Get()
	vm.envMu.Lock()
	defer vm.envMu.Unlock()
	return vm.envs[gid]
}

// AttachCurrentThread attaches the calling goroutine. Attaching an attached
// goroutine returns its existing environment.
func (vm *VM) AttachCurrentThread() (jnibridge.Env, jnibridge.Status) {
	if vm.failAttach.Load() {
		return nil, jnibridge.StatusErr
	}
	gid := goid.Get()

	vm.envMu.Lock()
	defer vm.envMu.Unlock()
	if e, ok := vm.envs[gid]; ok {
		return e, jnibridge.StatusOK
	}
	e := newEnv(vm, gid)
	vm.envs[gid] = e
	vm.stats.attaches.Add(1)
	Logger().Debug("thread attached", zap.Int64("goroutine", gid))
	return e, jnibridge.StatusOK
}

// DetachCurrentThread detaches the calling goroutine and deletes its local
// references. Detaching a detached goroutine is a no-op.
func (vm *VM) DetachCurrentThread() jnibridge.Status {
	gid := goid.Get()

	vm.envMu.Lock()
	e, ok := vm.envs[gid]
	delete(vm.envs, gid)
	vm.envMu.Unlock()
	if !ok {
		return jnibridge.StatusOK
	}

	e.release()
	vm.stats.detaches.Add(1)
	Logger().Debug("thread detached", zap.Int64("goroutine", gid))
	return jnibridge.StatusOK
}

// Threads returns the number of attached goroutines.
func (vm *VM) Threads() int {
	vm.envMu.Lock()
	defer vm.envMu.Unlock()
	return len(vm.envs)
}

// FailAttach makes subsequent attach attempts fail while on is true.
func (vm *VM) FailAttach(on bool) {
	vm.failAttach.Store(on)
}

// SetFrameLimit caps the number of local frames a thread may push. Zero
// removes the cap.
func (vm *VM) SetFrameLimit(n int) {
	vm.frameLimit.Store(int32(n))
}

// Close drops every reference. The VM must not be used afterwards.
func (vm *VM) Close() error {
	return vm.refs.Close()
}

func (vm *VM) fatal(msg string) {
	Logger().Error("fatal error", zap.String("message", msg))
	panic(&FatalError{Message: msg})
}
