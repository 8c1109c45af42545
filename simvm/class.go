package simvm

import (
	"fmt"
	"strings"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// MethodFunc implements a method. this is null for static methods. A
// returned error is thrown in the calling thread.
type MethodFunc func(env *Env, this jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error)

// Method is a resolved method of a class.
type Method struct {
	id     jnibridge.MethodID
	class  *Class
	name   string
	sig    jnibridge.Signature
	desc   string
	static bool
	fn     MethodFunc
}

func (m *Method) ID() jnibridge.MethodID         { return m.id }
func (m *Method) Name() string                   { return m.name }
func (m *Method) Descriptor() string             { return m.desc }
func (m *Method) Signature() jnibridge.Signature { return m.sig }
func (m *Method) Static() bool                   { return m.static }
func (m *Method) Class() *Class                  { return m.class }

// Field is a resolved field of a class.
type Field struct {
	id     jnibridge.FieldID
	class  *Class
	name   string
	desc   string
	kind   jnibridge.Kind
	static bool
	index  int
}

func (f *Field) ID() jnibridge.FieldID { return f.id }
func (f *Field) Name() string          { return f.name }
func (f *Field) Kind() jnibridge.Kind  { return f.kind }

// Class is a loaded class.
type Class struct {
	vm      *VM
	name    string
	super   *Class
	obj     *object
	elem    jnibridge.Kind
	elemCls *Class

	fields      []*Field
	fieldByName map[string]*Field
	statics     map[string]*Field
	staticSlots []slot

	methods  map[string]*Method
	smethods map[string]*Method
}

// Name returns the class's slash separated name.
func (c *Class) Name() string { return c.name }

// Super returns the superclass, or nil for java/lang/Object.
func (c *Class) Super() *Class { return c.super }

// Methods returns the class's own instance and static methods.
func (c *Class) Methods() []*Method {
	out := make([]*Method, 0, len(c.methods)+len(c.smethods))
	for _, m := range c.methods {
		out = append(out, m)
	}
	for _, m := range c.smethods {
		out = append(out, m)
	}
	return out
}

// StaticMethod returns the static method name with descriptor desc declared
// by c or a superclass.
func (c *Class) StaticMethod(name, desc string) *Method {
	for k := c; k != nil; k = k.super {
		if m, ok := k.smethods[name+desc]; ok {
			return m
		}
	}
	return nil
}

// isArray reports whether c is an array class.
func (c *Class) isArray() bool {
	return strings.HasPrefix(c.name, "[")
}

func (c *Class) isSubclassOf(other *Class) bool {
	for k := c; k != nil; k = k.super {
		if k == other {
			return true
		}
	}
	return false
}

// virtual resolves the implementation of m for an instance of c.
func (c *Class) virtual(m *Method) *Method {
	if m.name == "<init>" {
		return m
	}
	key := m.name + m.desc
	for k := c; k != nil; k = k.super {
		if impl, ok := k.methods[key]; ok {
			return impl
		}
	}
	return nil
}

func (c *Class) findMethod(name, desc string, static bool) *Method {
	key := name + desc
	if name == "<init>" {
		if static {
			return nil
		}
		return c.methods[key]
	}
	for k := c; k != nil; k = k.super {
		table := k.methods
		if static {
			table = k.smethods
		}
		if m, ok := table[key]; ok {
			return m
		}
	}
	return nil
}

func (c *Class) findField(name, desc string, static bool) *Field {
	for k := c; k != nil; k = k.super {
		table := k.fieldByName
		if static {
			table = k.statics
		}
		if f, ok := table[name]; ok && f.desc == desc {
			return f
		}
	}
	return nil
}

// dotted returns the class name the way the runtime prints it.
func (c *Class) dotted() string {
	return strings.ReplaceAll(c.name, "/", ".")
}

// ClassBuilder defines a class. Errors are collected and reported by Build.
type ClassBuilder struct {
	vm   *VM
	c    *Class
	errs []string
}

// DefineClass starts a class definition. An empty super means
// java/lang/Object.
func (vm *VM) DefineClass(name, super string) *ClassBuilder {
	b := &ClassBuilder{vm: vm}
	if super == "" && name != ClassObject {
		super = ClassObject
	}
	var sc *Class
	if super != "" {
		sc = vm.class(super)
		if sc == nil {
			b.errs = append(b.errs, fmt.Sprintf("superclass %s not found", super))
		}
	}
	b.c = newClass(vm, name, sc)
	return b
}

func newClass(vm *VM, name string, super *Class) *Class {
	c := &Class{
		vm:          vm,
		name:        name,
		super:       super,
		fieldByName: make(map[string]*Field),
		statics:     make(map[string]*Field),
		methods:     make(map[string]*Method),
		smethods:    make(map[string]*Method),
	}
	if super != nil {
		c.fields = append(c.fields, super.fields...)
	}
	return c
}

// Field declares an instance field.
func (b *ClassBuilder) Field(name, desc string) *ClassBuilder {
	k, err := jnibridge.FieldKind(desc)
	if err != nil {
		b.errs = append(b.errs, err.Error())
		return b
	}
	if _, dup := b.c.fieldByName[name]; dup {
		b.errs = append(b.errs, "duplicate field "+name)
		return b
	}
	f := &Field{class: b.c, name: name, desc: desc, kind: k, index: len(b.c.fields)}
	b.c.fields = append(b.c.fields, f)
	b.c.fieldByName[name] = f
	return b
}

// StaticField declares a static field with a primitive initial value. Object
// fields start out null whatever init is.
func (b *ClassBuilder) StaticField(name, desc string, init jnibridge.Value) *ClassBuilder {
	k, err := jnibridge.FieldKind(desc)
	if err != nil {
		b.errs = append(b.errs, err.Error())
		return b
	}
	if _, dup := b.c.statics[name]; dup {
		b.errs = append(b.errs, "duplicate static field "+name)
		return b
	}
	f := &Field{class: b.c, name: name, desc: desc, kind: k, static: true, index: len(b.c.staticSlots)}
	s := slot{}
	if k != jnibridge.KindObject {
		s.v = init
	}
	b.c.staticSlots = append(b.c.staticSlots, s)
	b.c.statics[name] = f
	return b
}

// Method declares an instance method.
func (b *ClassBuilder) Method(name, desc string, fn MethodFunc) *ClassBuilder {
	return b.method(name, desc, false, fn)
}

// StaticMethod declares a static method.
func (b *ClassBuilder) StaticMethod(name, desc string, fn MethodFunc) *ClassBuilder {
	return b.method(name, desc, true, fn)
}

// Constructor declares a constructor. desc must return void.
func (b *ClassBuilder) Constructor(desc string, fn MethodFunc) *ClassBuilder {
	if !strings.HasSuffix(desc, ")V") {
		b.errs = append(b.errs, "constructor "+desc+" must return void")
		return b
	}
	return b.method("<init>", desc, false, fn)
}

func (b *ClassBuilder) method(name, desc string, static bool, fn MethodFunc) *ClassBuilder {
	sig, err := jnibridge.ParseSignature(desc)
	if err != nil {
		b.errs = append(b.errs, err.Error())
		return b
	}
	if fn == nil {
		b.errs = append(b.errs, "method "+name+desc+" has no implementation")
		return b
	}
	table := b.c.methods
	if static {
		table = b.c.smethods
	}
	key := name + desc
	if _, dup := table[key]; dup {
		b.errs = append(b.errs, "duplicate method "+key)
		return b
	}
	table[key] = &Method{class: b.c, name: name, sig: sig, desc: desc, static: static, fn: fn}
	return b
}

// Build registers the class. It fails if the definition had errors or the
// name is taken.
func (b *ClassBuilder) Build() (*Class, error) {
	if len(b.errs) > 0 {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Class(b.c.name).
			Detail("%s", strings.Join(b.errs, "; ")).
			Build()
	}
	hasCtor := false
	for _, m := range b.c.methods {
		if m.name == "<init>" {
			hasCtor = true
			break
		}
	}
	if !hasCtor {
		b.method("<init>", "()V", false, noop)
	}
	if err := b.vm.register(b.c); err != nil {
		return nil, err
	}
	return b.c, nil
}

// MustBuild is Build for classes defined at startup. It panics on error.
func (b *ClassBuilder) MustBuild() *Class {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func noop(*Env, jnibridge.Object, []jnibridge.Value) (jnibridge.Value, error) {
	return 0, nil
}
