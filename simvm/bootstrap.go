package simvm

import (
	"fmt"

	jnibridge "github.com/wippyai/jni-bridge"
)

func (vm *VM) newString(s string) *object {
	return &object{class: vm.stringClass, str: s, id: vm.nextID.Add(1)}
}

func (vm *VM) newThrowable(c *Class, message string) *object {
	o := vm.alloc(c)
	f := vm.throwableClass.fieldByName["message"]
	o.fields[f.index].ref = vm.newString(message)
	return o
}

func (vm *VM) throwableMessage(o *object) string {
	f := vm.throwableClass.fieldByName["message"]
	if m := o.fields[f.index].ref; m != nil {
		return m.str
	}
	return ""
}

func (vm *VM) bootstrap() {
	vm.objectClass = vm.DefineClass(ClassObject, "").
		Method("toString", "()Ljava/lang/String;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			o := env.deref(this)
			return env.NewString(fmt.Sprintf("%s@%x", o.class.dotted(), o.id)), nil
		}).
		Method("hashCode", "()I", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.IntValue(int32(env.deref(this).id)), nil
		}).
		Method("equals", "(Ljava/lang/Object;)Z", func(env *Env, this jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.BooleanValue(env.deref(this) == env.deref(args[0].Object())), nil
		}).
		Method("getClass", "()Ljava/lang/Class;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.ObjectValue(env.local(env.deref(this).class.obj)), nil
		}).
		MustBuild()

	vm.classClass = vm.DefineClass(ClassClass, "").
		Method("getName", "()Ljava/lang/String;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return env.NewString(env.deref(this).meta.dotted()), nil
		}).
		MustBuild()
	// Class objects registered before java/lang/Class existed.
	vm.objectClass.obj.class = vm.classClass
	vm.classClass.obj.class = vm.classClass

	vm.stringClass = vm.DefineClass(ClassString, "").
		Method("length", "()I", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.IntValue(int32(len([]rune(env.deref(this).str)))), nil
		}).
		Method("isEmpty", "()Z", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.BooleanValue(env.deref(this).str == ""), nil
		}).
		Method("toString", "()Ljava/lang/String;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.ObjectValue(this), nil
		}).
		Method("hashCode", "()I", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			var h int32
			for _, u := range utf16Units(env.deref(this).str) {
				h = 31*h + int32(u)
			}
			return jnibridge.IntValue(h), nil
		}).
		Method("equals", "(Ljava/lang/Object;)Z", func(env *Env, this jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
			other := env.deref(args[0].Object())
			eq := other != nil && other.class == env.vm.stringClass && other.str == env.deref(this).str
			return jnibridge.BooleanValue(eq), nil
		}).
		MustBuild()

	vm.throwableClass = vm.defineThrowable(ClassThrowable, ClassObject).
		Field("message", "Ljava/lang/String;").
		Method("getMessage", "()Ljava/lang/String;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			return jnibridge.ObjectValue(env.local(env.messageOf(this))), nil
		}).
		Method("toString", "()Ljava/lang/String;", func(env *Env, this jnibridge.Object, _ []jnibridge.Value) (jnibridge.Value, error) {
			o := env.deref(this)
			s := o.class.dotted()
			if m := env.messageOf(this); m != nil && m.str != "" {
				s += ": " + m.str
			}
			return env.NewString(s), nil
		}).
		MustBuild()

	for _, t := range bootstrapThrowables {
		vm.defineThrowable(t.name, t.super).MustBuild()
	}
}

// defineThrowable starts a throwable class with the two standard
// constructors.
func (vm *VM) defineThrowable(name, super string) *ClassBuilder {
	return vm.DefineClass(name, super).
		Constructor("()V", noop).
		Constructor("(Ljava/lang/String;)V", func(env *Env, this jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
			o := env.deref(this)
			f := env.vm.throwableClass.fieldByName["message"]
			o.fields[f.index].ref = env.deref(args[0].Object())
			return 0, nil
		})
}

func (e *Env) messageOf(thr jnibridge.Object) *object {
	f := e.vm.throwableClass.fieldByName["message"]
	return e.deref(thr).fields[f.index].ref
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xd800+(r>>10)), uint16(0xdc00+(r&0x3ff)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
