package bridge

import (
	jnibridge "github.com/wippyai/jni-bridge"
)

// methods is the method and field half of an operation descriptor.
type methods[T any] struct {
	kind           jnibridge.Kind
	callMethod     func(env jnibridge.Env, o jnibridge.Object, m jnibridge.MethodID, args []jnibridge.Value) T
	callNonvirtual func(env jnibridge.Env, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) T
	callStatic     func(env jnibridge.Env, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) T
	getField       func(env jnibridge.Env, o jnibridge.Object, f jnibridge.FieldID) T
	setField       func(env jnibridge.Env, o jnibridge.Object, f jnibridge.FieldID, v T)
	getStatic      func(env jnibridge.Env, c jnibridge.Class, f jnibridge.FieldID) T
	setStatic      func(env jnibridge.Env, c jnibridge.Class, f jnibridge.FieldID, v T)
}

func newMethods[T any](k jnibridge.Kind, dec func(jnibridge.Value) T, enc func(T) jnibridge.Value) methods[T] {
	return methods[T]{
		kind: k,
		callMethod: func(env jnibridge.Env, o jnibridge.Object, m jnibridge.MethodID, args []jnibridge.Value) T {
			return dec(env.CallMethod(k, o, m, args))
		},
		callNonvirtual: func(env jnibridge.Env, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) T {
			return dec(env.CallNonvirtualMethod(k, o, c, m, args))
		},
		callStatic: func(env jnibridge.Env, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) T {
			return dec(env.CallStaticMethod(k, c, m, args))
		},
		getField: func(env jnibridge.Env, o jnibridge.Object, f jnibridge.FieldID) T {
			return dec(env.GetField(k, o, f))
		},
		setField: func(env jnibridge.Env, o jnibridge.Object, f jnibridge.FieldID, v T) {
			env.SetField(k, o, f, enc(v))
		},
		getStatic: func(env jnibridge.Env, c jnibridge.Class, f jnibridge.FieldID) T {
			return dec(env.GetStaticField(k, c, f))
		},
		setStatic: func(env jnibridge.Env, c jnibridge.Class, f jnibridge.FieldID, v T) {
			env.SetStaticField(k, c, f, enc(v))
		},
	}
}

// arrays is the primitive array half of an operation descriptor.
type arrays[T any] struct {
	newArray    func(env jnibridge.Env, n int32) jnibridge.Array
	getElements func(env jnibridge.Env, a jnibridge.Array) []T
	release     func(env jnibridge.Env, a jnibridge.Array, elems []T, mode jnibridge.ReleaseMode)
	getRegion   func(env jnibridge.Env, a jnibridge.Array, start, n int32, buf []T)
	setRegion   func(env jnibridge.Env, a jnibridge.Array, start, n int32, buf []T)
}

func newArrays[T any](k jnibridge.Kind) arrays[T] {
	return arrays[T]{
		newArray: func(env jnibridge.Env, n int32) jnibridge.Array {
			return env.NewPrimitiveArray(k, n)
		},
		getElements: func(env jnibridge.Env, a jnibridge.Array) []T {
			elems, _ := env.GetArrayElements(k, a).([]T)
			return elems
		},
		release: func(env jnibridge.Env, a jnibridge.Array, elems []T, mode jnibridge.ReleaseMode) {
			env.ReleaseArrayElements(k, a, elems, mode)
		},
		getRegion: func(env jnibridge.Env, a jnibridge.Array, start, n int32, buf []T) {
			env.GetArrayRegion(k, a, start, n, buf)
		},
		setRegion: func(env jnibridge.Env, a jnibridge.Array, start, n int32, buf []T) {
			env.SetArrayRegion(k, a, start, n, buf)
		},
	}
}

// BasicOp is the operation descriptor for values of type T: method calls
// and field access, each run through the call protocol. Failed calls return
// the zero value of T.
type BasicOp[T any] struct {
	m methods[T]
}

// Kind returns the value kind the descriptor is bound to.
func (d *BasicOp[T]) Kind() jnibridge.Kind { return d.m.kind }

// CallMethod calls an instance method with virtual dispatch.
func (d *BasicOp[T]) CallMethod(t *Thread, o jnibridge.Object, m jnibridge.MethodID, args jnibridge.Args) T {
	return invoke(t, OpCallMethod, checkObjectMethod(o, m), func(env jnibridge.Env) T {
		return d.m.callMethod(env, o, m, args)
	})
}

// CallNonVirtualMethod calls the implementation of m declared by c.
func (d *BasicOp[T]) CallNonVirtualMethod(t *Thread, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args jnibridge.Args) T {
	return invoke(t, OpCallNonvirtualMethod, checkNonvirtual(o, c, m), func(env jnibridge.Env) T {
		return d.m.callNonvirtual(env, o, c, m, args)
	})
}

// CallStaticMethod calls a static method of c.
func (d *BasicOp[T]) CallStaticMethod(t *Thread, c jnibridge.Class, m jnibridge.MethodID, args jnibridge.Args) T {
	return invoke(t, OpCallStaticMethod, checkClassMethod(c, m), func(env jnibridge.Env) T {
		return d.m.callStatic(env, c, m, args)
	})
}

// GetField reads an instance field of o.
func (d *BasicOp[T]) GetField(t *Thread, o jnibridge.Object, f jnibridge.FieldID) T {
	return invoke(t, OpGetField, checkObjectField(o, f), func(env jnibridge.Env) T {
		return d.m.getField(env, o, f)
	})
}

// SetField stores v in an instance field of o.
func (d *BasicOp[T]) SetField(t *Thread, o jnibridge.Object, f jnibridge.FieldID, v T) {
	invokeVoid(t, OpSetField, checkObjectField(o, f), func(env jnibridge.Env) {
		d.m.setField(env, o, f, v)
	})
}

// GetStaticField reads a static field of c.
func (d *BasicOp[T]) GetStaticField(t *Thread, c jnibridge.Class, f jnibridge.FieldID) T {
	return invoke(t, OpGetStaticField, checkClassField(c, f), func(env jnibridge.Env) T {
		return d.m.getStatic(env, c, f)
	})
}

// SetStaticField stores v in a static field of c.
func (d *BasicOp[T]) SetStaticField(t *Thread, c jnibridge.Class, f jnibridge.FieldID, v T) {
	invokeVoid(t, OpSetStaticField, checkClassField(c, f), func(env jnibridge.Env) {
		d.m.setStatic(env, c, f, v)
	})
}

// PrimitiveOp extends BasicOp with primitive array operations.
type PrimitiveOp[T any] struct {
	BasicOp[T]
	a arrays[T]
}

// NewArray allocates a primitive array of length n.
func (d *PrimitiveOp[T]) NewArray(t *Thread, n int32) jnibridge.Array {
	problem := ""
	if n < 0 {
		problem = negativeSize
	}
	return invoke(t, OpNewArray, problem, func(env jnibridge.Env) jnibridge.Array {
		return d.a.newArray(env, n)
	})
}

// GetArrayElements borrows the array's elements. They must be handed back
// with ReleaseArrayElements.
func (d *PrimitiveOp[T]) GetArrayElements(t *Thread, a jnibridge.Array) []T {
	problem := ""
	if a == 0 {
		problem = nullArray
	}
	return invoke(t, OpGetArrayElements, problem, func(env jnibridge.Env) []T {
		return d.a.getElements(env, a)
	})
}

// ReleaseArrayElements returns borrowed elements, copying them back unless
// mode is ReleaseAbort.
func (d *PrimitiveOp[T]) ReleaseArrayElements(t *Thread, a jnibridge.Array, elems []T, mode jnibridge.ReleaseMode) {
	problem := ""
	switch {
	case a == 0:
		problem = nullArray
	case elems == nil:
		problem = nullBuffer
	}
	invokeVoid(t, OpReleaseArrayElements, problem, func(env jnibridge.Env) {
		d.a.release(env, a, elems, mode)
	})
}

// GetArrayRegion copies n elements starting at start into buf.
func (d *PrimitiveOp[T]) GetArrayRegion(t *Thread, a jnibridge.Array, start, n int32, buf []T) {
	invokeVoid(t, OpGetArrayRegion, checkRegion(a, start, n, buf), func(env jnibridge.Env) {
		d.a.getRegion(env, a, start, n, buf)
	})
}

// SetArrayRegion copies n elements from buf into the array at start.
func (d *PrimitiveOp[T]) SetArrayRegion(t *Thread, a jnibridge.Array, start, n int32, buf []T) {
	invokeVoid(t, OpSetArrayRegion, checkRegion(a, start, n, buf), func(env jnibridge.Env) {
		d.a.setRegion(env, a, start, n, buf)
	})
}

// Unit is the result of a void call.
type Unit struct{}

// VoidOp is the descriptor for void methods. It has no fields or arrays;
// failure is only observable through the thread's error record.
type VoidOp struct {
	m methods[Unit]
}

// Kind returns KindVoid.
func (d *VoidOp) Kind() jnibridge.Kind { return jnibridge.KindVoid }

// CallMethod calls a void instance method with virtual dispatch.
func (d *VoidOp) CallMethod(t *Thread, o jnibridge.Object, m jnibridge.MethodID, args jnibridge.Args) Unit {
	return invoke(t, OpCallMethod, checkObjectMethod(o, m), func(env jnibridge.Env) Unit {
		return d.m.callMethod(env, o, m, args)
	})
}

// CallNonVirtualMethod calls the void implementation of m declared by c.
func (d *VoidOp) CallNonVirtualMethod(t *Thread, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args jnibridge.Args) Unit {
	return invoke(t, OpCallNonvirtualMethod, checkNonvirtual(o, c, m), func(env jnibridge.Env) Unit {
		return d.m.callNonvirtual(env, o, c, m, args)
	})
}

// CallStaticMethod calls a void static method of c.
func (d *VoidOp) CallStaticMethod(t *Thread, c jnibridge.Class, m jnibridge.MethodID, args jnibridge.Args) Unit {
	return invoke(t, OpCallStaticMethod, checkClassMethod(c, m), func(env jnibridge.Env) Unit {
		return d.m.callStatic(env, c, m, args)
	})
}

func newBasic[T any](k jnibridge.Kind, dec func(jnibridge.Value) T, enc func(T) jnibridge.Value) *BasicOp[T] {
	return &BasicOp[T]{m: newMethods(k, dec, enc)}
}

func newPrimitive[T any](k jnibridge.Kind, dec func(jnibridge.Value) T, enc func(T) jnibridge.Value) *PrimitiveOp[T] {
	return &PrimitiveOp[T]{BasicOp: BasicOp[T]{m: newMethods(k, dec, enc)}, a: newArrays[T](k)}
}

func newVoid() *VoidOp {
	return &VoidOp{m: newMethods(jnibridge.KindVoid,
		func(jnibridge.Value) Unit { return Unit{} },
		func(Unit) jnibridge.Value { return 0 })}
}

func identity(v jnibridge.Value) jnibridge.Value { return v }

// Operation descriptors, one per value kind.
var (
	Boolean = newPrimitive(jnibridge.KindBoolean, jnibridge.Value.Boolean, jnibridge.BooleanValue)
	Byte    = newPrimitive(jnibridge.KindByte, jnibridge.Value.Byte, jnibridge.ByteValue)
	Char    = newPrimitive(jnibridge.KindChar, jnibridge.Value.Char, jnibridge.CharValue)
	Short   = newPrimitive(jnibridge.KindShort, jnibridge.Value.Short, jnibridge.ShortValue)
	Int     = newPrimitive(jnibridge.KindInt, jnibridge.Value.Int, jnibridge.IntValue)
	Long    = newPrimitive(jnibridge.KindLong, jnibridge.Value.Long, jnibridge.LongValue)
	Float   = newPrimitive(jnibridge.KindFloat, jnibridge.Value.Float, jnibridge.FloatValue)
	Double  = newPrimitive(jnibridge.KindDouble, jnibridge.Value.Double, jnibridge.DoubleValue)
	Object  = newBasic(jnibridge.KindObject, jnibridge.Value.Object, jnibridge.ObjectValue)
	Void    = newVoid()
)

var descriptors = [...]any{
	jnibridge.KindVoid:    Void,
	jnibridge.KindBoolean: Boolean,
	jnibridge.KindByte:    Byte,
	jnibridge.KindChar:    Char,
	jnibridge.KindShort:   Short,
	jnibridge.KindInt:     Int,
	jnibridge.KindLong:    Long,
	jnibridge.KindFloat:   Float,
	jnibridge.KindDouble:  Double,
	jnibridge.KindObject:  Object,
}

// values holds descriptors that pass raw Values through, for callers that
// only learn the kind at run time.
var values = func() (v [len(descriptors)]*BasicOp[jnibridge.Value]) {
	for k := range v {
		v[k] = newBasic(jnibridge.Kind(k), identity, identity)
	}
	return v
}()

// Descriptor returns the operation descriptor for k: a *PrimitiveOp for
// primitive kinds, *BasicOp[jnibridge.Object] for objects and *VoidOp for
// void. It returns nil for an unknown kind.
func Descriptor(k jnibridge.Kind) any {
	if int(k) >= len(descriptors) {
		return nil
	}
	return descriptors[k]
}

// Dynamic returns a descriptor of kind k whose results are raw Values. It
// returns nil for an unknown kind.
func Dynamic(k jnibridge.Kind) *BasicOp[jnibridge.Value] {
	if int(k) >= len(values) {
		return nil
	}
	return values[k]
}

// Kinds returns every kind that has a descriptor.
func Kinds() []jnibridge.Kind {
	ks := make([]jnibridge.Kind, len(descriptors))
	for i := range ks {
		ks[i] = jnibridge.Kind(i)
	}
	return ks
}
