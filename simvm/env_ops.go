package simvm

import (
	"fmt"

	jnibridge "github.com/wippyai/jni-bridge"
)

// call runs m with an implicit local frame, the way a managed method gets
// its own frame. Object results are re-created in the caller's frame.
func (e *Env) call(k jnibridge.Kind, m *Method, this jnibridge.Object, args []jnibridge.Value) jnibridge.Value {
	if m.sig.Return != k {
		e.vm.fatal(fmt.Sprintf("%s.%s%s called as a %s method", m.class.name, m.name, m.desc, k))
	}
	if len(args) != len(m.sig.Params) {
		e.throwNew(ClassIllegalArgument, "%s.%s%s takes %d arguments, got %d",
			m.class.dotted(), m.name, m.desc, len(m.sig.Params), len(args))
		return 0
	}
	e.vm.stats.calls.Add(1)

	e.frames = append(e.frames, nil)
	v, err := m.fn(e, this, args)
	var keep *object
	if err == nil && e.pending == nil && k == jnibridge.KindObject {
		keep = e.deref(v.Object())
	}
	e.popFrame()

	if err != nil {
		e.throwError(err)
		return 0
	}
	if e.pending != nil {
		return 0
	}
	if k == jnibridge.KindObject {
		return jnibridge.ObjectValue(e.local(keep))
	}
	if k == jnibridge.KindVoid {
		return 0
	}
	return v
}

func (e *Env) instanceMethod(m jnibridge.MethodID) *Method {
	meth := e.vm.method(m)
	if meth == nil || meth.static {
		e.vm.fatal(fmt.Sprintf("method id %d is not an instance method", m))
	}
	return meth
}

func (e *Env) CallMethod(k jnibridge.Kind, o jnibridge.Object, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	e.enter()
	obj := e.deref(o)
	meth := e.instanceMethod(m)
	if obj == nil {
		e.throwNew(ClassNullPointer, "invoking %s on a null reference", meth.name)
		return 0
	}
	impl := obj.class.virtual(meth)
	if impl == nil {
		e.throwNew(ClassAbstractMethod, "%s.%s%s", obj.class.dotted(), meth.name, meth.desc)
		return 0
	}
	return e.call(k, impl, o, args)
}

func (e *Env) CallNonvirtualMethod(k jnibridge.Kind, o jnibridge.Object, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	e.enter()
	obj := e.deref(o)
	cls := e.classOf(c)
	meth := e.instanceMethod(m)
	if obj == nil {
		e.throwNew(ClassNullPointer, "invoking %s on a null reference", meth.name)
		return 0
	}
	if cls == nil || !obj.class.isSubclassOf(cls) {
		e.vm.fatal("non-virtual call on an object that is not an instance of the class")
	}
	impl := cls.virtual(meth)
	if impl == nil {
		e.throwNew(ClassAbstractMethod, "%s.%s%s", cls.dotted(), meth.name, meth.desc)
		return 0
	}
	return e.call(k, impl, o, args)
}

func (e *Env) CallStaticMethod(k jnibridge.Kind, c jnibridge.Class, m jnibridge.MethodID, args []jnibridge.Value) jnibridge.Value {
	e.enter()
	cls := e.classOf(c)
	meth := e.vm.method(m)
	if cls == nil || meth == nil || !meth.static {
		e.vm.fatal(fmt.Sprintf("method id %d is not a static method", m))
	}
	return e.call(k, meth, 0, args)
}

// Fields

func (e *Env) fieldOf(k jnibridge.Kind, f jnibridge.FieldID, static bool) *Field {
	fld := e.vm.field(f)
	if fld == nil || fld.static != static {
		e.vm.fatal(fmt.Sprintf("field id %d is not a valid field", f))
	}
	if fld.kind != k {
		e.vm.fatal(fmt.Sprintf("%s.%s accessed as %s, declared %s", fld.class.name, fld.name, k, fld.kind))
	}
	return fld
}

func (e *Env) instanceSlot(k jnibridge.Kind, o jnibridge.Object, f jnibridge.FieldID) *slot {
	fld := e.fieldOf(k, f, false)
	obj := e.deref(o)
	if obj == nil {
		e.vm.fatal("field access on a null reference")
	}
	if !obj.class.isSubclassOf(fld.class) {
		e.vm.fatal(fmt.Sprintf("%s has no field %s", obj.class.name, fld.name))
	}
	return &obj.fields[fld.index]
}

func (e *Env) staticSlot(k jnibridge.Kind, c jnibridge.Class, f jnibridge.FieldID) *slot {
	fld := e.fieldOf(k, f, true)
	if cls := e.classOf(c); cls == nil || !cls.isSubclassOf(fld.class) {
		e.vm.fatal(fmt.Sprintf("static field %s accessed through an unrelated class", fld.name))
	}
	return &fld.class.staticSlots[fld.index]
}

func (e *Env) load(k jnibridge.Kind, s *slot) jnibridge.Value {
	e.vm.stats.fieldReads.Add(1)
	if k == jnibridge.KindObject {
		return jnibridge.ObjectValue(e.local(s.ref))
	}
	return s.v
}

func (e *Env) store(k jnibridge.Kind, s *slot, v jnibridge.Value) {
	e.vm.stats.fieldWrites.Add(1)
	if k == jnibridge.KindObject {
		s.ref = e.deref(v.Object())
		return
	}
	s.v = v
}

func (e *Env) GetField(k jnibridge.Kind, o jnibridge.Object, f jnibridge.FieldID) jnibridge.Value {
	e.enter()
	return e.load(k, e.instanceSlot(k, o, f))
}

func (e *Env) SetField(k jnibridge.Kind, o jnibridge.Object, f jnibridge.FieldID, v jnibridge.Value) {
	e.enter()
	e.store(k, e.instanceSlot(k, o, f), v)
}

func (e *Env) GetStaticField(k jnibridge.Kind, c jnibridge.Class, f jnibridge.FieldID) jnibridge.Value {
	e.enter()
	return e.load(k, e.staticSlot(k, c, f))
}

func (e *Env) SetStaticField(k jnibridge.Kind, c jnibridge.Class, f jnibridge.FieldID, v jnibridge.Value) {
	e.enter()
	e.store(k, e.staticSlot(k, c, f), v)
}

// Strings

func (e *Env) stringOf(s jnibridge.String) *object {
	o := e.deref(jnibridge.Object(s))
	if o == nil || o.class != e.vm.stringClass {
		e.vm.fatal("reference is not a string")
	}
	return o
}

func (e *Env) NewStringUTF(s string) jnibridge.String {
	e.enter()
	return jnibridge.String(e.local(e.vm.newString(s)))
}

func (e *Env) GetStringUTFLength(s jnibridge.String) int32 {
	e.enter()
	return int32(len(e.stringOf(s).str))
}

func (e *Env) GetStringUTFChars(s jnibridge.String) []byte {
	e.enter()
	str := e.stringOf(s).str
	return append(make([]byte, 0, len(str)), str...)
}

func (e *Env) ReleaseStringUTFChars(s jnibridge.String, _ []byte) {
	e.enter()
	e.stringOf(s)
}

// Arrays

func (e *Env) arrayOf(a jnibridge.Array) *object {
	o := e.deref(jnibridge.Object(a))
	if o == nil || !o.class.isArray() {
		e.vm.fatal("reference is not an array")
	}
	return o
}

func (e *Env) primitiveArray(k jnibridge.Kind, a jnibridge.Array) *object {
	o := e.arrayOf(a)
	if o.class.elem != k {
		e.vm.fatal(fmt.Sprintf("%s array accessed as %s array", o.class.elem, k))
	}
	return o
}

func (e *Env) inBounds(o *object, start, n int32) bool {
	size := int32(elemsLen(o.elems))
	if start < 0 || n < 0 || start > size || n > size-start {
		e.throwNew(ClassIndexOutOfBounds, "region [%d, %d) out of bounds for length %d", start, int64(start)+int64(n), size)
		return false
	}
	return true
}

func (e *Env) GetArrayLength(a jnibridge.Array) int32 {
	e.enter()
	return int32(elemsLen(e.arrayOf(a).elems))
}

func (e *Env) NewPrimitiveArray(k jnibridge.Kind, n int32) jnibridge.Array {
	e.enter()
	if !k.IsPrimitive() {
		e.vm.fatal(fmt.Sprintf("%s is not a primitive kind", k))
	}
	if n < 0 {
		e.throwNew(ClassNegativeArraySize, "%d", n)
		return 0
	}
	e.vm.stats.arrayOps.Add(1)
	o := &object{class: e.vm.arrayClass(primitiveArrayDesc(k)), elems: makeElems(k, n), id: e.vm.nextID.Add(1)}
	return jnibridge.Array(e.local(o))
}

// GetArrayElements always returns a copy.
func (e *Env) GetArrayElements(k jnibridge.Kind, a jnibridge.Array) any {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	return cloneElems(e.primitiveArray(k, a).elems)
}

func (e *Env) ReleaseArrayElements(k jnibridge.Kind, a jnibridge.Array, elems any, mode jnibridge.ReleaseMode) {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	o := e.primitiveArray(k, a)
	if mode == jnibridge.ReleaseAbort {
		return
	}
	n := int32(elemsLen(o.elems))
	if !copyRegion(o.elems, 0, n, elems, false) {
		e.vm.fatal("released elements do not belong to the array")
	}
}

func (e *Env) GetArrayRegion(k jnibridge.Kind, a jnibridge.Array, start, n int32, buf any) {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	o := e.primitiveArray(k, a)
	if !e.inBounds(o, start, n) {
		return
	}
	if !copyRegion(o.elems, start, n, buf, true) {
		e.vm.fatal("region buffer has the wrong element type or length")
	}
}

func (e *Env) SetArrayRegion(k jnibridge.Kind, a jnibridge.Array, start, n int32, buf any) {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	o := e.primitiveArray(k, a)
	if !e.inBounds(o, start, n) {
		return
	}
	if !copyRegion(o.elems, start, n, buf, false) {
		e.vm.fatal("region buffer has the wrong element type or length")
	}
}

func (e *Env) NewObjectArray(n int32, c jnibridge.Class, fill jnibridge.Object) jnibridge.Array {
	e.enter()
	cls := e.classOf(c)
	if cls == nil {
		e.vm.fatal("NewObjectArray with a null element class")
	}
	if n < 0 {
		e.throwNew(ClassNegativeArraySize, "%d", n)
		return 0
	}
	e.vm.stats.arrayOps.Add(1)
	init := e.deref(fill)
	elems := make([]*object, n)
	for i := range elems {
		elems[i] = init
	}
	o := &object{class: e.vm.arrayClassOf(cls), elems: elems, id: e.vm.nextID.Add(1)}
	return jnibridge.Array(e.local(o))
}

func (e *Env) objectArray(a jnibridge.Array) *object {
	o := e.arrayOf(a)
	if o.class.elem != jnibridge.KindObject {
		e.vm.fatal("primitive array accessed as an object array")
	}
	return o
}

func (e *Env) GetObjectArrayElement(a jnibridge.Array, i int32) jnibridge.Object {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	o := e.objectArray(a)
	if !e.inBounds(o, i, 1) {
		return 0
	}
	return e.local(o.elems.([]*object)[i])
}

func (e *Env) SetObjectArrayElement(a jnibridge.Array, i int32, v jnibridge.Object) {
	e.enter()
	e.vm.stats.arrayOps.Add(1)
	o := e.objectArray(a)
	if !e.inBounds(o, i, 1) {
		return
	}
	val := e.deref(v)
	if val != nil && o.class.elemCls != nil && !val.class.isSubclassOf(o.class.elemCls) {
		e.throwNew(ClassArrayStore, "%s", val.class.dotted())
		return
	}
	o.elems.([]*object)[i] = val
}
