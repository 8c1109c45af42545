package simvm

import (
	jnibridge "github.com/wippyai/jni-bridge"
)

// slot holds one field: a primitive value or an object pointer.
type slot struct {
	v   jnibridge.Value
	ref *object
}

type object struct {
	class  *Class
	fields []slot
	id     uint32

	meta  *Class // set on java/lang/Class instances
	str   string // java/lang/String contents
	elems any    // array storage: a primitive slice or []*object
}

func (vm *VM) alloc(c *Class) *object {
	return &object{class: c, fields: make([]slot, len(c.fields)), id: vm.nextID.Add(1)}
}

func makeElems(k jnibridge.Kind, n int32) any {
	switch k {
	case jnibridge.KindBoolean:
		return make([]bool, n)
	case jnibridge.KindByte:
		return make([]int8, n)
	case jnibridge.KindChar:
		return make([]uint16, n)
	case jnibridge.KindShort:
		return make([]int16, n)
	case jnibridge.KindInt:
		return make([]int32, n)
	case jnibridge.KindLong:
		return make([]int64, n)
	case jnibridge.KindFloat:
		return make([]float32, n)
	case jnibridge.KindDouble:
		return make([]float64, n)
	case jnibridge.KindObject:
		return make([]*object, n)
	}
	return nil
}

func elemsLen(elems any) int {
	switch s := elems.(type) {
	case []bool:
		return len(s)
	case []int8:
		return len(s)
	case []uint16:
		return len(s)
	case []int16:
		return len(s)
	case []int32:
		return len(s)
	case []int64:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	case []*object:
		return len(s)
	}
	return 0
}

// cloneElems returns a copy of a primitive array's storage.
func cloneElems(elems any) any {
	switch s := elems.(type) {
	case []bool:
		return append([]bool(nil), s...)
	case []int8:
		return append([]int8(nil), s...)
	case []uint16:
		return append([]uint16(nil), s...)
	case []int16:
		return append([]int16(nil), s...)
	case []int32:
		return append([]int32(nil), s...)
	case []int64:
		return append([]int64(nil), s...)
	case []float32:
		return append([]float32(nil), s...)
	case []float64:
		return append([]float64(nil), s...)
	}
	return nil
}

// copyRegion copies n elements between an array's storage and a caller
// buffer of the same element type. out selects the direction. It reports
// false when the types differ.
func copyRegion(elems any, start, n int32, buf any, out bool) bool {
	switch s := elems.(type) {
	case []bool:
		return region(s, start, n, buf, out)
	case []int8:
		return region(s, start, n, buf, out)
	case []uint16:
		return region(s, start, n, buf, out)
	case []int16:
		return region(s, start, n, buf, out)
	case []int32:
		return region(s, start, n, buf, out)
	case []int64:
		return region(s, start, n, buf, out)
	case []float32:
		return region(s, start, n, buf, out)
	case []float64:
		return region(s, start, n, buf, out)
	}
	return false
}

func region[T any](arr []T, start, n int32, buf any, out bool) bool {
	b, ok := buf.([]T)
	if !ok || int(n) > len(b) {
		return false
	}
	if out {
		copy(b[:n], arr[start:start+n])
	} else {
		copy(arr[start:start+n], b[:n])
	}
	return true
}
