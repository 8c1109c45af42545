package jni

import (
	"unsafe"

	jnibridge "github.com/wippyai/jni-bridge"
)

// makeSlice allocates the element slice type used for kind k.
func makeSlice(k jnibridge.Kind, n int32) any {
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
	}
	return nil
}

func sliceLen(buf any) int {
	switch s := buf.(type) {
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
	}
	return 0
}

// slicePointer returns the address of the first element, or nil for an
// empty or unknown slice. Go bool and jboolean are both one byte.
func slicePointer(buf any) unsafe.Pointer {
	if sliceLen(buf) == 0 {
		return nil
	}
	switch s := buf.(type) {
	case []bool:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []int8:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []uint16:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []int16:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []int32:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []int64:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []float32:
		return unsafe.Pointer(unsafe.SliceData(s))
	case []float64:
		return unsafe.Pointer(unsafe.SliceData(s))
	}
	return nil
}
