//go:build jni && cgo

// Package jni binds the bridge to a real Java virtual machine through cgo.
//
// Build with -tags jni and point CGO_CFLAGS at the JDK include directories:
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" go build -tags jni
//
// A shared library loaded by the JVM receives the JavaVM pointer in
// JNI_OnLoad and hands it to FromPointer:
//
//	b := bridge.Initialize(jni.FromPointer(unsafe.Pointer(vm)))
package jni

// #include "helpers.h"
import "C"

import (
	"sync"
	"unsafe"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// VM wraps a JavaVM pointer.
type VM struct {
	vm *C.JavaVM
	// JNIEnv pointer -> *Env, so a thread always sees the same Env value.
	envs sync.Map
}

var _ jnibridge.VM = (*VM)(nil)

// FromPointer wraps the JavaVM* passed to JNI_OnLoad. It panics with a
// not_initialized error for a nil pointer.
func FromPointer(p unsafe.Pointer) *VM {
	if p == nil {
		panic(errors.NotInitialized(errors.PhaseInit, "JavaVM pointer"))
	}
	return &VM{vm: (*C.JavaVM)(p)}
}

func (v *VM) wrap(p unsafe.Pointer) *Env {
	if e, ok := v.envs.Load(p); ok {
		return e.(*Env)
	}
	e, _ := v.envs.LoadOrStore(p, &Env{env: (*C.JNIEnv)(p)})
	return e.(*Env)
}

func (v *VM) GetEnv(version jnibridge.Version) (jnibridge.Env, jnibridge.Status) {
	var p unsafe.Pointer
	st := jnibridge.Status(C.vm_get_env(v.vm, &p, C.jint(version)))
	if st != jnibridge.StatusOK || p == nil {
		return nil, st
	}
	return v.wrap(p), st
}

func (v *VM) AttachCurrentThread() (jnibridge.Env, jnibridge.Status) {
	var p unsafe.Pointer
	st := jnibridge.Status(C.vm_attach(v.vm, &p))
	if st != jnibridge.StatusOK || p == nil {
		return nil, st
	}
	return v.wrap(p), st
}

func (v *VM) DetachCurrentThread() jnibridge.Status {
	var p unsafe.Pointer
	if C.vm_get_env(v.vm, &p, C.jint(jnibridge.Version1_6)) == C.JNI_OK && p != nil {
		v.envs.Delete(p)
	}
	return jnibridge.Status(C.vm_detach(v.vm))
}
