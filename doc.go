// Package jnibridge defines the call boundary between native Go code and a
// managed object runtime reachable through a JNI-shaped interface.
//
// The root package holds only the contract: the VM and Env interfaces, the
// value-type tags, the jvalue-compatible Value union and the opaque handle
// types. Implementations live in subpackages.
//
// # Architecture Overview
//
//	jnibridge/         Root package with the VM/Env contract and value types
//	├── bridge/        Uniform call protocol, error channel, frames, global refs
//	├── errors/        Structured error types for debugging
//	├── reftable/      Reference handle table with lifecycle observers
//	├── simvm/         In-process managed runtime implementing Env
//	├── wasmvm/        wazero-backed classes for simvm
//	├── jni/           cgo backend over a real JavaVM (build tag jni)
//	├── config/        TOML configuration
//	└── cmd/jnicall/   Command line driver
//
// # Quick Start
//
// Attach the current goroutine and call a static method:
//
//	b := bridge.Initialize(vm)
//
//	scope, err := b.AttachScope()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scope.Close()
//	t := scope.Thread()
//
//	cls := t.FindClass("demo/Calc")
//	add := t.GetStaticMethodID(cls, "add", "(II)I")
//	sum := bridge.Int.CallStaticMethod(t, cls, add, jnibridge.NewArgs().Int(2).Int(3))
//	if t.CheckError() != bridge.NoError {
//	    log.Fatal(t.ErrorMessage())
//	}
//
// # Error Model
//
// Dispatcher calls never unwind. A failed call returns the zero value of its
// type and leaves the reason in the calling thread's error channel, which is
// read with CheckError, PeekError, ErrorMessage and ExtractThrowable.
//
// # Thread Safety
//
// VM implementations are safe for concurrent use. An Env, and the bridge
// Thread wrapping it, belong to exactly one goroutine locked to its OS thread
// and must never be handed to another goroutine.
package jnibridge
