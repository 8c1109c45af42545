// Package simvm is an in-process managed runtime that implements the
// jnibridge.VM and jnibridge.Env boundary.
//
// It models the parts of a JVM that native code can observe: classes with
// single inheritance, objects with typed fields, strings, primitive and
// object arrays, pending exceptions, local reference frames, global
// references and per-thread environments. Methods are Go functions.
//
//	vm := simvm.New()
//	_, err := vm.DefineClass("demo/Calc", "").
//	    StaticMethod("add", "(II)I", func(env *simvm.Env, _ jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
//	        return jnibridge.IntValue(args[0].Int() + args[1].Int()), nil
//	    }).
//	    Build()
//
// A method that returns an error throws it: an *Exception keeps its class,
// any other error becomes java/lang/RuntimeException.
//
// # Threads
//
// Environments are bound to the goroutine that attached. Using an Env from
// another goroutine, or after detaching, is a fatal error, as is any
// operation the real runtime would reject with a crash. Fatal errors panic
// with *FatalError.
//
// # Observability
//
// Stats exposes counters for boundary calls, method invocations, field and
// array traffic, attachment and frames, so tests can assert that an
// operation never reached the runtime.
package simvm
