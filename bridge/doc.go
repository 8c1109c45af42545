// Package bridge implements the uniform call protocol between Go and a
// managed runtime exposed through jnibridge.VM and jnibridge.Env.
//
// # Call Protocol
//
// Every dispatcher operation runs the same five steps:
//
//  1. Obtain the thread's environment. A detached thread fails with
//     AttachFailed.
//  2. Validate required parameters. A null object, class or identifier
//     records ParameterError and the boundary is never reached.
//  3. Unless the operation's Policy allows it, check for a pending
//     exception; if one is pending it is taken, recorded as
//     ExceptionThrown and the call is skipped.
//  4. Perform the boundary call through the operation descriptor.
//  5. Check again. A newly pending exception is taken and recorded, and
//     the computed result is replaced by the zero value.
//
// The protocol lives in one generic function; the per-type descriptors
// (Boolean, Byte, Char, Short, Int, Long, Float, Double, Object, Void) only
// bind a value kind to its encode and decode functions.
//
// # Threads
//
// A Thread is the explicit per-thread call context. It holds the
// environment lent by the runtime and the thread's error record, so error
// state is never shared between goroutines:
//
//	scope, err := b.AttachScope()
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
//	t := scope.Thread()
//
// Attaching locks the goroutine to its OS thread until the matching
// detach or scope close.
//
// # References
//
// LocalFrame bounds the lifetime of local references created in a region;
// GlobalRef promotes a reference out of every frame until released:
//
//	err := bridge.WithLocalFrame(t, 32, func() error {
//	    s := t.NewStringUTF("hello")
//	    g, err := bridge.NewGlobalRef(t, jnibridge.Object(s))
//	    ...
//	})
package bridge
