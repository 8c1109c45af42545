// Package wasmvm loads core WebAssembly modules into the simulated runtime.
//
// Every exported function of the module becomes a static method of a new
// class, so guest code is reachable through the bridge like any other
// managed method:
//
//	mod, err := wasmvm.Load(ctx, vm, "demo/Math", wasmBytes,
//		wasmvm.WithWIT(`add: func(a: s32, b: s32) -> s32;`))
//	...
//	cls := t.FindClass("demo/Math")
//	add := t.GetStaticMethodID(cls, "add", "(II)I")
//	sum := bridge.Int.CallStaticMethod(t, cls, add, jnibridge.NewArgs().Int(2).Int(3))
//
// Kebab-case export names become camelCase method names. A trap in the
// guest is thrown as java/lang/RuntimeException and surfaces through the
// bridge as ExceptionThrown.
package wasmvm
