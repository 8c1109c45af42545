// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: the boundary operation, the class and member
// involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindExceptionThrown).
//		Op("call-static-method").
//		Class("demo/Calc").
//		Member("div(II)I").
//		Detail("java.lang.ArithmeticException: / by zero").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidParameter(errors.PhaseValidate, "get-method-id", "class is null")
//	err := errors.DoubleRelease("global-ref", handle)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
