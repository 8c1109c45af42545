package simvm

import (
	"fmt"
)

// Exception is an error that a method implementation returns to throw an
// exception of a specific class.
type Exception struct {
	Class   string
	Message string
}

// Throw returns an Exception of class with a formatted message.
func Throw(class, format string, args ...any) *Exception {
	return &Exception{Class: class, Message: fmt.Sprintf(format, args...)}
}

func (e *Exception) Error() string {
	if e.Message == "" {
		return e.Class
	}
	return e.Class + ": " + e.Message
}

// FatalError is the panic value of an unrecoverable runtime error.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return "simvm: fatal error: " + e.Message
}

// Names of the bootstrap classes.
const (
	ClassObject            = "java/lang/Object"
	ClassString            = "java/lang/String"
	ClassClass             = "java/lang/Class"
	ClassThrowable         = "java/lang/Throwable"
	ClassException         = "java/lang/Exception"
	ClassError             = "java/lang/Error"
	ClassRuntimeException  = "java/lang/RuntimeException"
	ClassIllegalArgument   = "java/lang/IllegalArgumentException"
	ClassIllegalState      = "java/lang/IllegalStateException"
	ClassNullPointer       = "java/lang/NullPointerException"
	ClassArithmetic        = "java/lang/ArithmeticException"
	ClassIndexOutOfBounds  = "java/lang/ArrayIndexOutOfBoundsException"
	ClassNegativeArraySize = "java/lang/NegativeArraySizeException"
	ClassArrayStore        = "java/lang/ArrayStoreException"
	ClassInstantiation     = "java/lang/InstantiationException"
	ClassOutOfMemory       = "java/lang/OutOfMemoryError"
	ClassNoSuchMethod      = "java/lang/NoSuchMethodError"
	ClassNoSuchField       = "java/lang/NoSuchFieldError"
	ClassNoClassDefFound   = "java/lang/NoClassDefFoundError"
	ClassAbstractMethod    = "java/lang/AbstractMethodError"
)

var bootstrapThrowables = []struct{ name, super string }{
	{ClassException, ClassThrowable},
	{ClassError, ClassThrowable},
	{ClassRuntimeException, ClassException},
	{ClassIllegalArgument, ClassRuntimeException},
	{ClassIllegalState, ClassRuntimeException},
	{ClassNullPointer, ClassRuntimeException},
	{ClassArithmetic, ClassRuntimeException},
	{ClassIndexOutOfBounds, ClassRuntimeException},
	{ClassNegativeArraySize, ClassRuntimeException},
	{ClassArrayStore, ClassRuntimeException},
	{ClassInstantiation, ClassException},
	{ClassOutOfMemory, ClassError},
	{ClassNoSuchMethod, ClassError},
	{ClassNoSuchField, ClassError},
	{ClassNoClassDefFound, ClassError},
	{ClassAbstractMethod, ClassError},
}
