package bridge

import "fmt"

// Operation names one boundary operation routed through the call protocol.
type Operation uint8

const (
	OpCallMethod Operation = iota
	OpCallNonvirtualMethod
	OpCallStaticMethod
	OpGetField
	OpSetField
	OpGetStaticField
	OpSetStaticField
	OpNewArray
	OpGetArrayElements
	OpReleaseArrayElements
	OpGetArrayRegion
	OpSetArrayRegion

	OpFindClass
	OpThrow
	OpThrowNew
	OpNewGlobalRef
	OpDeleteGlobalRef
	OpDeleteLocalRef
	OpGetObjectClass
	OpIsInstanceOf
	OpGetMethodID
	OpGetFieldID
	OpGetStaticMethodID
	OpGetStaticFieldID
	OpNewObject
	OpNewStringUTF
	OpGetStringUTFLength
	OpGetStringUTFChars
	OpReleaseStringUTFChars
	OpGetArrayLength
	OpGetObjectArrayElement
	OpSetObjectArrayElement
	OpNewObjectArray
	OpNewLocalRef
	OpPushLocalFrame
	OpPopLocalFrame
	OpExceptionOccurred

	opCount
)

var opNames = [opCount]string{
	OpCallMethod:            "call-method",
	OpCallNonvirtualMethod:  "call-nonvirtual-method",
	OpCallStaticMethod:      "call-static-method",
	OpGetField:              "get-field",
	OpSetField:              "set-field",
	OpGetStaticField:        "get-static-field",
	OpSetStaticField:        "set-static-field",
	OpNewArray:              "new-array",
	OpGetArrayElements:      "get-array-elements",
	OpReleaseArrayElements:  "release-array-elements",
	OpGetArrayRegion:        "get-array-region",
	OpSetArrayRegion:        "set-array-region",
	OpFindClass:             "find-class",
	OpThrow:                 "throw",
	OpThrowNew:              "throw-new",
	OpNewGlobalRef:          "new-global-ref",
	OpDeleteGlobalRef:       "delete-global-ref",
	OpDeleteLocalRef:        "delete-local-ref",
	OpGetObjectClass:        "get-object-class",
	OpIsInstanceOf:          "is-instance-of",
	OpGetMethodID:           "get-method-id",
	OpGetFieldID:            "get-field-id",
	OpGetStaticMethodID:     "get-static-method-id",
	OpGetStaticFieldID:      "get-static-field-id",
	OpNewObject:             "new-object",
	OpNewStringUTF:          "new-string-utf",
	OpGetStringUTFLength:    "get-string-utf-length",
	OpGetStringUTFChars:     "get-string-utf-chars",
	OpReleaseStringUTFChars: "release-string-utf-chars",
	OpGetArrayLength:        "get-array-length",
	OpGetObjectArrayElement: "get-object-array-element",
	OpSetObjectArrayElement: "set-object-array-element",
	OpNewObjectArray:        "new-object-array",
	OpNewLocalRef:           "new-local-ref",
	OpPushLocalFrame:        "push-local-frame",
	OpPopLocalFrame:         "pop-local-frame",
	OpExceptionOccurred:     "exception-occurred",
}

func (op Operation) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// ParseOperation maps a kebab-case operation name to its Operation.
func ParseOperation(name string) (Operation, bool) {
	for i, n := range opNames {
		if n == name {
			return Operation(i), true
		}
	}
	return 0, false
}

// Operations returns every operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, opCount)
	for i := range ops {
		ops[i] = Operation(i)
	}
	return ops
}

// Policy decides, per operation, whether the call must be skipped while an
// exception is already pending. The zero Policy checks before every
// operation.
type Policy struct {
	allowPending [opCount]bool
}

// DefaultPolicy checks for a pending exception before every operation except
// the ones the runtime permits while an exception is pending: releasing
// buffers, deleting references and pushing or popping local frames.
func DefaultPolicy() Policy {
	var p Policy
	p.allowPending[OpReleaseArrayElements] = true
	p.allowPending[OpReleaseStringUTFChars] = true
	p.allowPending[OpDeleteGlobalRef] = true
	p.allowPending[OpDeleteLocalRef] = true
	p.allowPending[OpPushLocalFrame] = true
	p.allowPending[OpPopLocalFrame] = true
	return p
}

// StrictPolicy checks for a pending exception before every operation.
func StrictPolicy() Policy {
	return Policy{}
}

// CheckPending reports whether op is skipped when an exception is pending.
func (p Policy) CheckPending(op Operation) bool {
	if op >= opCount {
		return true
	}
	return !p.allowPending[op]
}

// AllowPending returns a copy of p in which op runs even while an exception
// is pending.
func (p Policy) AllowPending(ops ...Operation) Policy {
	for _, op := range ops {
		if op < opCount {
			p.allowPending[op] = true
		}
	}
	return p
}

// RequireClean returns a copy of p in which op is skipped while an exception
// is pending.
func (p Policy) RequireClean(ops ...Operation) Policy {
	for _, op := range ops {
		if op < opCount {
			p.allowPending[op] = false
		}
	}
	return p
}
