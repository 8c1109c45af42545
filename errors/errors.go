package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit      Phase = "init"      // runtime handle setup
	PhaseAttach    Phase = "attach"    // thread attachment
	PhaseValidate  Phase = "validate"  // parameter validation before a boundary call
	PhaseInvoke    Phase = "invoke"    // the boundary call itself
	PhaseReference Phase = "reference" // local frames and global references
	PhaseLookup    Phase = "lookup"    // class, method and field resolution
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseLoad      Phase = "load"      // class loading from external modules
)

// Kind categorizes the error
type Kind string

const (
	KindAttachFailed       Kind = "attach_failed"
	KindInvalidParameter   Kind = "invalid_parameter"
	KindExceptionThrown    Kind = "exception_thrown"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyInitialized Kind = "already_initialized"
	KindDoubleRelease      Kind = "double_release"
	KindFrameOrder         Kind = "frame_order"
	KindFramePush          Kind = "frame_push"
	KindNotFound           Kind = "not_found"
	KindTypeMismatch       Kind = "type_mismatch"
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupported        Kind = "unsupported"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Class  string
	Member string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Class != "" || e.Member != "" {
		b.WriteString(": ")
		if e.Class != "" && e.Member != "" {
			b.WriteString(e.Class)
			b.WriteByte('.')
			b.WriteString(e.Member)
		} else if e.Class != "" {
			b.WriteString("class ")
			b.WriteString(e.Class)
		} else {
			b.WriteString("member ")
			b.WriteString(e.Member)
		}
	}

	if e.Detail != "" {
		if e.Class != "" || e.Member != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the boundary operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the logical path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Class sets the class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Member sets the method or field name
func (b *Builder) Member(name string) *Builder {
	b.err.Member = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AttachFailed creates a thread attachment error
func AttachFailed(detail string) *Error {
	return &Error{
		Phase:  PhaseAttach,
		Kind:   KindAttachFailed,
		Detail: detail,
	}
}

// InvalidParameter creates a parameter validation error
func InvalidParameter(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParameter,
		Op:     op,
		Detail: detail,
	}
}

// ExceptionThrown creates an error describing a managed-side exception
func ExceptionThrown(op, message string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindExceptionThrown,
		Op:     op,
		Detail: message,
	}
}

// NotInitialized creates an error for using a component before setup
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: component + " not initialized",
	}
}

// AlreadyInitialized creates an error for repeated one-time setup
func AlreadyInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyInitialized,
		Detail: component + " already initialized",
	}
}

// DoubleRelease creates an error for releasing a reference that is not live
func DoubleRelease(what string, handle any) *Error {
	return &Error{
		Phase:  PhaseReference,
		Kind:   KindDoubleRelease,
		Op:     what,
		Detail: fmt.Sprintf("handle %v already released or never created", handle),
		Value:  handle,
	}
}

// FrameOrder creates an error for popping a frame out of LIFO order
func FrameOrder(depth, top int) *Error {
	return &Error{
		Phase:  PhaseReference,
		Kind:   KindFrameOrder,
		Op:     "pop-local-frame",
		Detail: fmt.Sprintf("frame at depth %d is not the innermost frame (depth %d)", depth, top),
		Value:  depth,
	}
}

// FramePush creates an error for a local frame that could not be pushed
func FramePush(capacity int32, cause error) *Error {
	return &Error{
		Phase:  PhaseReference,
		Kind:   KindFramePush,
		Op:     "push-local-frame",
		Detail: fmt.Sprintf("cannot push frame with capacity %d", capacity),
		Value:  capacity,
		Cause:  cause,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, member, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Member: member,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a class loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
