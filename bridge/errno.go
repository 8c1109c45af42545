package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/jni-bridge/errors"
)

// Errno is the kind of the last failure recorded for a thread.
type Errno uint8

const (
	NoError Errno = iota
	AttachFailed
	ParameterError
	ExceptionThrown
)

func (e Errno) String() string {
	switch e {
	case NoError:
		return "no error"
	case AttachFailed:
		return "attach failed"
	case ParameterError:
		return "parameter error"
	case ExceptionThrown:
		return "exception thrown"
	}
	return "unknown"
}

// errorRecord is one thread's error channel.
type errorRecord struct {
	message string
	kind    Errno
	op      Operation
}

func (r *errorRecord) reset() {
	r.kind = NoError
	r.message = ""
}

func (r *errorRecord) fail(kind Errno, op Operation, message string) {
	r.kind = kind
	r.op = op
	r.message = message
	if ce := Logger().Check(zap.DebugLevel, "boundary call failed"); ce != nil {
		ce.Write(
			zap.Stringer("op", op),
			zap.Stringer("errno", kind),
			zap.String("detail", message),
		)
	}
}

// CheckError returns the thread's last error kind and resets it to NoError.
// The message stays readable until the next operation.
func (t *Thread) CheckError() Errno {
	kind := t.rec.kind
	t.rec.kind = NoError
	return kind
}

// PeekError returns the thread's last error kind without resetting it.
func (t *Thread) PeekError() Errno {
	return t.rec.kind
}

// ErrorMessage returns the last recorded message, valid until the next
// operation on this thread.
func (t *Thread) ErrorMessage() string {
	return t.rec.message
}

// Err converts the current error record into a structured error, or nil if
// the record is clean. It does not reset the record.
func (t *Thread) Err() error {
	switch t.rec.kind {
	case AttachFailed:
		return errors.AttachFailed(t.rec.message)
	case ParameterError:
		return errors.InvalidParameter(errors.PhaseValidate, t.rec.op.String(), t.rec.message)
	case ExceptionThrown:
		return errors.ExceptionThrown(t.rec.op.String(), t.rec.message)
	}
	return nil
}
