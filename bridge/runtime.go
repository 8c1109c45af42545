package bridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// DefaultFrameCapacity is the local reference capacity requested by
// WithLocalFrame callers that pass zero.
const DefaultFrameCapacity = 16

// Bridge binds the call protocol to one runtime.
type Bridge struct {
	vm            jnibridge.VM
	threads       sync.Map // jnibridge.Env -> *Thread
	globals       sync.Map // jnibridge.Object -> struct{}
	policy        Policy
	version       jnibridge.Version
	frameCapacity int32
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithVersion sets the interface version requested from GetEnv.
func WithVersion(v jnibridge.Version) Option {
	return func(b *Bridge) { b.version = v }
}

// WithPolicy sets the pending exception policy.
func WithPolicy(p Policy) Option {
	return func(b *Bridge) { b.policy = p }
}

// WithFrameCapacity sets the capacity used when a frame is pushed with
// capacity zero.
func WithFrameCapacity(n int32) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.frameCapacity = n
		}
	}
}

// WithLogger sets the bridge package logger.
func WithLogger(l *zap.Logger) Option {
	return func(*Bridge) {
		if l != nil {
			SetLogger(l)
		}
	}
}

// New creates a bridge for vm. Most programs use Initialize instead so that
// the package level functions can reach the runtime.
func New(vm jnibridge.VM, opts ...Option) *Bridge {
	if vm == nil {
		panic(errors.NotInitialized(errors.PhaseInit, "runtime handle"))
	}
	b := &Bridge{
		vm:            vm,
		policy:        DefaultPolicy(),
		version:       jnibridge.Version1_6,
		frameCapacity: DefaultFrameCapacity,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// VM returns the runtime handle.
func (b *Bridge) VM() jnibridge.VM {
	return b.vm
}

// Policy returns the pending exception policy.
func (b *Bridge) Policy() Policy {
	return b.policy
}

var runtimeHandle atomic.Pointer[Bridge]

// Initialize stores the process-wide runtime handle. It panics when called
// more than once.
func Initialize(vm jnibridge.VM, opts ...Option) *Bridge {
	b := New(vm, opts...)
	if !runtimeHandle.CompareAndSwap(nil, b) {
		panic(errors.AlreadyInitialized(errors.PhaseInit, "runtime handle"))
	}
	Logger().Debug("runtime handle initialized", zap.Int32("version", int32(b.version)))
	return b
}

// Runtime returns the process-wide bridge. It panics when Initialize has not
// been called.
func Runtime() *Bridge {
	b := runtimeHandle.Load()
	if b == nil {
		panic(errors.NotInitialized(errors.PhaseInit, "runtime handle"))
	}
	return b
}

// AttachCurrentThread attaches the calling goroutine's OS thread to the
// process-wide runtime.
func AttachCurrentThread() (*Thread, error) {
	return Runtime().AttachCurrentThread()
}

// DetachCurrentThread detaches the calling thread from the process-wide
// runtime.
func DetachCurrentThread() error {
	return Runtime().DetachCurrentThread()
}

// GetEnvironment returns the calling thread's context if it is attached to
// the process-wide runtime.
func GetEnvironment() (*Thread, bool) {
	return Runtime().GetEnvironment()
}

// Attach opens a scoped attachment on the process-wide runtime.
func Attach() (*ThreadScope, error) {
	return Runtime().AttachScope()
}
