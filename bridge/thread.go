package bridge

import (
	"runtime"

	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// Thread is the call context of one attached OS thread. It must only be
// used by the goroutine that attached it.
type Thread struct {
	bridge *Bridge
	env    jnibridge.Env
	rec    errorRecord
	frames []*LocalFrame
	stash  jnibridge.Object
	locks  int
}

// Env returns the environment lent by the runtime, or nil once detached.
func (t *Thread) Env() jnibridge.Env {
	return t.env
}

// Bridge returns the bridge the thread is attached through.
func (t *Thread) Bridge() *Bridge {
	return t.bridge
}

// Attached reports whether the thread still holds an environment.
func (t *Thread) Attached() bool {
	return t != nil && t.env != nil
}

// acquire is step one of the call protocol.
func (t *Thread) acquire(op Operation) (jnibridge.Env, bool) {
	if t == nil {
		Logger().Warn("boundary call without a thread", zap.Stringer("op", op))
		return nil, false
	}
	if t.env == nil {
		t.rec.fail(AttachFailed, op, "thread is not attached")
		return nil, false
	}
	return t.env, true
}

func (t *Thread) unlock() {
	if t.locks > 0 {
		t.locks--
		runtime.UnlockOSThread()
	}
}

func (b *Bridge) threadFor(env jnibridge.Env) *Thread {
	if v, ok := b.threads.Load(env); ok {
		return v.(*Thread)
	}
	actual, _ := b.threads.LoadOrStore(env, &Thread{bridge: b, env: env})
	return actual.(*Thread)
}

// AttachCurrentThread returns the calling thread's context, attaching the
// thread first if needed. The goroutine stays locked to its OS thread until
// DetachCurrentThread.
func (b *Bridge) AttachCurrentThread() (*Thread, error) {
	t, _, err := b.attach()
	return t, err
}

func (b *Bridge) attach() (*Thread, bool, error) {
	runtime.LockOSThread()

	env, st := b.vm.GetEnv(b.version)
	attached := false
	switch st {
	case jnibridge.StatusOK:
	case jnibridge.StatusDetached:
		env, st = b.vm.AttachCurrentThread()
		if st != jnibridge.StatusOK {
			runtime.UnlockOSThread()
			return nil, false, errors.New(errors.PhaseAttach, errors.KindAttachFailed).
				Op("attach-current-thread").
				Value(st).
				Detail("runtime returned %s", st).
				Build()
		}
		attached = true
	default:
		runtime.UnlockOSThread()
		return nil, false, errors.New(errors.PhaseAttach, errors.KindAttachFailed).
			Op("get-env").
			Value(st).
			Detail("runtime returned %s", st).
			Build()
	}
	if env == nil {
		runtime.UnlockOSThread()
		return nil, false, errors.AttachFailed("runtime returned no environment")
	}

	t := b.threadFor(env)
	t.locks++
	if attached {
		Logger().Debug("thread attached")
	}
	return t, attached, nil
}

// GetEnvironment returns the calling thread's context without attaching.
// It takes no OS thread lock: an attached thread is already pinned by
// whoever attached it, whether an attach scope or the runtime calling in.
func (b *Bridge) GetEnvironment() (*Thread, bool) {
	env, st := b.vm.GetEnv(b.version)
	if st != jnibridge.StatusOK || env == nil {
		return nil, false
	}
	return b.threadFor(env), true
}

// DetachCurrentThread detaches the calling thread unconditionally and
// releases every OS thread lock taken by its attachments.
func (b *Bridge) DetachCurrentThread() error {
	var t *Thread
	if env, st := b.vm.GetEnv(b.version); st == jnibridge.StatusOK {
		if v, ok := b.threads.LoadAndDelete(env); ok {
			t = v.(*Thread)
			t.dropStash()
		}
	}

	st := b.vm.DetachCurrentThread()

	if t != nil {
		t.env = nil
		t.frames = nil
		for t.locks > 0 {
			t.unlock()
		}
	}
	Logger().Debug("thread detached", zap.Stringer("status", st))

	if st != jnibridge.StatusOK {
		return errors.New(errors.PhaseAttach, errors.KindAttachFailed).
			Op("detach-current-thread").
			Value(st).
			Detail("runtime returned %s", st).
			Build()
	}
	return nil
}

// ThreadScope attaches the calling thread for the duration of a scope. Only
// a scope that performed the attach detaches on Close, so nested scopes on
// an already attached thread leave it attached.
type ThreadScope struct {
	bridge     *Bridge
	thread     *Thread
	needDetach bool
	closed     bool
}

// AttachScope opens a scoped attachment.
func (b *Bridge) AttachScope() (*ThreadScope, error) {
	t, attached, err := b.attach()
	if err != nil {
		return nil, err
	}
	return &ThreadScope{bridge: b, thread: t, needDetach: attached}, nil
}

// Thread returns the scope's thread context.
func (s *ThreadScope) Thread() *Thread {
	return s.thread
}

// Owner reports whether this scope performed the attach.
func (s *ThreadScope) Owner() bool {
	return s.needDetach
}

// Close ends the scope. It is safe to call more than once.
func (s *ThreadScope) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if s.needDetach {
		return s.bridge.DetachCurrentThread()
	}
	s.thread.unlock()
	return nil
}

// WithThread runs fn inside an attach scope.
func (b *Bridge) WithThread(fn func(*Thread) error) (err error) {
	scope, err := b.AttachScope()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := scope.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(scope.Thread())
}
