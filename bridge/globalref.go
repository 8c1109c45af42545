package bridge

import (
	"sync/atomic"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// GlobalRef owns one global reference. It may be released from any attached
// thread, exactly once.
type GlobalRef struct {
	ref      jnibridge.Object
	released atomic.Bool
}

// NewGlobalRef promotes o to a global reference.
func NewGlobalRef(t *Thread, o jnibridge.Object) (*GlobalRef, error) {
	g := t.NewGlobalRef(o)
	if g == 0 {
		if err := t.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.PhaseReference, errors.KindInvalidParameter).
			Op(OpNewGlobalRef.String()).
			Detail("runtime returned a null global reference").
			Build()
	}
	return &GlobalRef{ref: g}, nil
}

// Object returns the referenced object, or null once released.
func (r *GlobalRef) Object() jnibridge.Object {
	if r == nil || r.released.Load() {
		return 0
	}
	return r.ref
}

// Released reports whether Release has succeeded.
func (r *GlobalRef) Released() bool {
	return r.released.Load()
}

// Release deletes the global reference. A second release, or a release of a
// nil GlobalRef, returns a double_release error.
func (r *GlobalRef) Release(t *Thread) error {
	if r == nil {
		return errors.DoubleRelease("global reference", nil)
	}
	if !t.Attached() {
		return errors.AttachFailed("release global reference on a detached thread")
	}
	if !r.released.CompareAndSwap(false, true) {
		return errors.DoubleRelease("global reference", uint64(r.ref))
	}
	t.DeleteGlobalRef(r.ref)
	if t.PeekError() != NoError {
		if _, live := t.bridge.globals.Load(r.ref); live {
			r.released.Store(false)
		}
		return t.Err()
	}
	return nil
}
