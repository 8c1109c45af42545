package bridge

import (
	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// LocalFrame is a pushed local reference frame. Frames on one thread must be
// popped in the reverse order they were pushed.
type LocalFrame struct {
	t        *Thread
	depth    int
	capacity int32
	popped   bool
}

// PushLocalFrame pushes a frame able to hold at least capacity local
// references; zero selects the bridge's default capacity. The capacity is a
// hint to the runtime, not a limit.
func PushLocalFrame(t *Thread, capacity int32) (*LocalFrame, error) {
	env, ok := t.acquire(OpPushLocalFrame)
	if !ok {
		return nil, errors.AttachFailed("push local frame on a detached thread")
	}
	t.rec.reset()

	if capacity == 0 {
		capacity = t.bridge.frameCapacity
	}
	if capacity < 0 {
		t.rec.fail(ParameterError, OpPushLocalFrame, "capacity is negative")
		return nil, errors.FramePush(capacity, t.Err())
	}
	pending := env.ExceptionCheck()
	if pending && t.bridge.policy.CheckPending(OpPushLocalFrame) {
		t.takePending(env, OpPushLocalFrame)
		return nil, errors.FramePush(capacity, t.Err())
	}

	if st := env.PushLocalFrame(capacity); st != jnibridge.StatusOK {
		if !pending && env.ExceptionCheck() {
			t.takePending(env, OpPushLocalFrame)
		}
		Logger().Warn("local frame push failed",
			zap.Int32("capacity", capacity),
			zap.Stringer("status", st))
		return nil, errors.FramePush(capacity, t.Err())
	}

	f := &LocalFrame{t: t, depth: len(t.frames), capacity: capacity}
	t.frames = append(t.frames, f)
	return f, nil
}

// Depth returns the frame's position on its thread's frame stack.
func (f *LocalFrame) Depth() int {
	return f.depth
}

// Pop pops the frame, releasing every local reference created in it.
func (f *LocalFrame) Pop() error {
	_, err := f.pop(0)
	return err
}

// PopWith pops the frame and returns a reference to result that is valid in
// the enclosing frame.
func (f *LocalFrame) PopWith(result jnibridge.Object) (jnibridge.Object, error) {
	return f.pop(result)
}

// pop leaves the error record untouched so failures recorded inside the
// frame survive it.
func (f *LocalFrame) pop(result jnibridge.Object) (jnibridge.Object, error) {
	t := f.t
	if f.popped {
		Logger().Warn("local frame popped twice", zap.Int("depth", f.depth))
		return 0, errors.New(errors.PhaseReference, errors.KindDoubleRelease).
			Op(OpPopLocalFrame.String()).
			Value(f.depth).
			Detail("frame at depth %d already popped", f.depth).
			Build()
	}
	if !t.Attached() {
		f.popped = true
		return 0, errors.AttachFailed("pop local frame on a detached thread")
	}
	top := len(t.frames) - 1
	if top < 0 || t.frames[top] != f {
		Logger().Warn("local frame popped out of order",
			zap.Int("depth", f.depth),
			zap.Int("top", top))
		return 0, errors.FrameOrder(f.depth, top)
	}

	t.frames[top] = nil
	t.frames = t.frames[:top]
	f.popped = true
	return t.env.PopLocalFrame(result), nil
}

// WithLocalFrame runs fn inside a pushed frame and pops it on every exit
// path, including panics.
func WithLocalFrame(t *Thread, capacity int32, fn func() error) (err error) {
	f, err := PushLocalFrame(t, capacity)
	if err != nil {
		return err
	}
	defer func() {
		if perr := f.Pop(); err == nil {
			err = perr
		}
	}()
	return fn()
}

// FrameDepth returns the number of frames pushed through the bridge and not
// yet popped on t.
func (t *Thread) FrameDepth() int {
	return len(t.frames)
}
