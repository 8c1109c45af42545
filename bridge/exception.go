package bridge

import (
	jnibridge "github.com/wippyai/jni-bridge"
)

const undescribed = "exception pending"

// takePending clears the pending exception, records it as ExceptionThrown
// and keeps the throwable for ExtractThrowable.
func (t *Thread) takePending(env jnibridge.Env, op Operation) {
	thr := env.ExceptionOccurred()
	env.ExceptionClear()
	msg := describe(env, thr)
	t.keep(env, thr)
	t.rec.fail(ExceptionThrown, op, msg)
}

// describe returns the throwable's toString text. It talks to the
// environment directly so that exceptions raised while describing never
// reach the error record.
func describe(env jnibridge.Env, thr jnibridge.Throwable) string {
	if thr == 0 {
		return undescribed
	}
	cls := env.GetObjectClass(jnibridge.Object(thr))
	if cls == 0 {
		env.ExceptionClear()
		return undescribed
	}
	defer env.DeleteLocalRef(jnibridge.Object(cls))

	mid := env.GetMethodID(cls, "toString", "()Ljava/lang/String;")
	if mid == 0 {
		env.ExceptionClear()
		return undescribed
	}
	s := jnibridge.String(env.CallMethod(jnibridge.KindObject, jnibridge.Object(thr), mid, nil).Object())
	if env.ExceptionCheck() {
		env.ExceptionClear()
		return undescribed
	}
	if s == 0 {
		return undescribed
	}
	defer env.DeleteLocalRef(jnibridge.Object(s))

	chars := env.GetStringUTFChars(s)
	if chars == nil {
		env.ExceptionClear()
		return undescribed
	}
	msg := string(chars)
	env.ReleaseStringUTFChars(s, chars)
	return msg
}

// keep promotes thr to a global reference, replacing the previously kept
// throwable, and deletes the local reference.
func (t *Thread) keep(env jnibridge.Env, thr jnibridge.Throwable) {
	if thr == 0 {
		return
	}
	g := env.NewGlobalRef(jnibridge.Object(thr))
	if env.ExceptionCheck() {
		env.ExceptionClear()
	}
	env.DeleteLocalRef(jnibridge.Object(thr))
	t.dropStash()
	t.stash = g
}

func (t *Thread) dropStash() {
	if t.stash != 0 && t.env != nil {
		t.env.DeleteGlobalRef(t.stash)
	}
	t.stash = 0
}

// PeekPendingFailure reports whether an exception is pending on the thread
// without clearing it.
func (t *Thread) PeekPendingFailure() bool {
	if !t.Attached() {
		return false
	}
	return t.env.ExceptionCheck()
}

// TakePendingFailure clears the pending exception and records it. With no
// exception pending it returns NoError and leaves the record alone.
func (t *Thread) TakePendingFailure() (Errno, string) {
	env, ok := t.acquire(OpExceptionOccurred)
	if !ok {
		if t == nil {
			return AttachFailed, ""
		}
		return t.rec.kind, t.rec.message
	}
	if !env.ExceptionCheck() {
		return NoError, ""
	}
	t.takePending(env, OpExceptionOccurred)
	return t.rec.kind, t.rec.message
}

// ExtractThrowable returns the failure object as a local reference. A
// pending exception is cleared and returned; otherwise the throwable kept by
// the last translated failure is handed over. When expected is non-null and
// the throwable is not an instance of it, ExtractThrowable returns null and
// leaves the failure where it was.
func (t *Thread) ExtractThrowable(expected jnibridge.Class) jnibridge.Throwable {
	env, ok := t.acquire(OpExceptionOccurred)
	if !ok {
		return 0
	}

	if env.ExceptionCheck() {
		thr := env.ExceptionOccurred()
		env.ExceptionClear()
		if thr == 0 {
			return 0
		}
		if expected != 0 && !env.IsInstanceOf(jnibridge.Object(thr), expected) {
			env.Throw(thr)
			env.DeleteLocalRef(jnibridge.Object(thr))
			return 0
		}
		return thr
	}

	if t.stash == 0 {
		return 0
	}
	if expected != 0 && !env.IsInstanceOf(t.stash, expected) {
		return 0
	}
	local := env.NewLocalRef(t.stash)
	env.DeleteGlobalRef(t.stash)
	t.stash = 0
	return jnibridge.Throwable(local)
}
