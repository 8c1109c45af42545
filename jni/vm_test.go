//go:build jni && cgo

package jni

import (
	"testing"

	"github.com/wippyai/jni-bridge/errors"
)

func TestFromNilPointer(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("recovered %v, want *errors.Error", r)
		}
		if err.Kind != errors.KindNotInitialized {
			t.Errorf("kind = %s", err.Kind)
		}
	}()
	FromPointer(nil)
}
