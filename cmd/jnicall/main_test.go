package main

import (
	"bytes"
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
)

// mathWasm exports add(i32, i32) i32, div(i32, i32) i32, boom() and
// checked-add.
var mathWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x0a, 0x02,
	0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x60, 0x00, 0x00,
	0x03, 0x04, 0x03, 0x00, 0x00, 0x01,
	0x07, 0x22, 0x04,
	0x03, 'a', 'd', 'd', 0x00, 0x00,
	0x03, 'd', 'i', 'v', 0x00, 0x01,
	0x04, 'b', 'o', 'o', 'm', 0x00, 0x02,
	0x0b, 'c', 'h', 'e', 'c', 'k', 'e', 'd', '-', 'a', 'd', 'd', 0x00, 0x00,
	0x0a, 0x15, 0x03,
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6d, 0x0b,
	0x03, 0x00, 0x00, 0x0b,
}

func writeModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "math.wasm")
	if err := os.WriteFile(path, mathWasm, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errKind(err error) errors.Kind {
	var e *errors.Error
	if goerrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestRun(t *testing.T) {
	wasm := writeModule(t)

	tests := []struct {
		name string
		opts options
		want string
	}{
		{"list", options{list: true}, "checkedAdd(II)I  (export checked-add)"},
		{"no method lists", options{}, "Use -method"},
		{"add", options{method: "add", args: "2, 3"}, "5\n"},
		{"export name", options{method: "checked-add", args: "40,2"}, "42\n"},
		{"hex argument", options{method: "div", args: "0x10,4"}, "4\n"},
		{"negative", options{method: "add", args: "-1,1"}, "0\n"},
		{"custom class", options{class: "demo/Calc", list: true}, "Class: demo/Calc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.wasmFile = wasm
			var out bytes.Buffer
			if err := run(context.Background(), tt.opts, &out); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q does not contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	wasm := writeModule(t)

	tests := []struct {
		name string
		opts options
		kind errors.Kind
		msg  string
	}{
		{"divide by zero", options{method: "div", args: "1,0"}, errors.KindExceptionThrown, "divide by zero"},
		{"trap", options{method: "boom"}, errors.KindExceptionThrown, "unreachable"},
		{"missing method", options{method: "mul", args: "1,2"}, errors.KindNotFound, "mul"},
		{"arity", options{method: "add", args: "1"}, errors.KindInvalidInput, "takes 2 arguments"},
		{"bad number", options{method: "add", args: "1,x"}, errors.KindInvalidInput, "argument 2 of add"},
		{"overflow", options{method: "add", args: "1,4294967296"}, errors.KindInvalidInput, "argument 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.wasmFile = wasm
			err := run(context.Background(), tt.opts, &bytes.Buffer{})
			if err == nil {
				t.Fatal("run succeeded")
			}
			if k := errKind(err); k != tt.kind {
				t.Errorf("kind = %q, want %q (%v)", k, tt.kind, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}

	if err := run(context.Background(), options{}, &bytes.Buffer{}); err == nil {
		t.Error("ran without a module")
	}
	if err := run(context.Background(), options{wasmFile: filepath.Join(t.TempDir(), "none.wasm")}, &bytes.Buffer{}); err == nil {
		t.Error("ran with a missing module")
	}
}

func TestRunWithConfig(t *testing.T) {
	wasm := writeModule(t)
	dir := filepath.Dir(wasm)
	if err := os.WriteFile(filepath.Join(dir, "math.wit"), []byte(`
		package demo:math;
		world math {
			export checked-add: func(a: u8, b: u8) -> u8;
		}
	`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "bridge.toml")
	if err := os.WriteFile(cfgPath, []byte(`
[log]
level = "error"

[bridge]
strict = true

[wasm]
module = "math.wasm"
wit = "math.wit"
class = "demo/Math"
memory_limit_pages = 1
`), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), options{configFile: cfgPath, method: "checkedAdd", args: "100,100"}, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "-56\n" {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), options{configFile: cfgPath, list: true}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "checkedAdd(BB)B") {
		t.Errorf("output = %q", out.String())
	}

	if err := run(context.Background(), options{configFile: filepath.Join(dir, "none.toml")}, &bytes.Buffer{}); err == nil {
		t.Error("loaded a missing config")
	}
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		kind jnibridge.Kind
		in   string
		want jnibridge.Value
		ok   bool
	}{
		{jnibridge.KindBoolean, "true", jnibridge.BooleanValue(true), true},
		{jnibridge.KindBoolean, "0", jnibridge.BooleanValue(false), true},
		{jnibridge.KindByte, "-128", jnibridge.ByteValue(-128), true},
		{jnibridge.KindByte, "128", 0, false},
		{jnibridge.KindChar, "A", jnibridge.CharValue('A'), true},
		{jnibridge.KindChar, "é", jnibridge.CharValue('é'), true},
		{jnibridge.KindChar, "65", jnibridge.CharValue(65), true},
		{jnibridge.KindShort, "-32768", jnibridge.ShortValue(-32768), true},
		{jnibridge.KindInt, " 42 ", jnibridge.IntValue(42), true},
		{jnibridge.KindInt, "0x7fffffff", jnibridge.IntValue(0x7fffffff), true},
		{jnibridge.KindLong, "-9000000000", jnibridge.LongValue(-9000000000), true},
		{jnibridge.KindFloat, "1.5", jnibridge.FloatValue(1.5), true},
		{jnibridge.KindDouble, "-0.25", jnibridge.DoubleValue(-0.25), true},
		{jnibridge.KindDouble, "abc", 0, false},
		{jnibridge.KindObject, "null", jnibridge.ObjectValue(0), true},
		{jnibridge.KindObject, "hello", 0, false},
		{jnibridge.KindVoid, "", 0, false},
	}
	for _, tt := range tests {
		got, err := parseArg(tt.kind, tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseArg(%s, %q) error = %v", tt.kind, tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("parseArg(%s, %q) = %#x, want %#x", tt.kind, tt.in, uint64(got), uint64(tt.want))
		}
	}
}

func TestSplitArgs(t *testing.T) {
	if got := splitArgs("  "); got != nil {
		t.Errorf("splitArgs(blank) = %q", got)
	}
	if got := splitArgs("1, 2 ,3"); len(got) != 3 || got[1] != "2" {
		t.Errorf("splitArgs = %q", got)
	}
}

func TestInteractiveModel(t *testing.T) {
	cfg, err := loadConfig(options{wasmFile: writeModule(t)})
	if err != nil {
		t.Fatal(err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatal(err)
	}
	s, err := open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(context.Background())

	m := newInteractiveModel(s)
	if m.selected != 0 || !strings.Contains(m.View(), "Select a method") {
		t.Errorf("unexpected start view:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInputArgs || len(m.inputs) != 2 {
		t.Fatalf("state = %d, inputs = %d", m.state, len(m.inputs))
	}
	m.inputs[0].SetValue("20")
	m.inputs[1].SetValue("22")

	msg := m.callMethod()
	m.Update(msg)
	if m.state != stateShowResult || m.err != nil || m.result != "42" {
		t.Fatalf("state = %d, result = %q, err = %v", m.state, m.result, m.err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateSelectMethod {
		t.Errorf("state after result = %d", m.state)
	}

	// boom takes no arguments and is called straight from the list.
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no call command for boom")
	}
	m.Update(cmd())
	if m.err == nil || !strings.Contains(m.View(), "unreachable") {
		t.Errorf("boom view:\n%s", m.View())
	}
}
