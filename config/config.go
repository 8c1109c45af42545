// Package config loads jni-bridge settings from TOML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/wasmvm"
)

// Config is the contents of a bridge.toml file.
type Config struct {
	Log    Log    `toml:"log"`
	Bridge Bridge `toml:"bridge"`
	Wasm   Wasm   `toml:"wasm"`

	// Dir is the directory the file was loaded from. Relative paths in
	// the file are resolved against it.
	Dir string `toml:"-"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Bridge configures the call protocol.
type Bridge struct {
	Version       string `toml:"version"`
	FrameCapacity int32  `toml:"frame_capacity"`
	// Strict starts from StrictPolicy instead of DefaultPolicy.
	Strict           bool     `toml:"strict"`
	SkipPendingCheck []string `toml:"skip_pending_check"`
	RequireClean     []string `toml:"require_clean"`
}

// Wasm configures the wasm class loader.
type Wasm struct {
	Module           string `toml:"module"`
	WIT              string `toml:"wit"`
	Class            string `toml:"class"`
	Super            string `toml:"super"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info"},
		Bridge: Bridge{
			Version:       jnibridge.Version1_6.String(),
			FrameCapacity: bridge.DefaultFrameCapacity,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read "+path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Config("parse toml", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Config("unknown key "+undecoded[0].String(), nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value that Parse cannot check by type.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Config("log.level", err)
	}
	if _, err := jnibridge.ParseVersion(c.Bridge.Version); err != nil {
		return errors.Config("bridge.version", err)
	}
	if c.Bridge.FrameCapacity < 0 {
		return errors.Config("bridge.frame_capacity must not be negative", nil)
	}
	if _, err := operations("bridge.skip_pending_check", c.Bridge.SkipPendingCheck); err != nil {
		return err
	}
	if _, err := operations("bridge.require_clean", c.Bridge.RequireClean); err != nil {
		return err
	}
	return nil
}

func operations(key string, names []string) ([]bridge.Operation, error) {
	ops := make([]bridge.Operation, 0, len(names))
	for _, name := range names {
		op, ok := bridge.ParseOperation(name)
		if !ok {
			return nil, errors.Config(key+": unknown operation "+name, nil)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Policy builds the pending exception policy. RequireClean is applied after
// SkipPendingCheck, so an operation named in both is checked.
func (c *Config) Policy() (bridge.Policy, error) {
	p := bridge.DefaultPolicy()
	if c.Bridge.Strict {
		p = bridge.StrictPolicy()
	}
	skip, err := operations("bridge.skip_pending_check", c.Bridge.SkipPendingCheck)
	if err != nil {
		return p, err
	}
	clean, err := operations("bridge.require_clean", c.Bridge.RequireClean)
	if err != nil {
		return p, err
	}
	return p.AllowPending(skip...).RequireClean(clean...), nil
}

// BridgeOptions converts the [bridge] table into bridge options.
func (c *Config) BridgeOptions() ([]bridge.Option, error) {
	v, err := jnibridge.ParseVersion(c.Bridge.Version)
	if err != nil {
		return nil, errors.Config("bridge.version", err)
	}
	p, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return []bridge.Option{
		bridge.WithVersion(v),
		bridge.WithPolicy(p),
		bridge.WithFrameCapacity(c.Bridge.FrameCapacity),
	}, nil
}

// WasmOptions converts the [wasm] table into loader options. wit is the
// WIT text, read by the caller from WITPath.
func (c *Config) WasmOptions(wit string) []wasmvm.Option {
	var opts []wasmvm.Option
	if wit != "" {
		opts = append(opts, wasmvm.WithWIT(wit))
	}
	if c.Wasm.Super != "" {
		opts = append(opts, wasmvm.WithSuper(c.Wasm.Super))
	}
	if c.Wasm.MemoryLimitPages > 0 {
		opts = append(opts, wasmvm.WithMemoryLimitPages(c.Wasm.MemoryLimitPages))
	}
	return opts
}

// ModulePath returns the wasm module path resolved against Dir.
func (c *Config) ModulePath() string {
	return c.resolve(c.Wasm.Module)
}

// WITPath returns the WIT file path resolved against Dir.
func (c *Config) WITPath() string {
	return c.resolve(c.Wasm.WIT)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// NewLogger builds a zap logger for the [log] table.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Config("log.level", err)
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	l, err := zc.Build()
	if err != nil {
		return nil, errors.Config("build logger", err)
	}
	return l, nil
}
