// Command jnicall loads a core wasm module as a managed class and calls its
// exports through the bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/jni-bridge/bridge"
	"github.com/wippyai/jni-bridge/config"
	"github.com/wippyai/jni-bridge/simvm"
	"github.com/wippyai/jni-bridge/wasmvm"
)

const defaultClass = "wasm/Module"

type options struct {
	configFile  string
	wasmFile    string
	witFile     string
	class       string
	method      string
	args        string
	list        bool
	interactive bool
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "Path to bridge.toml")
	flag.StringVar(&opts.wasmFile, "wasm", "", "Path to core wasm module")
	flag.StringVar(&opts.witFile, "wit", "", "Path to WIT file declaring export signatures")
	flag.StringVar(&opts.class, "class", "", "Class name the exports are bound to")
	flag.StringVar(&opts.method, "method", "", "Method to call")
	flag.StringVar(&opts.args, "args", "", "Comma separated arguments")
	flag.BoolVar(&opts.list, "list", false, "List bound methods and exit")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is a module bound into a fresh runtime.
type session struct {
	vm     *simvm.VM
	bridge *bridge.Bridge
	module *wasmvm.Module
	class  string
	file   string
}

func (s *session) Close(ctx context.Context) {
	_ = s.module.Close(ctx)
	_ = s.vm.Close()
}

// loadConfig reads the config file when given and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, err
		}
	}
	if opts.wasmFile != "" {
		cfg.Wasm.Module = opts.wasmFile
	}
	if opts.witFile != "" {
		cfg.Wasm.WIT = opts.witFile
	}
	if opts.class != "" {
		cfg.Wasm.Class = opts.class
	}
	if cfg.Wasm.Class == "" {
		cfg.Wasm.Class = defaultClass
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	return cfg, nil
}

// open loads the configured module into a new simulated runtime and binds a
// bridge to it. The bridge is not installed as the process-wide handle.
func open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session, error) {
	path := cfg.ModulePath()
	if path == "" {
		return nil, fmt.Errorf("no wasm module: use -wasm or set wasm.module")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	var wit string
	if p := cfg.WITPath(); p != "" {
		text, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read WIT: %w", err)
		}
		wit = string(text)
	}

	bridgeOpts, err := cfg.BridgeOptions()
	if err != nil {
		return nil, err
	}

	vm := simvm.New()
	mod, err := wasmvm.Load(ctx, vm, cfg.Wasm.Class, data, cfg.WasmOptions(wit)...)
	if err != nil {
		_ = vm.Close()
		return nil, err
	}
	return &session{
		vm:     vm,
		bridge: bridge.New(vm, append(bridgeOpts, bridge.WithLogger(logger))...),
		module: mod,
		class:  cfg.Wasm.Class,
		file:   path,
	}, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	simvm.SetLogger(logger)
	wasmvm.SetLogger(logger)

	if opts.interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	s, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if opts.interactive {
		return runInteractive(s)
	}

	if opts.list || opts.method == "" {
		fmt.Fprintf(out, "Class: %s\n", s.class)
		fmt.Fprintf(out, "Methods:\n")
		for _, m := range s.module.Methods() {
			fmt.Fprintf(out, "  %s%s  (export %s)\n", m.Name, m.Descriptor, m.Export)
		}
		if !opts.list {
			fmt.Fprintf(out, "\nUse -method to call one.\n")
		}
		return nil
	}

	meth, err := findMethod(s.module, opts.method)
	if err != nil {
		return err
	}
	raw := splitArgs(opts.args)
	result, err := callStatic(s.bridge, s.class, meth, raw)
	if err != nil {
		return fmt.Errorf("call %s(%s): %w", meth.Name, strings.Join(raw, ", "), err)
	}
	fmt.Fprintf(out, "%s\n", result)
	return nil
}
