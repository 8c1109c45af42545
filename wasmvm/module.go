package wasmvm

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/simvm"
)

// Config holds loader configuration.
type Config struct {
	// WIT declares the exports' signatures. Without it signatures come from
	// the core function types.
	WIT string
	// Super is the superclass of the defined class, java/lang/Object when
	// empty.
	Super string
	// MemoryLimitPages caps guest memory in 64KiB pages. Zero keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Option configures Load.
type Option func(*Config)

// WithWIT supplies WIT text describing the module's exports.
func WithWIT(text string) Option {
	return func(c *Config) { c.WIT = text }
}

// WithMemoryLimitPages caps guest memory.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *Config) { c.MemoryLimitPages = pages }
}

// WithSuper sets the superclass of the defined class.
func WithSuper(name string) Option {
	return func(c *Config) { c.Super = name }
}

// Method describes one export bound as a static method.
type Method struct {
	Export     string
	Name       string
	Descriptor string
	Signature  jnibridge.Signature
}

// Module is a loaded wasm module and the class its exports are bound to.
type Module struct {
	ctx     context.Context
	runtime wazero.Runtime
	class   *simvm.Class
	methods []Method
	// A wazero module instance is not safe for concurrent calls.
	mu sync.Mutex
}

// Load compiles and instantiates a core wasm module and defines className in
// vm with one static method per exported function. Exports whose types have
// no value kind are skipped.
func Load(ctx context.Context, vm *simvm.VM, className string, wasm []byte, opts ...Option) (*Module, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	var witFuncs map[string]*witFunc
	if cfg.WIT != "" {
		var err error
		if witFuncs, err = parseWIT(cfg.WIT); err != nil {
			return nil, err
		}
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("compile module", err)
	}
	inst, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(className))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("instantiate module", err)
	}

	m := &Module{
		ctx:     context.WithoutCancel(ctx),
		runtime: rt,
	}

	defs := compiled.ExportedFunctions()
	exports := make([]string, 0, len(defs))
	for name := range defs {
		exports = append(exports, name)
	}
	sort.Strings(exports)

	builder := vm.DefineClass(className, cfg.Super)
	for _, export := range exports {
		def := defs[export]
		sig, ok, err := signatureOf(export, def, witFuncs)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		if !ok {
			Logger().Warn("export skipped",
				zap.String("class", className),
				zap.String("export", export))
			continue
		}
		meth := Method{
			Export:     export,
			Name:       methodName(export),
			Descriptor: sig.String(),
			Signature:  sig,
		}
		m.methods = append(m.methods, meth)
		builder = builder.StaticMethod(meth.Name, meth.Descriptor, m.bind(inst.ExportedFunction(export), meth))
	}

	if m.class, err = builder.Build(); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	Logger().Debug("module loaded",
		zap.String("class", className),
		zap.Int("methods", len(m.methods)))
	return m, nil
}

func signatureOf(export string, def api.FunctionDefinition, witFuncs map[string]*witFunc) (jnibridge.Signature, bool, error) {
	if witFuncs != nil {
		if fn, ok := witFuncs[export]; ok {
			sig, err := witSignature(fn, def.ParamTypes(), def.ResultTypes())
			return sig, err == nil, err
		}
	}

	var sig jnibridge.Signature
	for _, vt := range def.ParamTypes() {
		k, ok := coreKind(vt)
		if !ok {
			return sig, false, nil
		}
		sig.Params = append(sig.Params, k)
		sig.ParamTypes = append(sig.ParamTypes, string(k.Letter()))
	}
	switch results := def.ResultTypes(); len(results) {
	case 0:
		sig.Return, sig.ReturnType = jnibridge.KindVoid, "V"
	case 1:
		k, ok := coreKind(results[0])
		if !ok {
			return sig, false, nil
		}
		sig.Return, sig.ReturnType = k, string(k.Letter())
	default:
		return sig, false, nil
	}
	return sig, true, nil
}

// bind returns the method body that calls fn. Traps are thrown as
// RuntimeException.
func (m *Module) bind(fn api.Function, meth Method) simvm.MethodFunc {
	return func(_ *simvm.Env, _ jnibridge.Object, args []jnibridge.Value) (jnibridge.Value, error) {
		stack := make([]uint64, len(args))
		for i, a := range args {
			stack[i] = encode(meth.Signature.Params[i], a)
		}

		m.mu.Lock()
		results, err := fn.Call(m.ctx, stack...)
		m.mu.Unlock()

		if err != nil {
			msg, _, _ := strings.Cut(err.Error(), "\n")
			Logger().Debug("wasm trap",
				zap.String("export", meth.Export),
				zap.String("error", msg))
			return 0, simvm.Throw(simvm.ClassRuntimeException, "%s: %s", meth.Export, msg)
		}
		if meth.Signature.Return == jnibridge.KindVoid || len(results) == 0 {
			return 0, nil
		}
		return decode(meth.Signature.Return, results[0]), nil
	}
}

func encode(k jnibridge.Kind, v jnibridge.Value) uint64 {
	switch k {
	case jnibridge.KindBoolean:
		if v.Boolean() {
			return 1
		}
		return 0
	case jnibridge.KindByte:
		return api.EncodeI32(int32(v.Byte()))
	case jnibridge.KindChar:
		return api.EncodeU32(uint32(v.Char()))
	case jnibridge.KindShort:
		return api.EncodeI32(int32(v.Short()))
	case jnibridge.KindInt:
		return api.EncodeI32(v.Int())
	case jnibridge.KindLong:
		return api.EncodeI64(v.Long())
	case jnibridge.KindFloat:
		return api.EncodeF32(v.Float())
	case jnibridge.KindDouble:
		return api.EncodeF64(v.Double())
	}
	return 0
}

func decode(k jnibridge.Kind, r uint64) jnibridge.Value {
	switch k {
	case jnibridge.KindBoolean:
		return jnibridge.BooleanValue(api.DecodeU32(r) != 0)
	case jnibridge.KindByte:
		return jnibridge.ByteValue(int8(api.DecodeI32(r)))
	case jnibridge.KindChar:
		return jnibridge.CharValue(uint16(api.DecodeU32(r)))
	case jnibridge.KindShort:
		return jnibridge.ShortValue(int16(api.DecodeI32(r)))
	case jnibridge.KindInt:
		return jnibridge.IntValue(api.DecodeI32(r))
	case jnibridge.KindLong:
		return jnibridge.LongValue(int64(r))
	case jnibridge.KindFloat:
		return jnibridge.FloatValue(api.DecodeF32(r))
	case jnibridge.KindDouble:
		return jnibridge.DoubleValue(api.DecodeF64(r))
	}
	return 0
}

// Class returns the class the exports are bound to.
func (m *Module) Class() *simvm.Class {
	return m.class
}

// Methods returns the bound exports sorted by export name.
func (m *Module) Methods() []Method {
	out := make([]Method, len(m.methods))
	copy(out, m.methods)
	return out
}

// Method looks up a bound export by method or export name.
func (m *Module) Method(name string) (Method, bool) {
	for _, meth := range m.methods {
		if meth.Name == name || meth.Export == name {
			return meth, true
		}
	}
	return Method{}, false
}

// Close releases the wazero runtime. Calls made afterwards throw.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}
