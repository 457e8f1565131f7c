package vm

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/host"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/val"
)

// HostModule is the import module name guests use for the host
// primitive set.
const HostModule = "contract_host"

// Runtime executes wasm contracts against one host environment. Tagged
// values cross the guest boundary as raw u64 words; object handles stay
// host-side and inherit the host's scope rules.
type Runtime struct {
	runtime wazero.Runtime
	host    *host.Host
	logger  *zap.Logger
}

// Config holds runtime configuration.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KB pages. 0 keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// NewRuntime creates a Runtime bound to a host environment.
func NewRuntime(ctx context.Context, h *host.Host, cfg *Config) (*Runtime, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	r := &Runtime{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		host:    h,
		logger:  Logger(),
	}
	if err := r.instantiateHostModule(ctx); err != nil {
		_ = r.runtime.Close(ctx)
		return nil, err
	}
	return r, nil
}

// Host returns the host environment the runtime dispatches into.
func (r *Runtime) Host() *host.Host {
	return r.host
}

// Close releases all compiled modules and instances.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// trap aborts the current guest call. wazero converts the panic into a
// module error returned from the exported function call.
func trap(err error) {
	panic(err)
}

func (r *Runtime) instantiateHostModule(ctx context.Context) error {
	b := r.runtime.NewHostModuleBuilder(HostModule)

	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64

	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			obj, err := r.host.NewObject(val.ObjKind(uint32(stack[0])), uint32(stack[1]))
			if err != nil {
				trap(err)
			}
			stack[0] = uint64(obj)
		}), []api.ValueType{i32, i32}, []api.ValueType{i64}).
		Export("obj_new")

	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			el, err := r.host.ObjElem(val.Val(stack[0]), uint32(stack[1]))
			if err != nil {
				trap(err)
			}
			stack[0] = uint64(el)
		}), []api.ValueType{i64, i32}, []api.ValueType{i64}).
		Export("obj_get")

	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			if err := r.host.SetObjElem(val.Val(stack[0]), uint32(stack[1]), val.Val(stack[2])); err != nil {
				trap(err)
			}
		}), []api.ValueType{i64, i32, i64}, nil).
		Export("obj_set")

	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			n, err := r.host.ObjLen(val.Val(stack[0]))
			if err != nil {
				trap(err)
			}
			stack[0] = uint64(n)
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		Export("obj_len")

	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			c, err := r.host.CompareObjs(val.Val(stack[0]), val.Val(stack[1]))
			if err != nil {
				trap(err)
			}
			stack[0] = api.EncodeI32(int32(c))
		}), []api.ValueType{i64, i64}, []api.ValueType{i32}).
		Export("obj_cmp")

	// invoke(contract u64, fn u64, args_ptr u32, args_count u32) -> u64
	// The guest lays the argument words out as little-endian u64s.
	b = b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			args, err := readArgWords(mod, uint32(stack[2]), uint32(stack[3]))
			if err != nil {
				trap(err)
			}
			ret, err := r.host.Invoke(val.Val(stack[0]), val.Val(stack[1]), args)
			if err != nil {
				trap(err)
			}
			stack[0] = uint64(ret)
		}), []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i64}).
		Export("invoke")

	_, err := b.Instantiate(ctx)
	return err
}

func readArgWords(mod api.Module, ptr, count uint32) ([]val.Val, error) {
	if count == 0 {
		return nil, nil
	}
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.InvalidData(errors.PhaseInvoke, nil, "guest has no memory")
	}
	raw, ok := mem.Read(ptr, count*8)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseInvoke, int(ptr), int(mem.Size()))
	}
	args := make([]val.Val, count)
	for i := range args {
		args[i] = val.Val(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return args, nil
}

// Contract is one instantiated guest module.
type Contract struct {
	runtime *Runtime
	module  api.Module
	address val.Address
	spec    *spec.Spec
}

// LoadContract compiles and instantiates a contract binary, reads its
// embedded interface specification, and registers every spec function
// as a dispatchable handler at the given address.
func (r *Runtime) LoadContract(ctx context.Context, wasm []byte, addr val.Address) (*Contract, error) {
	specData, err := ReadSpecSection(wasm)
	if err != nil {
		return nil, err
	}
	s, err := spec.Decode(specData)
	if err != nil {
		return nil, errors.Load("embedded specification", err)
	}

	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	module, err := r.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(fmt.Sprintf("contract_%x", addr[:4])))
	if err != nil {
		return nil, errors.Load("instantiate module", err)
	}

	c := &Contract{runtime: r, module: module, address: addr, spec: s}

	handlers := make(map[string]host.Func, len(s.Functions()))
	for _, fe := range s.Functions() {
		fe := fe
		export := module.ExportedFunction(fe.Name)
		if export == nil {
			_ = module.Close(ctx)
			return nil, errors.NotFound(errors.PhaseLoad, "guest export", fe.Name)
		}
		handlers[fe.Name] = func(hctx *host.Context, args []val.Val) (val.Val, error) {
			return c.callExport(ctx, export, fe, args)
		}
	}
	if err := r.host.Register(addr, handlers); err != nil {
		_ = module.Close(ctx)
		return nil, err
	}

	r.logger.Debug("contract loaded",
		zap.String("address", fmt.Sprintf("%x", addr[:4])),
		zap.Int("functions", len(handlers)))
	return c, nil
}

// Spec returns the contract's embedded interface specification.
func (c *Contract) Spec() *spec.Spec {
	return c.spec
}

// Address returns the address the contract is registered at.
func (c *Contract) Address() val.Address {
	return c.address
}

// Close releases the guest instance.
func (c *Contract) Close(ctx context.Context) error {
	return c.module.Close(ctx)
}

func (c *Contract) callExport(ctx context.Context, fn api.Function, fe spec.FunctionEntry, args []val.Val) (val.Val, error) {
	if len(args) != len(fe.Params) {
		return val.Void(), errors.New(errors.PhaseInvoke, errors.KindInvalidData).
			Path(fe.Name).
			Detail("want %d arguments, got %d", len(fe.Params), len(args)).
			Build()
	}
	words := make([]uint64, len(args))
	for i, a := range args {
		words[i] = uint64(a)
	}
	results, err := fn.Call(ctx, words...)
	if err != nil {
		return val.Void(), errors.Wrap(errors.PhaseInvoke, errors.KindInvalidData, err, "guest call "+fe.Name)
	}
	if len(results) == 0 {
		return val.Void(), nil
	}
	return val.Val(results[0]), nil
}
