package wasmcore

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	circuitbridge "github.com/wippyai/circuit-bridge"
	"github.com/wippyai/circuit-bridge/errors"
	"github.com/wippyai/circuit-bridge/field"
	"go.uber.org/zap"
)

// HostModule is the import namespace the guest binds its callback from.
const HostModule = "circuit-host"

const bufAlign = 4

var stepExports = []string{
	"step_compute_accum",
	"step_verify_accum",
	"step_exec",
	"step_verify_bytes",
	"step_verify_mem",
}

// Config holds configuration for core creation
type Config struct {
	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Core runs a circuit compiled to core WASM. It implements
// circuitbridge.StepCore; step faults surface by panic per that contract.
type Core struct {
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory
	alloc   api.Function
	steps   map[string]api.Function
	poly    api.Function

	// One stack per instance: calls are serialized, call holds the state
	// of the in-flight step.
	mu   sync.Mutex
	call *callState
}

type callState struct {
	cb    circuitbridge.Callback
	fault *errors.Error
}

var _ circuitbridge.StepCore = (*Core)(nil)

// New compiles and instantiates a circuit module. ctx is retained for the
// lifetime of the core and used for all guest calls.
func New(ctx context.Context, wasmBytes []byte, cfg *Config) (*Core, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	c := &Core{
		ctx:     ctx,
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		steps:   make(map[string]api.Function, len(stepExports)),
	}

	i32 := api.ValueTypeI32
	_, err := c.runtime.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(c.hostCallback),
			[]api.ValueType{i32, i32, i32, i32, i32, i32, i32, i32},
			[]api.ValueType{i32}).
		Export("callback").
		Instantiate(ctx)
	if err != nil {
		c.runtime.Close(ctx)
		return nil, errors.Load("instantiate host module", err)
	}

	compiled, err := c.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		c.runtime.Close(ctx)
		return nil, errors.Load("compile circuit module", err)
	}

	c.module, err = c.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("circuit"))
	if err != nil {
		c.runtime.Close(ctx)
		return nil, errors.Load("instantiate circuit module", err)
	}

	if err := c.resolveExports(); err != nil {
		c.runtime.Close(ctx)
		return nil, err
	}

	Logger().Debug("circuit module loaded",
		zap.Uint32("memory_bytes", c.memory.Size()))
	return c, nil
}

func (c *Core) resolveExports() error {
	c.memory = c.module.Memory()
	if c.memory == nil {
		return errors.NotFound(errors.PhaseLoad, "export", "memory")
	}
	if c.alloc = c.module.ExportedFunction("alloc"); c.alloc == nil {
		return errors.NotFound(errors.PhaseLoad, "export", "alloc")
	}
	for _, name := range stepExports {
		fn := c.module.ExportedFunction(name)
		if fn == nil {
			return errors.NotFound(errors.PhaseLoad, "export", name)
		}
		c.steps[name] = fn
	}
	if c.poly = c.module.ExportedFunction("poly_fp"); c.poly == nil {
		return errors.NotFound(errors.PhaseLoad, "export", "poly_fp")
	}
	return nil
}

// Close releases the wazero runtime and all guest state.
func (c *Core) Close() error {
	return c.runtime.Close(c.ctx)
}

func (c *Core) StepComputeAccum(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.step("step_compute_accum", cb, steps, cycle, args)
}

func (c *Core) StepVerifyAccum(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.step("step_verify_accum", cb, steps, cycle, args)
}

func (c *Core) StepExec(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.step("step_exec", cb, steps, cycle, args)
}

func (c *Core) StepVerifyBytes(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.step("step_verify_bytes", cb, steps, cycle, args)
}

func (c *Core) StepVerifyMem(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.step("step_verify_mem", cb, steps, cycle, args)
}

func (c *Core) step(op string, cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs := &callState{cb: cb}
	c.call = cs
	defer func() { c.call = nil }()

	argsPtr := c.lowerArgs(op, args)
	res, err := c.steps[op].Call(c.ctx, steps, cycle, uint64(argsPtr))
	if err != nil {
		// A trap caused by a recorded host-side fault keeps its original
		// diagnostic; anything else is a genuine guest trap.
		if cs.fault != nil {
			panic(cs.fault)
		}
		panic(errors.Trap(op, err))
	}
	// A guest that ignores the callback's failure status and runs to
	// completion must not turn a recorded fault into a genuine result.
	if cs.fault != nil {
		panic(cs.fault)
	}
	return field.FromRaw(api.DecodeU32(res[0]))
}

// PolyFp evaluates the guest's poly_fp export. The boundary interface
// declares the operation total, so a trap cannot surface as a fault; it
// is logged and the zero extension element is returned.
func (c *Core) PolyFp(cycle, steps uint64, polyMix field.FpExt, args [][]field.Fp) (out field.FpExt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			Logger().Error("poly_fp fault suppressed", zap.Any("fault", r))
			out = field.FpExt{}
		}
	}()

	mixBuf := make([]byte, field.FpExtBytes)
	polyMix.PutBytes(mixBuf)
	mixPtr := c.writeBytes("poly_fp", mixBuf)
	argsPtr := c.lowerArgs("poly_fp", args)
	outPtr := c.allocBytes("poly_fp", field.FpExtBytes)

	_, err := c.poly.Call(c.ctx, cycle, steps, uint64(mixPtr), uint64(argsPtr), uint64(outPtr))
	if err != nil {
		Logger().Error("poly_fp guest trap suppressed", zap.Error(err))
		return field.FpExt{}
	}

	data, ok := c.memory.Read(outPtr, field.FpExtBytes)
	if !ok {
		Logger().Error("poly_fp result out of bounds", zap.Uint32("ptr", outPtr))
		return field.FpExt{}
	}
	return field.ExtFromBytes(data)
}

// lowerArgs copies the column buffers into guest memory and returns a
// pointer to the guest-side table of buffer pointers. Zero-length tables
// and buffers lower to the null pointer.
func (c *Core) lowerArgs(op string, args [][]field.Fp) uint32 {
	if len(args) == 0 {
		return 0
	}
	table := make([]byte, len(args)*4)
	for i, buf := range args {
		var ptr uint32
		if len(buf) > 0 {
			data := make([]byte, len(buf)*field.FpBytes)
			field.EncodeSlice(data, buf)
			ptr = c.writeBytes(op, data)
		}
		binary.LittleEndian.PutUint32(table[i*4:], ptr)
	}
	return c.writeBytes(op, table)
}

func (c *Core) writeBytes(op string, data []byte) uint32 {
	ptr := c.allocBytes(op, uint32(len(data)))
	if !c.memory.Write(ptr, data) {
		panic(errors.New(errors.PhaseCore, errors.KindInvalidInput).
			Op(op).
			Detail("guest buffer write out of bounds at %d+%d", ptr, len(data)).
			Build())
	}
	return ptr
}

func (c *Core) allocBytes(op string, size uint32) uint32 {
	res, err := c.alloc.Call(c.ctx, uint64(size), uint64(bufAlign))
	if err != nil {
		panic(errors.Trap(op, err))
	}
	ptr := api.DecodeU32(res[0])
	if ptr == 0 {
		panic(errors.AllocationFailed(op, size))
	}
	return ptr
}
