package bridge

import (
	circuitbridge "github.com/wippyai/circuit-bridge"
	"github.com/wippyai/circuit-bridge/field"
)

// Bridge exposes a StepCore through the boundary calling convention.
// It holds no per-call state; see the package doc for the concurrency
// contract.
type Bridge struct {
	core circuitbridge.StepCore
}

// New wraps a circuit core.
func New(core circuitbridge.StepCore) *Bridge {
	return &Bridge{core: core}
}

type stepFn func(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp

// step is the shared shim behind the five step entry points: bind the
// host callback, run the core under Wrap, surface the raw wire value.
func (b *Bridge) step(fn stepFn, slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	binding := BindCallback(hostCtx, cb)
	return Wrap(slot, 0, func() uint32 {
		return fn(binding.trampoline, steps, cycle, args).Raw()
	})
}

// StepComputeAccum evaluates the accumulator-computation step at cycle.
// On failure it returns 0 and populates slot.
func (b *Bridge) StepComputeAccum(slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	return b.step(b.core.StepComputeAccum, slot, hostCtx, cb, steps, cycle, args)
}

// StepVerifyAccum evaluates the accumulator-verification step at cycle.
// On failure it returns 0 and populates slot.
func (b *Bridge) StepVerifyAccum(slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	return b.step(b.core.StepVerifyAccum, slot, hostCtx, cb, steps, cycle, args)
}

// StepExec evaluates the execution step at cycle.
// On failure it returns 0 and populates slot.
func (b *Bridge) StepExec(slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	return b.step(b.core.StepExec, slot, hostCtx, cb, steps, cycle, args)
}

// StepVerifyBytes evaluates the byte-verification step at cycle.
// On failure it returns 0 and populates slot.
func (b *Bridge) StepVerifyBytes(slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	return b.step(b.core.StepVerifyBytes, slot, hostCtx, cb, steps, cycle, args)
}

// StepVerifyMem evaluates the memory-verification step at cycle.
// On failure it returns 0 and populates slot.
func (b *Bridge) StepVerifyMem(slot *ErrorSlot, hostCtx any, cb HostCallback, steps, cycle uint64, args [][]field.Fp) uint32 {
	return b.step(b.core.StepVerifyMem, slot, hostCtx, cb, steps, cycle, args)
}

// PolyFp mixes the constraint polynomials at cycle. The operation has no
// error slot and no callback; the core's PolyFp is total by contract.
func (b *Bridge) PolyFp(cycle, steps uint64, polyMix field.FpExt, args [][]field.Fp) field.FpExt {
	return b.core.PolyFp(cycle, steps, polyMix, args)
}
