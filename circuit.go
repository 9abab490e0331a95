package circuitbridge

import (
	"github.com/wippyai/circuit-bridge/field"
)

// CallbackEvent describes one callback occasion issued by the core.
// All slices are borrowed for the dynamic extent of the callback and must
// not be retained.
type CallbackEvent struct {
	// Name identifies the callback, e.g. "ramRead".
	Name string

	// Extra carries auxiliary text attached by the core.
	Extra string

	// In holds the field elements the core hands to the host. Read-only.
	In []field.Fp

	// Out is filled by the host before the callback returns.
	Out []field.Fp
}

// Callback is the flat callback shape the core invokes during a step.
// Returning normally means Out has been filled. Implementations signal
// failure by panicking; the bridge converts the panic at the boundary.
type Callback func(ev CallbackEvent)

// StepCore is the circuit evaluation core behind the bridge.
//
// The step methods evaluate one row of the trace. cycle must satisfy
// 0 <= cycle < steps. args is an array of column buffers whose lengths are
// implied by circuit shape; they are borrowed for the duration of the call
// and never validated or retained here. Step methods signal failure by
// panicking, normally with an *errors.Error, and may invoke cb zero or
// more times, strictly in order, on the caller's stack.
//
// PolyFp mixes the constraint polynomials at one row. It takes no
// callback, has no failure channel in the boundary interface, and is
// expected to be total.
type StepCore interface {
	StepComputeAccum(cb Callback, steps, cycle uint64, args [][]field.Fp) field.Fp
	StepVerifyAccum(cb Callback, steps, cycle uint64, args [][]field.Fp) field.Fp
	StepExec(cb Callback, steps, cycle uint64, args [][]field.Fp) field.Fp
	StepVerifyBytes(cb Callback, steps, cycle uint64, args [][]field.Fp) field.Fp
	StepVerifyMem(cb Callback, steps, cycle uint64, args [][]field.Fp) field.Fp

	PolyFp(cycle, steps uint64, polyMix field.FpExt, args [][]field.Fp) field.FpExt
}
