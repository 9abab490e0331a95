// Package circuitbridge provides a host-side bridge around a circuit
// evaluation core for a RISC-V execution trace.
//
// The core evaluates one row of the trace at a time through a fixed set of
// step operations, and may call back into the host zero or more times per
// row. The bridge sits between the two and keeps their failure models
// apart: the core fails by panic, callers fail by inspecting an error slot.
// No panic ever crosses a bridge entry point.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	circuitbridge/      Root package with the StepCore and Callback contracts
//	├── bridge/         Boundary wrapper, error slot, string handle, trampoline
//	├── field/          Opaque base and extension field wire values
//	├── errors/         Structured error types with stable boundary codes
//	├── wasmcore/       StepCore backed by a circuit compiled to core WASM
//	└── cmd/bridge-run/ CLI harness for driving a circuit across cycles
//
// # Quick Start
//
// Wrap a core and drive one execution row:
//
//	br := bridge.New(core)
//
//	var slot bridge.ErrorSlot
//	raw := br.StepExec(&slot, hostState, onCallback, steps, cycle, args)
//	if slot.Failed() {
//	    fmt.Println(slot.Msg.Value())
//	    slot.Release()
//	}
//
// # Failure Model
//
// StepCore implementations signal failure by panicking, normally with an
// *errors.Error. The bridge recovers at the entry point, materializes the
// diagnostic into a caller-released string handle, and returns the entry
// point's default value. A host callback that returns false is folded into
// the same channel with the fixed diagnostic "Host callback failure".
//
// PolyFp is the one exception: it has no error slot and is expected to be
// total. See circuitbridge.StepCore for the exact contract.
//
// # Thread Safety
//
// The bridge itself holds no mutable state; concurrent entry-point calls
// are safe as long as each call uses its own ErrorSlot and argument
// buffers. Callback invocations within one call happen strictly in core
// order on the caller's stack. wasmcore serializes calls internally, since
// a WASM instance is single-stack.
package circuitbridge
