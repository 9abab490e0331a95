package bridge

import (
	"fmt"
	"testing"

	circuitbridge "github.com/wippyai/circuit-bridge"
	"github.com/wippyai/circuit-bridge/errors"
	"github.com/wippyai/circuit-bridge/field"
)

// scriptedCore is a deterministic StepCore double. Each step issues a
// fixed number of callback occasions, folds the host's outputs into the
// result, and optionally faults afterwards.
type scriptedCore struct {
	callbacks int
	fault     error
}

func (c *scriptedCore) runStep(tag uint32, cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	var acc uint32
	for i := 0; i < c.callbacks; i++ {
		out := make([]field.Fp, 2)
		cb(circuitbridge.CallbackEvent{
			Name:  "ramRead",
			Extra: fmt.Sprintf("occasion-%d", i),
			In:    []field.Fp{field.FromRaw(uint32(cycle)), field.FromRaw(uint32(i))},
			Out:   out,
		})
		for _, e := range out {
			acc += e.Raw()
		}
	}
	if c.fault != nil {
		panic(c.fault)
	}
	return field.FromRaw(tag*1_000_000 + uint32(steps)*1000 + uint32(cycle) + acc)
}

func (c *scriptedCore) StepComputeAccum(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.runStep(1, cb, steps, cycle, args)
}

func (c *scriptedCore) StepVerifyAccum(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.runStep(2, cb, steps, cycle, args)
}

func (c *scriptedCore) StepExec(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.runStep(3, cb, steps, cycle, args)
}

func (c *scriptedCore) StepVerifyBytes(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.runStep(4, cb, steps, cycle, args)
}

func (c *scriptedCore) StepVerifyMem(cb circuitbridge.Callback, steps, cycle uint64, args [][]field.Fp) field.Fp {
	return c.runStep(5, cb, steps, cycle, args)
}

// PolyFp shuffles bits deterministically, no arithmetic: reproducible
// from its inputs for the golden test.
func (c *scriptedCore) PolyFp(cycle, steps uint64, polyMix field.FpExt, args [][]field.Fp) field.FpExt {
	mix := polyMix.Raw()
	return field.ExtFromRaw([4]uint32{uint32(cycle), uint32(steps), mix[0], mix[3]})
}

// hostState is the opaque context threaded through the trampoline.
type hostState struct {
	invocations int
	refuseAt    int // refuse the Nth invocation, 0 = never
	lastName    string
	lastExtra   string
}

func recordingCallback(ctx any, name, extra string, in, out []field.Fp) bool {
	h := ctx.(*hostState)
	h.invocations++
	h.lastName = name
	h.lastExtra = extra
	if h.refuseAt > 0 && h.invocations == h.refuseAt {
		return false
	}
	out[0] = field.FromRaw(in[0].Raw() + 1)
	out[1] = field.FromRaw(7)
	return true
}

// expectedStep mirrors scriptedCore.runStep with recordingCallback
// outputs: each occasion contributes (cycle+1)+7.
func expectedStep(tag uint32, steps, cycle uint64, callbacks int) uint32 {
	return tag*1_000_000 + uint32(steps)*1000 + uint32(cycle) + uint32(callbacks)*(uint32(cycle)+8)
}

func TestStepExec_Success(t *testing.T) {
	// Scenario: cycle 0 of 16, callback always succeeds.
	br := New(&scriptedCore{callbacks: 3})
	host := &hostState{}
	var slot ErrorSlot

	got := br.StepExec(&slot, host, recordingCallback, 16, 0, nil)

	if want := expectedStep(3, 16, 0, 3); got != want {
		t.Errorf("StepExec = %d, want %d", got, want)
	}
	if slot.Failed() || slot.Code != 0 {
		t.Errorf("slot touched on success: %+v", slot)
	}
	if host.invocations != 3 {
		t.Errorf("callback invoked %d times, want 3", host.invocations)
	}
	if host.lastName != "ramRead" || host.lastExtra != "occasion-2" {
		t.Errorf("callback saw %q/%q", host.lastName, host.lastExtra)
	}
}

func TestStepExec_RefusalOnThirdInvocation(t *testing.T) {
	baseline := LiveHandles()
	br := New(&scriptedCore{callbacks: 5})
	host := &hostState{refuseAt: 3}
	var slot ErrorSlot

	got := br.StepExec(&slot, host, recordingCallback, 16, 0, nil)

	if got != 0 {
		t.Errorf("StepExec = %d, want default 0", got)
	}
	if !slot.Failed() {
		t.Fatal("slot not populated on refusal")
	}
	if msg := slot.Msg.Value(); msg != errors.RefusalMessage {
		t.Errorf("diagnostic = %q, want %q", msg, errors.RefusalMessage)
	}
	if slot.Code != errors.KindCallbackRefused.Code() {
		t.Errorf("code = %d", slot.Code)
	}
	if host.invocations != 3 {
		t.Errorf("core continued after refusal: %d invocations", host.invocations)
	}

	slot.Release()
	if LiveHandles() != baseline {
		t.Errorf("diagnostic handle leaked: %d live, want %d", LiveHandles(), baseline)
	}
}

func TestStepEntryPoints_DistinctCoreOps(t *testing.T) {
	br := New(&scriptedCore{callbacks: 1})

	tests := []struct {
		name string
		tag  uint32
		call func(slot *ErrorSlot, host *hostState) uint32
	}{
		{"compute_accum", 1, func(s *ErrorSlot, h *hostState) uint32 {
			return br.StepComputeAccum(s, h, recordingCallback, 8, 2, nil)
		}},
		{"verify_accum", 2, func(s *ErrorSlot, h *hostState) uint32 {
			return br.StepVerifyAccum(s, h, recordingCallback, 8, 2, nil)
		}},
		{"exec", 3, func(s *ErrorSlot, h *hostState) uint32 {
			return br.StepExec(s, h, recordingCallback, 8, 2, nil)
		}},
		{"verify_bytes", 4, func(s *ErrorSlot, h *hostState) uint32 {
			return br.StepVerifyBytes(s, h, recordingCallback, 8, 2, nil)
		}},
		{"verify_mem", 5, func(s *ErrorSlot, h *hostState) uint32 {
			return br.StepVerifyMem(s, h, recordingCallback, 8, 2, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var slot ErrorSlot
			host := &hostState{}
			got := tt.call(&slot, host)
			if want := expectedStep(tt.tag, 8, 2, 1); got != want {
				t.Errorf("= %d, want %d", got, want)
			}
			if slot.Failed() {
				t.Error("slot touched on success")
			}
		})
	}
}

func TestStepExec_Idempotent(t *testing.T) {
	br := New(&scriptedCore{callbacks: 2})

	run := func() uint32 {
		var slot ErrorSlot
		host := &hostState{}
		got := br.StepExec(&slot, host, recordingCallback, 16, 5, nil)
		if slot.Failed() {
			t.Fatal("slot touched on success")
		}
		return got
	}

	first, second := run(), run()
	if first != second {
		t.Errorf("identical calls diverged: %d vs %d", first, second)
	}
}

func TestStepExec_CoreFault(t *testing.T) {
	coreErr := errors.New(errors.PhaseCore, errors.KindCoreFault).
		Op("step_exec").
		Detail("ram mismatch at cycle 9").
		Build()
	br := New(&scriptedCore{callbacks: 1, fault: coreErr})
	var slot ErrorSlot

	got := br.StepExec(&slot, &hostState{}, recordingCallback, 16, 9, nil)

	if got != 0 {
		t.Errorf("StepExec = %d, want default 0", got)
	}
	if msg := slot.Msg.Value(); msg != "ram mismatch at cycle 9" {
		t.Errorf("diagnostic = %q", msg)
	}
	slot.Release()
}

func TestStepExec_HostPanicCaughtAtBoundary(t *testing.T) {
	// A fault raised inside the host callback must be caught by the same
	// wrapper frame that opened the call chain.
	br := New(&scriptedCore{callbacks: 1})
	var slot ErrorSlot

	panicking := func(ctx any, name, extra string, in, out []field.Fp) bool {
		panic("host exploded")
	}

	got := br.StepExec(&slot, nil, panicking, 16, 0, nil)
	if got != 0 {
		t.Errorf("StepExec = %d, want 0", got)
	}
	if msg := slot.Msg.Value(); msg != "host exploded" {
		t.Errorf("diagnostic = %q", msg)
	}
	slot.Release()
}

func TestStepExec_NilCallbackRefused(t *testing.T) {
	br := New(&scriptedCore{callbacks: 1})
	var slot ErrorSlot

	got := br.StepExec(&slot, nil, nil, 16, 0, nil)
	if got != 0 {
		t.Errorf("StepExec = %d, want 0", got)
	}
	if msg := slot.Msg.Value(); msg != errors.RefusalMessage {
		t.Errorf("diagnostic = %q, want refusal", msg)
	}
	slot.Release()
}

func TestPolyFp_Golden(t *testing.T) {
	// Scenario: cycle 5 of 16 with a fixed mixing value; the result must
	// be reproducible by direct computation in the core. No error channel.
	br := New(&scriptedCore{})
	mix := field.ExtFromRaw([4]uint32{0xa0a0a0a0, 1, 2, 0x0b0b0b0b})

	got := br.PolyFp(5, 16, mix, nil)

	want := field.ExtFromRaw([4]uint32{5, 16, 0xa0a0a0a0, 0x0b0b0b0b})
	if got != want {
		t.Errorf("PolyFp = %#v, want %#v", got.Raw(), want.Raw())
	}

	if again := br.PolyFp(5, 16, mix, nil); again != got {
		t.Error("PolyFp not reproducible")
	}
}
