package wasmcore

import (
	"context"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"

	circuitbridge "github.com/wippyai/circuit-bridge"
	"github.com/wippyai/circuit-bridge/errors"
	"github.com/wippyai/circuit-bridge/field"
)

// hostCallback implements the "callback" import of the circuit-host
// module. It lifts the guest's flat buffers into a CallbackEvent, invokes
// the host callback of the in-flight step, and lowers the outputs back.
//
// The host callback faults by panic; the panic must not unwind through
// wazero, so it is recorded in the call state and a zero status is
// returned instead. The guest traps on zero status and step re-raises the
// recorded fault once the trap surfaces.
func (c *Core) hostCallback(_ context.Context, mod api.Module, stack []uint64) {
	namePtr, nameLen := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	extraPtr, extraLen := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])
	inPtr, inLen := api.DecodeU32(stack[4]), api.DecodeU32(stack[5])
	outPtr, outLen := api.DecodeU32(stack[6]), api.DecodeU32(stack[7])

	if c.invokeCallback(mod.Memory(), namePtr, nameLen, extraPtr, extraLen, inPtr, inLen, outPtr, outLen) {
		stack[0] = 1
	} else {
		stack[0] = 0
	}
}

func (c *Core) invokeCallback(mem api.Memory, namePtr, nameLen, extraPtr, extraLen, inPtr, inLen, outPtr, outLen uint32) (ok bool) {
	cs := c.call
	if cs == nil || cs.cb == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			cs.fault = faultFromPanic(r)
			ok = false
		}
	}()

	name, okRead := readString(mem, namePtr, nameLen)
	if !okRead {
		cs.fault = callbackBounds("name", namePtr, nameLen)
		return false
	}
	extra, okRead := readString(mem, extraPtr, extraLen)
	if !okRead {
		cs.fault = callbackBounds("extra", extraPtr, extraLen)
		return false
	}

	// Element counts are guest-controlled; byte sizes are computed in
	// uint64 and both ranges are validated against memory before any
	// allocation sized by them.
	inBytes, okLen := elemBytes(inLen)
	if !okLen {
		cs.fault = callbackBounds("in", inPtr, inLen)
		return false
	}
	outBytes, okLen := elemBytes(outLen)
	if !okLen {
		cs.fault = callbackBounds("out", outPtr, outLen)
		return false
	}
	if outBytes > 0 {
		if _, ok := mem.Read(outPtr, outBytes); !ok {
			cs.fault = callbackBounds("out", outPtr, outLen)
			return false
		}
	}

	var in []field.Fp
	if inBytes > 0 {
		data, okRead := mem.Read(inPtr, inBytes)
		if !okRead {
			cs.fault = callbackBounds("in", inPtr, inLen)
			return false
		}
		in = make([]field.Fp, inLen)
		field.DecodeSlice(in, data)
	}

	out := make([]field.Fp, outLen)
	cs.cb(circuitbridge.CallbackEvent{
		Name:  name,
		Extra: extra,
		In:    in,
		Out:   out,
	})

	if outBytes > 0 {
		data := make([]byte, outBytes)
		field.EncodeSlice(data, out)
		if !mem.Write(outPtr, data) {
			cs.fault = callbackBounds("out", outPtr, outLen)
			return false
		}
	}
	return true
}

// elemBytes converts a guest-supplied element count to a byte count,
// rejecting counts whose byte size does not fit a 32-bit address space.
func elemBytes(n uint32) (uint32, bool) {
	size := uint64(n) * field.FpBytes
	if size > math.MaxUint32 {
		return 0, false
	}
	return uint32(size), true
}

func faultFromPanic(r any) *errors.Error {
	if e, ok := r.(*errors.Error); ok {
		return e
	}
	return errors.CoreFault("callback", fmt.Errorf("%v", r))
}

func callbackBounds(buf string, ptr, n uint32) *errors.Error {
	return errors.New(errors.PhaseCallback, errors.KindInvalidInput).
		Op("callback").
		Detail("%s buffer out of bounds at %d len %d", buf, ptr, n).
		Build()
}

func readString(mem api.Memory, ptr, n uint32) (string, bool) {
	if n == 0 {
		return "", true
	}
	data, ok := mem.Read(ptr, n)
	if !ok {
		return "", false
	}
	return string(data), true
}
