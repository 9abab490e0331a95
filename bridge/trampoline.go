package bridge

import (
	circuitbridge "github.com/wippyai/circuit-bridge"
	"github.com/wippyai/circuit-bridge/errors"
	"github.com/wippyai/circuit-bridge/field"
)

// HostCallback is the host side of a callback occasion. ctx is the opaque
// context the host supplied to the entry point. Returning false declines
// the callback; the refusal reason, if any, stays on the host side.
type HostCallback func(ctx any, name, extra string, in, out []field.Fp) bool

// CallbackBinding pairs a host context with a host callback for the
// duration of one entry-point call. Bindings are built fresh per call and
// never stored, copied into long-lived state, or shared past the call's
// dynamic extent.
type CallbackBinding struct {
	ctx any
	fn  HostCallback
}

// BindCallback builds a binding for one entry-point call.
func BindCallback(ctx any, fn HostCallback) CallbackBinding {
	return CallbackBinding{ctx: ctx, fn: fn}
}

// trampoline adapts the binding to the flat callback shape the core
// expects. Refusal collapses into a panic with the fixed refusal
// diagnostic, to be caught by the enclosing Wrap.
func (b CallbackBinding) trampoline(ev circuitbridge.CallbackEvent) {
	if b.fn == nil || !b.fn(b.ctx, ev.Name, ev.Extra, ev.In, ev.Out) {
		panic(errors.CallbackRefused())
	}
}
