// Package bridge implements the boundary between callers and the circuit
// core.
//
// Every step entry point funnels through Wrap, the single frame where core
// panics are recovered and converted into an ErrorSlot diagnostic plus a
// type-appropriate default return value. The same frame catches panics
// raised transitively inside host callbacks, so the "no fault crosses the
// boundary" invariant holds uniformly.
//
// A host callback arrives as an opaque context plus a function value. The
// pair is bound fresh for each entry-point call and trampolined into the
// flat circuitbridge.Callback shape the core expects; a callback that
// returns false is converted into a panic carrying the fixed diagnostic
// "Host callback failure", to be caught by the enclosing Wrap.
//
// Diagnostics that must outlive the call travel in a StringHandle: created
// by the boundary on failure, owned by the caller from return until its
// single Release/Free.
package bridge
