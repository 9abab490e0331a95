// Package wasmcore runs a circuit compiled to core WebAssembly as a
// circuitbridge.StepCore.
//
// # Guest ABI
//
// The circuit module must export:
//
//	memory                                  linear memory
//	alloc(size, align i32) -> i32           bump allocator, 0 on failure
//	step_compute_accum(steps, cycle i64, args i32) -> i32
//	step_verify_accum(steps, cycle i64, args i32) -> i32
//	step_exec(steps, cycle i64, args i32) -> i32
//	step_verify_bytes(steps, cycle i64, args i32) -> i32
//	step_verify_mem(steps, cycle i64, args i32) -> i32
//	poly_fp(cycle, steps i64, mix, args, out i32)
//
// args points to a table of u32 guest pointers, one per column buffer,
// each buffer holding field elements in little-endian wire form. poly_fp
// reads a degree-4 extension element at mix and writes its result at out.
//
// The host instantiates a "circuit-host" module with a single import:
//
//	callback(name_ptr, name_len, extra_ptr, extra_len,
//	         in_ptr, in_len, out_ptr, out_len i32) -> i32
//
// A zero result tells the guest the callback failed; the guest is
// expected to trap in response. The host records the underlying fault and
// re-raises it when the trap surfaces, so a refusal keeps its fixed
// diagnostic across the WASM boundary.
//
// # Concurrency
//
// A WASM instance has a single stack, so Core serializes step calls with
// a mutex. Callback invocations happen synchronously on the calling
// goroutine, in guest order.
package wasmcore
