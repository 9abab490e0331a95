// Package errors provides structured error types for the circuit bridge.
//
// Errors are categorized by Phase (where the fault occurred) and Kind
// (fault category). Each Kind maps to a stable numeric code so a fault can
// be reported through the boundary's error slot without losing its
// category.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCore, errors.KindCoreFault).
//		Op("step_exec").
//		Detail("accumulator mismatch at cycle %d", cycle).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CallbackRefused()
//	err := errors.Trap("step_exec", cause)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
