package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the fault occurred
type Phase string

const (
	PhaseStep     Phase = "step"     // step entry points
	PhasePoly     Phase = "poly"     // polynomial evaluation
	PhaseCallback Phase = "callback" // host callback trampoline
	PhaseHandle   Phase = "handle"   // string handle lifecycle
	PhaseLoad     Phase = "load"     // circuit module loading
	PhaseCore     Phase = "core"     // inside the circuit core
)

// Kind categorizes the fault
type Kind string

const (
	KindCallbackRefused Kind = "callback_refused"
	KindCoreFault       Kind = "core_fault"
	KindTrap            Kind = "trap"
	KindAllocation      Kind = "allocation"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindNotInitialized  Kind = "not_initialized"
)

// Stable numeric codes reported through the boundary error slot.
// Code 0 is reserved for success and never produced here.
var kindCodes = map[Kind]uint32{
	KindCallbackRefused: 1,
	KindCoreFault:       2,
	KindTrap:            3,
	KindAllocation:      4,
	KindNotFound:        5,
	KindInvalidInput:    6,
	KindNotInitialized:  7,
}

// CodeUnknown is reported for faults that carry no structured kind.
const CodeUnknown uint32 = 100

// Code returns the stable numeric code for a kind.
func (k Kind) Code() uint32 {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return CodeUnknown
}

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" at ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the diagnostic text surfaced through the boundary error
// slot. A refusal's message is exactly its fixed detail text; structured
// faults without detail fall back to the full error string.
func (e *Error) Message() string {
	if e.Detail != "" {
		if e.Cause != nil {
			return e.Detail + ": " + e.Cause.Error()
		}
		return e.Detail
	}
	return e.Error()
}

// Code returns the stable numeric code for the error's kind.
func (e *Error) Code() uint32 {
	return e.Kind.Code()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common fault patterns

// RefusalMessage is the fixed diagnostic for a host callback that
// declines a requested callback. Host-specific refusal reasons are
// deliberately discarded at this layer.
const RefusalMessage = "Host callback failure"

// CallbackRefused creates the fixed refusal fault.
func CallbackRefused() *Error {
	return &Error{
		Phase:  PhaseCallback,
		Kind:   KindCallbackRefused,
		Detail: RefusalMessage,
	}
}

// CoreFault wraps a fault raised inside the circuit core.
func CoreFault(op string, cause error) *Error {
	return &Error{
		Phase: PhaseCore,
		Kind:  KindCoreFault,
		Op:    op,
		Cause: cause,
	}
}

// Trap creates a fault for a guest trap during a core call.
func Trap(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseCore,
		Kind:   KindTrap,
		Op:     op,
		Detail: "guest trap",
		Cause:  cause,
	}
}

// AllocationFailed creates a guest allocation failure fault.
func AllocationFailed(op string, size uint32) *Error {
	return &Error{
		Phase:  PhaseCore,
		Kind:   KindAllocation,
		Op:     op,
		Detail: fmt.Sprintf("failed to allocate %d bytes in guest memory", size),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error for a missing collaborator
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Load creates a circuit module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
