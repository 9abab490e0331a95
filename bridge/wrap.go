package bridge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/circuit-bridge/errors"
)

// fallbackDiagnostic is stored when formatting the fault value itself
// faults. The boundary still reports failure in that case, it just loses
// the detail.
const fallbackDiagnostic = "circuit fault"

// Wrap runs fn and confines any panic it raises to this frame. On normal
// completion the result is returned unmodified and slot is left untouched.
// On panic, including one raised inside a host callback invoked
// transitively by the core, the fault is converted into a diagnostic
// handle plus code in slot and def is returned instead.
//
// Wrap is the only frame in the bridge that recovers; every entry point
// funnels through it.
func Wrap[T any](slot *ErrorSlot, def T, fn func() T) (result T) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		msg, code := describeFault(r)
		if slot != nil {
			slot.Msg = newStringHandle(msg)
			slot.Code = code
		}
		Logger().Debug("boundary captured fault",
			zap.String("diagnostic", msg),
			zap.Uint32("code", code))
		result = def
	}()
	return fn()
}

// describeFault maps a recovered value to boundary diagnostic text and a
// stable code. Structured faults keep their own message and code; anything
// else is formatted best-effort.
func describeFault(r any) (string, uint32) {
	switch v := r.(type) {
	case *errors.Error:
		return v.Message(), v.Code()
	case error:
		return v.Error(), errors.CodeUnknown
	case string:
		return v, errors.CodeUnknown
	default:
		return safeFormat(v), errors.CodeUnknown
	}
}

func safeFormat(v any) (msg string) {
	defer func() {
		if recover() != nil {
			msg = fallbackDiagnostic
		}
	}()
	return fmt.Sprintf("%v", v)
}
