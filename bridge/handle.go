package bridge

import (
	"sync/atomic"
)

var liveHandles atomic.Int64

// StringHandle owns a heap-allocated diagnostic string returned through
// the boundary. Ownership transfers to the caller at return; the caller
// releases it exactly once with Free. A handle is not safe for concurrent
// use.
type StringHandle struct {
	text  string
	freed bool
}

func newStringHandle(text string) *StringHandle {
	liveHandles.Add(1)
	return &StringHandle{text: text}
}

// Value returns the handle's text. The view is valid only while the
// handle is live; calling Value on a nil or released handle is a caller
// error and returns "".
func (h *StringHandle) Value() string {
	if h == nil || h.freed {
		return ""
	}
	return h.text
}

// Free releases the handle's storage. Free on a nil handle is a no-op.
// Releasing the same handle twice is a caller error; the second release
// does nothing and does not disturb the live-handle count.
func (h *StringHandle) Free() {
	if h == nil || h.freed {
		return
	}
	h.freed = true
	h.text = ""
	liveHandles.Add(-1)
}

// LiveHandles reports the number of handles created by the boundary and
// not yet released. Tests use it to assert single-release discipline.
func LiveHandles() int64 {
	return liveHandles.Load()
}
