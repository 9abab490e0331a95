package bridge

import (
	"testing"
)

func TestStringHandle_RoundTrip(t *testing.T) {
	baseline := LiveHandles()

	h := newStringHandle("ram mismatch at cycle 12")
	if got := h.Value(); got != "ram mismatch at cycle 12" {
		t.Errorf("Value() = %q", got)
	}
	if LiveHandles() != baseline+1 {
		t.Errorf("live handles = %d, want %d", LiveHandles(), baseline+1)
	}

	h.Free()
	if LiveHandles() != baseline {
		t.Errorf("live handles after free = %d, want %d", LiveHandles(), baseline)
	}
	if got := h.Value(); got != "" {
		t.Errorf("Value() after free = %q, want empty", got)
	}
}

func TestStringHandle_FreeNil(t *testing.T) {
	var h *StringHandle
	h.Free() // no-op, no fault
	if h.Value() != "" {
		t.Error("nil handle should read empty")
	}
}

func TestStringHandle_DoubleFree(t *testing.T) {
	baseline := LiveHandles()

	h := newStringHandle("x")
	h.Free()
	h.Free()

	if LiveHandles() != baseline {
		t.Errorf("double free disturbed live count: %d, want %d", LiveHandles(), baseline)
	}
}

func TestErrorSlot_Release(t *testing.T) {
	baseline := LiveHandles()

	slot := &ErrorSlot{Msg: newStringHandle("fault"), Code: 2}
	if !slot.Failed() {
		t.Fatal("populated slot should report failure")
	}

	slot.Release()
	if slot.Failed() {
		t.Error("released slot should not report failure")
	}
	if slot.Code != 0 {
		t.Errorf("released slot code = %d", slot.Code)
	}
	if LiveHandles() != baseline {
		t.Errorf("release leaked a handle: %d, want %d", LiveHandles(), baseline)
	}

	slot.Release() // reuse-safe

	var nilSlot *ErrorSlot
	if nilSlot.Failed() {
		t.Error("nil slot should not report failure")
	}
	nilSlot.Release()
}
