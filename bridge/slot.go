package bridge

// ErrorSlot is the caller-allocated out-parameter a boundary entry point
// fills on failure. On success it is left untouched. It is valid for the
// duration of one entry-point call and never retained by the bridge.
type ErrorSlot struct {
	// Msg holds the diagnostic. The caller owns it after the entry point
	// returns and must release it exactly once.
	Msg *StringHandle

	// Code is the stable numeric code of the fault's kind, 0 on success.
	Code uint32
}

// Failed reports whether the slot was populated by a boundary capture.
func (s *ErrorSlot) Failed() bool {
	return s != nil && s.Msg != nil
}

// Release frees the slot's diagnostic handle, if any, and resets the slot
// for reuse in a later call.
func (s *ErrorSlot) Release() {
	if s == nil {
		return
	}
	s.Msg.Free()
	s.Msg = nil
	s.Code = 0
}
