package engine

// InputState is a per-frame snapshot of axis and button state. The engine
// only reads it; the windowing subsystem owns the event queue.
type InputState struct {
	MoveX, MoveY float32
	LookX, LookY float32
	Buttons      uint32 // bitmask, one bit per button
}

// Pressed reports whether the given button bit is down.
func (s InputState) Pressed(button uint32) bool {
	return s.Buttons&button != 0
}

// InputPoller supplies the input snapshot once per frame, at the start of the
// frame sequence.
type InputPoller interface {
	Poll() InputState
}

// NopPoller reports no input; used headless and in tests.
type NopPoller struct{}

func (NopPoller) Poll() InputState { return InputState{} }
