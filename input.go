package vmcore

import "github.com/northlake/vmcore/render"

// InputState tracks held keys/buttons and this-frame press/release edges,
// fed once per frame from the Window contract's event queue (spec.md §6)
// and consumed by the frame pipeline's keyboard/mouse dispatch steps
// (spec.md §4.4 steps 6-9). Edge buffers are cleared at the end of every
// frame (step 19), matching the original runtime's own per-frame input
// bookkeeping.
type InputState struct {
	held    map[render.Key]bool
	pressed map[render.Key]bool
	released map[render.Key]bool

	mouseHeld     map[render.MouseButton]bool
	mousePressed  map[render.MouseButton]bool
	mouseReleased map[render.MouseButton]bool

	mouseX, mouseY int32
	wheelUp        bool
	wheelDown      bool
}

// NewInputState returns an empty InputState with nothing held.
func NewInputState() *InputState {
	return &InputState{
		held:          make(map[render.Key]bool),
		pressed:       make(map[render.Key]bool),
		released:      make(map[render.Key]bool),
		mouseHeld:     make(map[render.MouseButton]bool),
		mousePressed:  make(map[render.MouseButton]bool),
		mouseReleased: make(map[render.MouseButton]bool),
	}
}

// Apply folds one frame's window events into the current state. Called
// once per frame, before any dispatch step that reads input.
func (s *InputState) Apply(events []render.WindowEvent) {
	for _, ev := range events {
		switch ev.Type {
		case render.EventKeyboardDown:
			if !s.held[ev.Key] {
				s.pressed[ev.Key] = true
			}
			s.held[ev.Key] = true
		case render.EventKeyboardUp:
			s.held[ev.Key] = false
			s.released[ev.Key] = true
		case render.EventMouseMove:
			s.mouseX, s.mouseY = ev.X, ev.Y
		case render.EventMouseButtonDown:
			if !s.mouseHeld[ev.Button] {
				s.mousePressed[ev.Button] = true
			}
			s.mouseHeld[ev.Button] = true
		case render.EventMouseButtonUp:
			s.mouseHeld[ev.Button] = false
			s.mouseReleased[ev.Button] = true
		case render.EventMouseWheelUp:
			s.wheelUp = true
		case render.EventMouseWheelDown:
			s.wheelDown = true
		}
	}
}

// HeldKeys returns every key currently down, used by step 6's "one
// dispatch per held key per frame".
func (s *InputState) HeldKeys() []render.Key {
	var out []render.Key
	for k, v := range s.held {
		if v {
			out = append(out, k)
		}
	}
	return out
}

// PressedKeys returns keys that transitioned down this frame (step 8).
func (s *InputState) PressedKeys() []render.Key {
	var out []render.Key
	for k := range s.pressed {
		out = append(out, k)
	}
	return out
}

// ReleasedKeys returns keys that transitioned up this frame (step 9).
func (s *InputState) ReleasedKeys() []render.Key {
	var out []render.Key
	for k := range s.released {
		out = append(out, k)
	}
	return out
}

// HeldButtons returns mouse buttons currently down (step 7).
func (s *InputState) HeldButtons() []render.MouseButton {
	var out []render.MouseButton
	for b, v := range s.mouseHeld {
		if v {
			out = append(out, b)
		}
	}
	return out
}

// MousePosition returns the last-known cursor position.
func (s *InputState) MousePosition() (int32, int32) {
	return s.mouseX, s.mouseY
}

// WheelUp and WheelDown report whether the wheel ticked this frame.
func (s *InputState) WheelUp() bool   { return s.wheelUp }
func (s *InputState) WheelDown() bool { return s.wheelDown }

// ClearFrameEdges wipes the per-frame press/release/wheel buffers, per
// spec.md §4.4 step 19 ("Clear per-frame input press and release
// buffers").
func (s *InputState) ClearFrameEdges() {
	for k := range s.pressed {
		delete(s.pressed, k)
	}
	for k := range s.released {
		delete(s.released, k)
	}
	for b := range s.mousePressed {
		delete(s.mousePressed, b)
	}
	for b := range s.mouseReleased {
		delete(s.mouseReleased, b)
	}
	s.wheelUp = false
	s.wheelDown = false
}
