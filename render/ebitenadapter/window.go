package ebitenadapter

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/northlake/vmcore/render"
)

// Window implements render.Window on top of Ebitengine's global input
// state. Ebitengine exposes input as point-in-time queries (IsKeyPressed,
// CursorPosition, ...), not an event queue; Window's PollEvents bridges
// the two by diffing against the previous call, the same shape as the
// original runtime's window event queue in spec.md §6.
type Window struct {
	prevKeys   map[ebiten.Key]bool
	prevMouseX int
	prevMouseY int
	prevButtons map[ebiten.MouseButton]bool
	closeReq   bool
	width      int
	height     int
}

// NewWindow creates a Window with no prior input state.
func NewWindow() *Window {
	return &Window{
		prevKeys:    make(map[ebiten.Key]bool),
		prevButtons: make(map[ebiten.MouseButton]bool),
	}
}

// RequestClose marks the window as wanting to close, checked by
// CloseRequested. Ebitengine's own close button delivers this via
// ebiten.IsWindowBeingClosed in newer releases; the adapter also exposes
// this setter so cmd/vmplay can wire a menu "quit" action to it.
func (w *Window) RequestClose() { w.closeReq = true }

func (w *Window) CloseRequested() bool {
	return w.closeReq || ebiten.IsWindowBeingClosed()
}

var allKeys = ebiten.AppendPressedKeys(nil)

// PollEvents reports every input transition since the previous call:
// key/button down and up edges, mouse movement, wheel ticks, and a resize
// if the outer window size changed. cmd/vmplay calls it once per Update
// and passes the events to Engine.Input().Apply; the engine itself never
// calls it.
func (w *Window) PollEvents() []render.WindowEvent {
	var events []render.WindowEvent

	pressed := ebiten.AppendPressedKeys(allKeys[:0])
	cur := make(map[ebiten.Key]bool, len(pressed))
	for _, k := range pressed {
		cur[k] = true
		if !w.prevKeys[k] {
			events = append(events, render.WindowEvent{Type: render.EventKeyboardDown, Key: render.Key(k)})
		}
	}
	for k := range w.prevKeys {
		if !cur[k] {
			events = append(events, render.WindowEvent{Type: render.EventKeyboardUp, Key: render.Key(k)})
		}
	}
	w.prevKeys = cur

	x, y := ebiten.CursorPosition()
	if x != w.prevMouseX || y != w.prevMouseY {
		events = append(events, render.WindowEvent{Type: render.EventMouseMove, X: int32(x), Y: int32(y)})
		w.prevMouseX, w.prevMouseY = x, y
	}

	curButtons := map[ebiten.MouseButton]bool{}
	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight, ebiten.MouseButtonMiddle} {
		if ebiten.IsMouseButtonPressed(b) {
			curButtons[b] = true
			if !w.prevButtons[b] {
				events = append(events, render.WindowEvent{Type: render.EventMouseButtonDown, Button: render.MouseButton(b)})
			}
		}
	}
	for b := range w.prevButtons {
		if !curButtons[b] {
			events = append(events, render.WindowEvent{Type: render.EventMouseButtonUp, Button: render.MouseButton(b)})
		}
	}
	w.prevButtons = curButtons

	_, wheelY := ebiten.Wheel()
	if wheelY > 0 {
		events = append(events, render.WindowEvent{Type: render.EventMouseWheelUp})
	} else if wheelY < 0 {
		events = append(events, render.WindowEvent{Type: render.EventMouseWheelDown})
	}

	ww, wh := ebiten.WindowSize()
	if ww != w.width || wh != w.height {
		w.width, w.height = ww, wh
		events = append(events, render.WindowEvent{Type: render.EventResize, Width: int32(ww), Height: int32(wh)})
	}

	return events
}

// wasJustPressed reports a single frame's key-down edge without keeping
// state of its own, grounded on inpututil's debounced key query. It is
// unexported, so only this package can call it.
func wasJustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}

var _ render.Window = (*Window)(nil)
