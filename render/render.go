// Package render declares the renderer and window contracts the core
// consumes. Rendering, windowing, and audio are external collaborators per
// spec.md §1 — this package only names the interfaces; concrete
// implementations (e.g. render/ebitenadapter) live outside the core.
package render

// AtlasRef is an opaque handle to a renderer-owned, atlas-backed image.
// The core never inspects its contents; it only holds references returned
// by Upload/CreateSurface and passes them back into draw calls.
type AtlasRef int64

// BlendFactor mirrors a generic GPU blend-equation factor so the contract
// stays renderer-agnostic. ebitenadapter maps the BlendAdd and
// BlendSubtract presets onto ebiten.Blend values and draws any other
// BlendMode as source-over.
type BlendFactor uint8

const (
	FactorZero BlendFactor = iota
	FactorOne
	FactorSourceAlpha
	FactorOneMinusSourceAlpha
	FactorDestinationColor
	FactorDestinationAlpha
	FactorOneMinusSourceColor
	FactorSourceColor
)

// BlendMode is a source/destination factor pair for one blend equation.
type BlendMode struct {
	SrcRGB, DstRGB     BlendFactor
	SrcAlpha, DstAlpha BlendFactor
}

var (
	BlendNormal   = BlendMode{FactorOne, FactorOneMinusSourceAlpha, FactorOne, FactorOneMinusSourceAlpha}
	BlendAdd      = BlendMode{FactorOne, FactorOne, FactorOne, FactorOne}
	BlendSubtract = BlendMode{FactorOne, FactorOne, FactorZero, FactorOne}
)

// Renderer is the drawing surface the core submits sprite and primitive
// commands to. The core never allocates GPU resources directly.
type Renderer interface {
	UploadSprite(pixels []byte, w, h int, originX, originY int) (AtlasRef, error)
	DeleteSprite(ref AtlasRef)
	DrawSprite(ref AtlasRef, x, y, xscale, yscale, angle float64, blend BlendMode, alpha float64)
	DrawSpriteTiled(ref AtlasRef, x, y, xscale, yscale float64, blend BlendMode, alpha float64, w, h *int)
	CreateSurface(w, h int, withDepth bool) (AtlasRef, error)
	SetTarget(ref AtlasRef)
	ResetTarget()
	SetBlendMode(mode BlendMode)
	SetDepth(depth float32)
	ResizeFramebuffer(w, h int)
	Present(w, h int, scaling string)

	ResetPrimitive2D()
	Vertex2D(x, y float64, r, g, b, a float32)
	DrawPrimitive2D(kind PrimitiveKind)

	State() any
	SetState(s any)
}

// PrimitiveKind selects the topology used by DrawPrimitive2D.
type PrimitiveKind uint8

const (
	PrimitiveLineList PrimitiveKind = iota
	PrimitiveTriangleList
	PrimitiveTriangleFan
)

// Key is a virtual-key code following the original package format's
// virtual-key scheme, so recorded replays remain portable across host
// platforms.
type Key int32

// MouseButton identifies a mouse button in the original package's
// numbering.
type MouseButton int32

// WindowEvent is one item from the window's input event queue.
type WindowEvent struct {
	Type      WindowEventType
	Key       Key
	X, Y      int32
	Button    MouseButton
	Width     int32
	Height    int32
	MenuID    int32
}

// WindowEventType discriminates WindowEvent.
type WindowEventType uint8

const (
	EventKeyboardDown WindowEventType = iota
	EventKeyboardUp
	EventMouseMove
	EventMouseButtonDown
	EventMouseButtonUp
	EventMouseWheelUp
	EventMouseWheelDown
	EventResize
	EventMenuOption
)

// Window is the input/window abstraction a host polls once per frame. The
// engine does not call it; the host passes the polled events to
// Engine.Input().Apply.
type Window interface {
	PollEvents() []WindowEvent
	CloseRequested() bool
}
