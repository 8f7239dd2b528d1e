// Package ebitenadapter implements the vmcore/render contracts on top of
// Ebitengine. It exists so render.Renderer and render.Window have a
// concrete, exercised implementation for cmd/vmplay to drive — rendering,
// windowing, and audio remain external collaborators per spec.md §1; the
// core never imports this package.
//
// The teacher library (phanxgames/willow) implements a retained-mode scene
// graph: sprites are Node values parented into a Scene tree, transformed
// and batched by a tree traversal once per frame. vmcore/render's contract
// is immediate-mode instead — UploadSprite returns an opaque handle once,
// and DrawSprite/DrawSpriteTiled are called fresh every frame with an
// explicit transform, the same shape as the original runtime's per-call
// d3d_draw_sprite-style primitives. Forcing willow's tree-traversal batcher
// underneath a per-call contract would mean rebuilding a one-node tree on
// every draw, which defeats the batcher's purpose. Each uploaded sprite
// instead gets its own ebiten.Image (there are no shared atlas pages), and
// ebiten's own image batching coalesces same-source draws internally.
package ebitenadapter

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/northlake/vmcore/render"
)

// Adapter implements render.Renderer by drawing directly with Ebitengine
// images; AtlasRef values are indices into a dense slot table (similar to
// assets.go's store[T] on the core side), and a slot freed by DeleteSprite
// is reused by a later upload.
type Adapter struct {
	sprites []*ebiten.Image
	free    []render.AtlasRef

	screen *ebiten.Image // the frame's render target, set by the caller each Draw
	target *ebiten.Image // current SetTarget destination, nil means screen

	blend     render.BlendMode
	depth     float32
	primitive []ebiten.Vertex
	primKind  render.PrimitiveKind
}

// New creates an empty Adapter. Call SetScreen once per Ebitengine Draw
// callback before the core's draw pipeline issues any commands.
func New() *Adapter {
	return &Adapter{blend: render.BlendNormal}
}

// SetScreen installs the Ebitengine-provided frame buffer as the default
// render target for this frame.
func (a *Adapter) SetScreen(screen *ebiten.Image) {
	a.screen = screen
	a.target = nil
}

func (a *Adapter) currentTarget() *ebiten.Image {
	if a.target != nil {
		return a.target
	}
	return a.screen
}

// UploadSprite copies w*h RGBA8 pixels into a fresh Ebitengine image and
// returns a handle. The origin is accepted for interface symmetry with the
// core's Sprite asset (SPEC_FULL §3); the adapter itself draws around the
// caller-supplied transform, not the origin, since DrawSprite already
// receives a fully-resolved (x, y).
func (a *Adapter) UploadSprite(pixels []byte, w, h int, originX, originY int) (render.AtlasRef, error) {
	if w <= 0 || h <= 0 {
		return 0, &uploadError{w: w, h: h}
	}
	if len(pixels) < w*h*4 {
		return 0, &uploadError{w: w, h: h, short: true}
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(pixels[:w*h*4])
	return a.store(img), nil
}

type uploadError struct {
	w, h  int
	short bool
}

func (e *uploadError) Error() string {
	if e.short {
		return fmt.Sprintf("ebitenadapter: pixel buffer too short for %dx%d sprite", e.w, e.h)
	}
	return fmt.Sprintf("ebitenadapter: invalid sprite dimensions %dx%d", e.w, e.h)
}

func (a *Adapter) store(img *ebiten.Image) render.AtlasRef {
	if n := len(a.free); n > 0 {
		ref := a.free[n-1]
		a.free = a.free[:n-1]
		a.sprites[ref] = img
		return ref
	}
	ref := render.AtlasRef(len(a.sprites))
	a.sprites = append(a.sprites, img)
	return ref
}

// DeleteSprite releases the backing image and recycles the slot.
func (a *Adapter) DeleteSprite(ref render.AtlasRef) {
	if int(ref) < 0 || int(ref) >= len(a.sprites) {
		return
	}
	a.sprites[ref] = nil
	a.free = append(a.free, ref)
}

func (a *Adapter) image(ref render.AtlasRef) *ebiten.Image {
	if int(ref) < 0 || int(ref) >= len(a.sprites) {
		return nil
	}
	return a.sprites[ref]
}

// DrawSprite draws one sprite with the given transform, matching the
// instance-appearance fields in instance.go (ImageXScale/YScale/Angle and
// ImageAlpha). It takes no tint, so ImageBlend is not applied.
func (a *Adapter) DrawSprite(ref render.AtlasRef, x, y, xscale, yscale, angle float64, blend render.BlendMode, alpha float64) {
	img := a.image(ref)
	dst := a.currentTarget()
	if img == nil || dst == nil {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	op.GeoM.Scale(xscale, yscale)
	op.GeoM.Rotate(angle)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Blend = toEbitenBlend(blend)
	dst.DrawImage(img, op)
}

// DrawSpriteTiled repeats the sprite to cover w x h (or the image's own
// size, if nil), used for tiling backgrounds per spec.md §4 Background
// assets.
func (a *Adapter) DrawSpriteTiled(ref render.AtlasRef, x, y, xscale, yscale float64, blend render.BlendMode, alpha float64, w, h *int) {
	img := a.image(ref)
	dst := a.currentTarget()
	if img == nil || dst == nil {
		return
	}
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	tileW, tileH := float64(iw)*xscale, float64(ih)*yscale
	if tileW <= 0 || tileH <= 0 {
		return
	}
	areaW, areaH := float64(iw), float64(ih)
	if w != nil {
		areaW = float64(*w)
	}
	if h != nil {
		areaH = float64(*h)
	}
	for oy := 0.0; oy < areaH; oy += tileH {
		for ox := 0.0; ox < areaW; ox += tileW {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(xscale, yscale)
			op.GeoM.Translate(x+ox, y+oy)
			op.ColorScale.ScaleAlpha(float32(alpha))
			op.Blend = toEbitenBlend(blend)
			dst.DrawImage(img, op)
		}
	}
}

// CreateSurface allocates an off-screen render target whose handle the
// core keeps in its surface map; a SaveState records only that handle, not
// the surface's pixels.
func (a *Adapter) CreateSurface(w, h int, withDepth bool) (render.AtlasRef, error) {
	if w <= 0 || h <= 0 {
		return 0, &uploadError{w: w, h: h}
	}
	img := ebiten.NewImage(w, h)
	return a.store(img), nil
}

// SetTarget redirects subsequent draws to the surface at ref.
func (a *Adapter) SetTarget(ref render.AtlasRef) {
	a.target = a.image(ref)
}

// ResetTarget redirects subsequent draws back to the screen.
func (a *Adapter) ResetTarget() {
	a.target = nil
}

func (a *Adapter) SetBlendMode(mode render.BlendMode) { a.blend = mode }
func (a *Adapter) SetDepth(depth float32)             { a.depth = depth }
func (a *Adapter) ResizeFramebuffer(w, h int)         {}
func (a *Adapter) Present(w, h int, scaling string)   {}

// ResetPrimitive2D clears the pending vertex buffer for a new primitive.
func (a *Adapter) ResetPrimitive2D() {
	a.primitive = a.primitive[:0]
}

// Vertex2D appends one vertex to the pending primitive.
func (a *Adapter) Vertex2D(x, y float64, r, g, b, alpha float32) {
	a.primitive = append(a.primitive, ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: 0, SrcY: 0,
		ColorR: r, ColorG: g, ColorB: b, ColorA: alpha,
	})
}

// whitePixel backs primitive draws (triangles/lines with no texture).
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(image.White)
	}
	return whitePixel
}

// DrawPrimitive2D submits the pending vertex buffer as the given topology.
func (a *Adapter) DrawPrimitive2D(kind render.PrimitiveKind) {
	dst := a.currentTarget()
	if dst == nil || len(a.primitive) == 0 {
		return
	}
	src := ensureWhitePixel()
	idx := triangleIndices(kind, len(a.primitive))
	if len(idx) == 0 {
		return
	}
	opts := &ebiten.DrawTrianglesOptions{Blend: toEbitenBlend(a.blend)}
	dst.DrawTriangles(a.primitive, idx, src, opts)
}

func triangleIndices(kind render.PrimitiveKind, n int) []uint16 {
	switch kind {
	case render.PrimitiveTriangleList:
		idx := make([]uint16, 0, n)
		for i := 0; i < n; i++ {
			idx = append(idx, uint16(i))
		}
		return idx
	case render.PrimitiveTriangleFan:
		if n < 3 {
			return nil
		}
		idx := make([]uint16, 0, (n-2)*3)
		for i := 1; i < n-1; i++ {
			idx = append(idx, 0, uint16(i), uint16(i+1))
		}
		return idx
	case render.PrimitiveLineList:
		// Ebitengine has no native line primitive on DrawTriangles; lines
		// are approximated as degenerate triangles so the same submission
		// path works for all three topologies.
		idx := make([]uint16, 0, n)
		for i := 0; i+1 < n; i += 2 {
			idx = append(idx, uint16(i), uint16(i+1), uint16(i))
		}
		return idx
	default:
		return nil
	}
}

func toEbitenBlend(m render.BlendMode) ebiten.Blend {
	switch m {
	case render.BlendAdd:
		return ebiten.BlendLighter
	case render.BlendSubtract:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationReverseSubtract,
			BlendOperationAlpha:         ebiten.BlendOperationReverseSubtract,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// adapterState is the opaque value returned by State()/accepted by
// SetState(), carrying the renderer's blend/depth mode. Engine.Save and
// Engine.Load do not call State or SetState.
type adapterState struct {
	blend render.BlendMode
	depth float32
}

func (a *Adapter) State() any {
	return adapterState{blend: a.blend, depth: a.depth}
}

func (a *Adapter) SetState(s any) {
	if st, ok := s.(adapterState); ok {
		a.blend = st.blend
		a.depth = st.depth
	}
}

var _ render.Renderer = (*Adapter)(nil)
