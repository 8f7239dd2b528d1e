// Command vmplay is a minimal interactive harness for vmcore: it wires a
// tiny in-memory asset fixture, the ebitenadapter renderer/window, and a
// no-op script interpreter into a live Engine, then drives Frame() once per
// Ebitengine tick. It exists to exercise the core end to end, the way the
// teacher library ships its own examples/ binaries against willow.
package main

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/northlake/vmcore"
	"github.com/northlake/vmcore/render/ebitenadapter"
	"github.com/northlake/vmcore/scripting"
)

const (
	screenW = 640
	screenH = 480
)

// noOpInterpreter satisfies scripting.Interpreter without running any
// script: vmplay's fixture object has no handlers installed, so Execute
// and Eval are never exercised; it fills EngineDeps.Interpreter so the
// field is not nil.
type noOpInterpreter struct{}

func (noOpInterpreter) Execute(p scripting.Program, ctx *scripting.Context) error { return nil }
func (noOpInterpreter) Eval(e scripting.Expr, ctx *scripting.Context) (scripting.Value, error) {
	return scripting.Value{}, nil
}

// fixtureAssets builds the smallest GameAssets that can load: one room, one
// object, one spawn, no sprites (the draw pipeline already tolerates a
// sprite-less instance by skipping its draw call).
func fixtureAssets() *vmcore.GameAssets {
	assets := &vmcore.GameAssets{
		RoomOrder:   []vmcore.RoomID{0},
		InitialSeed: 1,
	}
	assets.Objects.Set(0, &vmcore.Object{
		ID:      0,
		Visible: true,
		Depth:   0,
		Parent:  -1,
	})
	assets.Rooms.Set(0, &vmcore.Room{
		Width:  screenW,
		Height: screenH,
		Speed:  60,
		Spawns: []vmcore.RoomInstance{
			{Object: 0, X: screenW / 2, Y: screenH / 2},
		},
	})
	return assets
}

// game adapts an *vmcore.Engine to ebiten.Game.
type game struct {
	engine  *vmcore.Engine
	adapter *ebitenadapter.Adapter
	window  *ebitenadapter.Window
}

func (g *game) Update() error {
	events := g.window.PollEvents()
	g.engine.Input().Apply(events)
	if g.window.CloseRequested() {
		g.engine.QueueEnd()
	}
	if err := g.engine.Frame(); err != nil {
		if err == vmcore.ErrGameEnded {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(argbToColor(g.engine.ClearColor()))
	g.adapter.SetScreen(screen)
}

// argbToColor unpacks the core's 0xAARRGGBB clear color into an
// image/color.Color, the format ebiten.Image.Fill expects.
func argbToColor(c uint32) color.Color {
	return color.NRGBA{
		A: uint8(c >> 24),
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.engine.RoomSize()
	return int(w), int(h)
}

func main() {
	assets := fixtureAssets()
	adapter := ebitenadapter.New()
	window := ebitenadapter.NewWindow()

	engine, err := vmcore.NewEngine(assets, vmcore.EngineConfig{
		TargetFPS: 60,
	}, vmcore.EngineDeps{
		Interpreter: noOpInterpreter{},
		Renderer:    adapter,
		Window:      window,
	})
	if err != nil {
		log.Fatalf("vmplay: engine init failed: %v", err)
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("vmcore — vmplay")

	g := &game{engine: engine, adapter: adapter, window: window}
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("vmplay: %v", err)
	}
}
